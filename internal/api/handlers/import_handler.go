// backend-go/internal/api/handlers/import_handler.go
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/importer"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// OrderImporter is the slice of the import service the handler drives.
type OrderImporter interface {
	ImportOrders(ctx context.Context, tenant uuid.UUID, files []*domain.UploadedFile) (*domain.ImportResult, error)
	Preview(ctx context.Context, files []*domain.UploadedFile) (*importer.Plan, error)
	Replay(ctx context.Context, tenant, runID uuid.UUID) (*domain.ImportResult, error)
	ListRuns(ctx context.Context, tenant uuid.UUID, limit int) ([]domain.ImportRun, error)
}

type ImportHandler struct {
	imports   OrderImporter
	maxUpload int64
}

func NewImportHandler(imports OrderImporter, maxUpload int64) *ImportHandler {
	return &ImportHandler{imports: imports, maxUpload: maxUpload}
}

// ImportOrders reconciles a batch of marketplace exports for the tenant.
func (h *ImportHandler) ImportOrders(c *gin.Context) {
	tenant, ok := tenantFrom(c)
	if !ok {
		return
	}
	files, ok := h.uploads(c)
	if !ok {
		return
	}

	res, err := h.imports.ImportOrders(c.Request.Context(), tenant, files)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PreviewOrders derives orders from the uploads without persisting them.
func (h *ImportHandler) PreviewOrders(c *gin.Context) {
	if _, ok := tenantFrom(c); !ok {
		return
	}
	files, ok := h.uploads(c)
	if !ok {
		return
	}

	plan, err := h.imports.Preview(c.Request.Context(), files)
	if err != nil {
		respondError(c, err)
		return
	}

	lineItems := 0
	for _, items := range plan.Items {
		lineItems += len(items)
	}
	c.JSON(http.StatusOK, gin.H{
		"unique_orders":      len(plan.Orders),
		"line_items":         lineItems,
		"item_duplicates":    plan.ItemDuplicates,
		"ignored_rows":       plan.IgnoredRows,
		"ignored_files":      len(plan.IgnoredFileNames),
		"ignored_file_names": plan.IgnoredFileNames,
		"orders":             plan.Orders,
	})
}

func (h *ImportHandler) ListRuns(c *gin.Context) {
	tenant, ok := tenantFrom(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	runs, err := h.imports.ListRuns(c.Request.Context(), tenant, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// ReplayRun re-imports the archived files of an earlier run.
func (h *ImportHandler) ReplayRun(c *gin.Context) {
	tenant, ok := tenantFrom(c)
	if !ok {
		return
	}
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	res, err := h.imports.Replay(c.Request.Context(), tenant, runID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ImportHandler) uploads(c *gin.Context) ([]*domain.UploadedFile, bool) {
	limitBody(c, h.maxUpload)
	form, err := c.MultipartForm()
	if err != nil {
		formError(c, err)
		return nil, false
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return nil, false
	}

	files := make([]*domain.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readUpload(fh)
		if err != nil {
			log.Error().Err(err).Str("filename", fh.Filename).Msg("failed to read uploaded file")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		files = append(files, f)
	}
	return files, true
}
