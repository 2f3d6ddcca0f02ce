package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/andresuchdata/sellerdash/backend-go/internal/api/middleware"
	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/importer"
	"github.com/andresuchdata/sellerdash/backend-go/internal/repository"
	"github.com/andresuchdata/sellerdash/backend-go/internal/service"
	"github.com/andresuchdata/sellerdash/backend-go/internal/tabular"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// statusFor maps domain and storage errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		perr     *importer.PersistError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.Is(err, importer.ErrNoOrders):
		return http.StatusUnprocessableEntity
	case errors.As(err, &perr):
		return http.StatusInternalServerError
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrNothingArchived):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, tabular.ErrMalformedFile), errors.Is(err, service.ErrMissingOrderKey),
		errors.Is(err, service.ErrInvalidCost), errors.Is(err, service.ErrMissingVariantID):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("path", c.FullPath()).Int("status", status).Msg("request failed")
	c.JSON(status, gin.H{"error": err.Error()})
}

func tenantFrom(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.TenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing tenant"})
	}
	return id, ok
}

func readUpload(fh *multipart.FileHeader) (*domain.UploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return &domain.UploadedFile{Filename: fh.Filename, Data: data}, nil
}

// limitBody caps the request body; zero disables the cap.
func limitBody(c *gin.Context, maxBytes int64) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}
}

// formError reports a multipart parse failure, keeping the 413 for
// oversized bodies.
func formError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
}
