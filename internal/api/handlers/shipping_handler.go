// backend-go/internal/api/handlers/shipping_handler.go
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ShippingImporter interface {
	Import(ctx context.Context, tenant uuid.UUID, file *domain.UploadedFile, persist bool) (*domain.ShippingImportResult, error)
	ListLabels(ctx context.Context, tenant uuid.UUID, limit, offset int) ([]domain.ShippingLabel, error)
	LinkLabel(ctx context.Context, tenant uuid.UUID, labelID, orderKey string) error
}

type ShippingHandler struct {
	shipping  ShippingImporter
	maxUpload int64
}

func NewShippingHandler(shipping ShippingImporter, maxUpload int64) *ShippingHandler {
	return &ShippingHandler{shipping: shipping, maxUpload: maxUpload}
}

type linkLabelRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

// ImportShipping cleans an uploaded label ledger; detailed=true also
// stores the labels.
func (h *ShippingHandler) ImportShipping(c *gin.Context) {
	tenant, ok := tenantFrom(c)
	if !ok {
		return
	}

	limitBody(c, h.maxUpload)
	form, err := c.MultipartForm()
	if err != nil {
		formError(c, err)
		return
	}
	headers := form.File["file"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	file, err := readUpload(headers[0])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	persist, _ := strconv.ParseBool(c.DefaultQuery("detailed", "false"))
	res, err := h.shipping.Import(c.Request.Context(), tenant, file, persist)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ShippingHandler) ListLabels(c *gin.Context) {
	tenant, ok := tenantFrom(c)
	if !ok {
		return
	}
	limit, offset := pageParams(c)

	labels, err := h.shipping.ListLabels(c.Request.Context(), tenant, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels})
}

// LinkLabel manually attaches a label to an order.
func (h *ShippingHandler) LinkLabel(c *gin.Context) {
	tenant, ok := tenantFrom(c)
	if !ok {
		return
	}
	var req linkLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}

	if err := h.shipping.LinkLabel(c.Request.Context(), tenant, c.Param("id"), req.OrderID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"label_id": c.Param("id"), "order_id": req.OrderID})
}
