package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderBrowser interface {
	ListOrders(ctx context.Context, tenant uuid.UUID, limit, offset int) ([]domain.OrderRecord, error)
	ListLineItems(ctx context.Context, tenant uuid.UUID, orderID string) ([]domain.LineItem, error)
	ListVariants(ctx context.Context, tenant uuid.UUID, limit, offset int) ([]domain.CostVariant, error)
	SetVariantCost(ctx context.Context, tenant uuid.UUID, variantID string, cost *decimal.Decimal) (int, error)
}

type OrderHandler struct {
	orders OrderBrowser
}

func NewOrderHandler(orders OrderBrowser) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// variantCostRequest needs cost_per_unit present; an explicit null clears it.
type variantCostRequest struct {
	CostPerUnit json.RawMessage `json:"cost_per_unit"`
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	tenant, ok := tenantFrom(c)
	if !ok {
		return
	}
	limit, offset := pageParams(c)

	orders, err := h.orders.ListOrders(c.Request.Context(), tenant, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) ListLineItems(c *gin.Context) {
	tenant, ok := tenantFrom(c)
	if !ok {
		return
	}

	items, err := h.orders.ListLineItems(c.Request.Context(), tenant, c.Param("order_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": c.Param("order_id"), "items": items})
}

func (h *OrderHandler) ListVariants(c *gin.Context) {
	tenant, ok := tenantFrom(c)
	if !ok {
		return
	}
	limit, offset := pageParams(c)

	variants, err := h.orders.ListVariants(c.Request.Context(), tenant, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"variants": variants})
}

// SetVariantCost updates a variant's unit cost and re-prices its orders.
func (h *OrderHandler) SetVariantCost(c *gin.Context) {
	tenant, ok := tenantFrom(c)
	if !ok {
		return
	}

	var req variantCostRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.CostPerUnit) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cost_per_unit is required"})
		return
	}
	var cost *decimal.Decimal
	if !bytes.Equal(bytes.TrimSpace(req.CostPerUnit), []byte("null")) {
		var d decimal.Decimal
		if err := json.Unmarshal(req.CostPerUnit, &d); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cost_per_unit must be a number"})
			return
		}
		cost = &d
	}

	n, err := h.orders.SetVariantCost(c.Request.Context(), tenant, c.Param("id"), cost)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"variant_id":      c.Param("id"),
		"cost_per_unit":   cost,
		"orders_repriced": n,
	})
}

func pageParams(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, max(offset, 0)
}
