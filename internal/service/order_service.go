package service

import (
	"context"
	"errors"
	"strings"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCost      = errors.New("cost per unit must not be negative")
	ErrMissingVariantID = errors.New("variant id is required")
)

const maxPageSize = 500

type OrderService struct {
	repo repository.OrderQueries
}

func NewOrderService(repo repository.OrderQueries) *OrderService {
	return &OrderService{repo: repo}
}

func (s *OrderService) ListOrders(ctx context.Context, tenant uuid.UUID, limit, offset int) ([]domain.OrderRecord, error) {
	limit, offset = page(limit, offset)
	return s.repo.ListOrders(ctx, tenant, limit, offset)
}

func (s *OrderService) ListLineItems(ctx context.Context, tenant uuid.UUID, orderID string) ([]domain.LineItem, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, ErrMissingOrderKey
	}
	return s.repo.ListLineItems(ctx, tenant, orderID)
}

func (s *OrderService) ListVariants(ctx context.Context, tenant uuid.UUID, limit, offset int) ([]domain.CostVariant, error) {
	limit, offset = page(limit, offset)
	return s.repo.ListVariants(ctx, tenant, limit, offset)
}

// SetVariantCost sets the unit cost of one variant and re-prices the orders
// that sold it. A nil cost clears the cost. It returns the number of orders
// re-priced.
func (s *OrderService) SetVariantCost(ctx context.Context, tenant uuid.UUID, variantID string, cost *decimal.Decimal) (int, error) {
	variantID = strings.TrimSpace(variantID)
	if variantID == "" {
		return 0, ErrMissingVariantID
	}

	value := decimal.NullDecimal{}
	if cost != nil {
		if cost.IsNegative() {
			return 0, ErrInvalidCost
		}
		value = decimal.NewNullDecimal(*cost)
	}

	n, err := s.repo.SetVariantCost(ctx, tenant, variantID, value)
	if err != nil {
		return 0, err
	}
	log.Info().
		Str("tenant", tenant.String()).
		Str("variant_id", variantID).
		Bool("cleared", cost == nil).
		Int("orders", n).
		Msg("variant cost updated")
	return n, nil
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	return min(limit, maxPageSize), max(offset, 0)
}
