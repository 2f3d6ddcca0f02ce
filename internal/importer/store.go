package importer

import (
	"context"

	"github.com/google/uuid"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
)

// Store is the persistence the engine reconciles against. Every call is
// scoped to one tenant.
type Store interface {
	// UpsertOrders inserts or overwrites orders keyed on (tenant, order id)
	// and returns a ref for every order id.
	UpsertOrders(ctx context.Context, tenant uuid.UUID, orders []domain.OrderRecord) (map[string]domain.OrderRef, error)

	// ReplaceLineItems deletes the current items of orderIDs and inserts items.
	ReplaceLineItems(ctx context.Context, tenant uuid.UUID, orderIDs []string, items []domain.LineItem) error

	EnsureDefaultCategory(ctx context.Context, tenant uuid.UUID) (string, error)

	// EnsureExpenseItems returns an id per product name, creating missing ones.
	EnsureExpenseItems(ctx context.Context, tenant uuid.UUID, categoryID string, names []string) (map[string]string, error)

	// EnsureCostVariants creates missing variants and reports how many were new.
	EnsureCostVariants(ctx context.Context, tenant uuid.UUID, variants []domain.CostVariant) (int, error)

	// LinkLineItemVariants points unlinked items of orderIDs at their variant.
	LinkLineItemVariants(ctx context.Context, tenant uuid.UUID, orderIDs []string) (int64, error)

	// RecalcOrderTotals refreshes item cost of goods from variant unit costs
	// and rolls them up into order totals and profit.
	RecalcOrderTotals(ctx context.Context, tenant uuid.UUID, orderIDs []string) error
}

// TxStore is a Store that can run a batch atomically.
type TxStore interface {
	Store
	WithinTx(ctx context.Context, fn func(Store) error) error
}
