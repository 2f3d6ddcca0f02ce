package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/importer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a tenant-scoped row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks integrity constraint violations.
	ErrConflict = errors.New("constraint violation")
)

type OrderRepository interface {
	importer.TxStore
	OrderQueries
}

// OrderQueries reads reconciled orders and maintains variant unit costs.
type OrderQueries interface {
	ListOrders(ctx context.Context, tenant uuid.UUID, limit, offset int) ([]domain.OrderRecord, error)
	ListLineItems(ctx context.Context, tenant uuid.UUID, orderID string) ([]domain.LineItem, error)
	ListVariants(ctx context.Context, tenant uuid.UUID, limit, offset int) ([]domain.CostVariant, error)
	SetVariantCost(ctx context.Context, tenant uuid.UUID, variantID string, cost decimal.NullDecimal) (int, error)
}

type ShippingRepository interface {
	UpsertLabels(ctx context.Context, tenant uuid.UUID, labels []domain.ShippingLabel) (int, error)
	ListLabels(ctx context.Context, tenant uuid.UUID, limit, offset int) ([]domain.ShippingLabel, error)
	LinkLabelToOrder(ctx context.Context, tenant uuid.UUID, labelID, orderKey string) error
}

type SettingsRepository interface {
	GetSetting(ctx context.Context, tenant uuid.UUID, workspaceID, key string) (json.RawMessage, error)
	PutSetting(ctx context.Context, tenant uuid.UUID, workspaceID, key string, value json.RawMessage) error
	DeleteSetting(ctx context.Context, tenant uuid.UUID, workspaceID, key string) error
}

type ImportRunRepository interface {
	CreateRun(ctx context.Context, run *domain.ImportRun) error
	FinishRun(ctx context.Context, run *domain.ImportRun) error
	ListRuns(ctx context.Context, tenant uuid.UUID, limit int) ([]domain.ImportRun, error)
}
