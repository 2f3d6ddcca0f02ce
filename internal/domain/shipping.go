package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CleanedLabel is a label row kept by the simple ledger cleaner.
type CleanedLabel struct {
	Provider    string          `json:"provider"`
	Type        string          `json:"type"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Total       decimal.Decimal `json:"total"`
}

// ShippingLabel is a purchased shipping label, keyed per tenant by LabelKey.
type ShippingLabel struct {
	ID          string          `json:"id" db:"id"`
	TenantID    uuid.UUID       `json:"user_id" db:"user_id"`
	LabelKey    string          `json:"label_key" db:"label_key"`
	LabelID     *string         `json:"label_id" db:"label_id"`
	BatchID     *string         `json:"batch_id" db:"batch_id"`
	Carrier     *string         `json:"carrier" db:"carrier"`
	Service     *string         `json:"service" db:"service"`
	ShipDate    *time.Time      `json:"ship_date" db:"ship_date"`
	ToName      *string         `json:"to_name" db:"to_name"`
	Address1    *string         `json:"address1" db:"address1"`
	City        *string         `json:"city" db:"city"`
	State       *string         `json:"state" db:"state"`
	Postal      *string         `json:"postal" db:"postal"`
	Country     *string         `json:"country" db:"country"`
	Tracking    *string         `json:"tracking" db:"tracking"`
	Reference   *string         `json:"reference" db:"reference"`
	Notes       *string         `json:"notes" db:"notes"`
	Weight      *string         `json:"weight" db:"weight"`
	Dimensions  *string         `json:"dimensions" db:"dimensions"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Currency    string          `json:"currency" db:"currency"`
	StoreID     *string         `json:"store_id" db:"store_id"`
	OrderRef    *string         `json:"order_ref" db:"order_ref"`
	OrderFK     *string         `json:"order_id_fk" db:"order_id_fk"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// ShippingImportResult summarises a shipping ledger upload.
type ShippingImportResult struct {
	Cleaned      []CleanedLabel `json:"cleaned"`
	IgnoredCount int            `json:"ignored_count"`
	Persisted    int            `json:"persisted"`
}
