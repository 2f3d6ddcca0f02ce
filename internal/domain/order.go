// backend-go/internal/domain/order.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// SourceCSV tags orders created by file imports.
	SourceCSV = "csv"

	// DefaultStoreName is used when no store-like column is present.
	DefaultStoreName = "CSV Import"

	// UnknownProductName replaces empty or placeholder product names.
	UnknownProductName = "Unknown item"

	// SummaryLineName names the synthesized line of a summary-only order.
	SummaryLineName = "Order Summary"

	// ColorSeparator joins a color onto the stored size, e.g. "M | Color: Red".
	ColorSeparator = " | Color: "

	// DefaultCategoryName is the bucket new cost variants land in.
	DefaultCategoryName = "Uncategorized"
)

// OrderRecord is one marketplace order per (tenant, order identifier).
type OrderRecord struct {
	ID             string          `json:"id" db:"id"`
	TenantID       uuid.UUID       `json:"user_id" db:"user_id"`
	OrderID        string          `json:"order_id" db:"order_id"`
	OrderDate      *time.Time      `json:"order_date" db:"order_date"`
	StoreName      string          `json:"store_name" db:"store_name"`
	Source         string          `json:"source" db:"source"`
	TotalPrice     decimal.Decimal `json:"total_price" db:"total_price"`
	TotalFees      decimal.Decimal `json:"total_fees" db:"total_fees"`
	TotalCOGS      decimal.Decimal `json:"total_cogs" db:"total_cogs"`
	TotalDiscounts decimal.Decimal `json:"total_discounts" db:"total_discounts"`
	TotalProfit    decimal.Decimal `json:"total_profit" db:"total_profit"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// ComputeProfit sets TotalProfit from revenue, fees and cost of goods.
func (o *OrderRecord) ComputeProfit() {
	o.TotalProfit = o.TotalPrice.Sub(o.TotalFees).Sub(o.TotalCOGS)
}

// OrderRef is what an upsert returns for one order key.
type OrderRef struct {
	ID       string
	Inserted bool
}

// LineItem belongs to exactly one OrderRecord.
type LineItem struct {
	ID          string          `json:"id" db:"id"`
	TenantID    uuid.UUID       `json:"user_id" db:"user_id"`
	OrderFK     string          `json:"order_id_fk" db:"order_id_fk"`
	OrderKey    string          `json:"-" db:"-"`
	ProductName string          `json:"product_name" db:"product_name"`
	SKU         *string         `json:"sku" db:"sku"`
	Size        *string         `json:"size" db:"size"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Fees        decimal.Decimal `json:"fees" db:"fees"`
	COGS        decimal.Decimal `json:"cogs" db:"cogs"`
	Discounts   decimal.Decimal `json:"discounts" db:"discounts"`
	Profit      decimal.Decimal `json:"profit" db:"profit"`
	VariantID   *string         `json:"variant_id" db:"variant_id"`
}

// ComputeProfit sets Profit from price, fees and cost of goods.
func (li *LineItem) ComputeProfit() {
	li.Profit = li.Price.Sub(li.Fees).Sub(li.COGS)
}

// VariantKey returns the (product name, SKU, size) triple identifying the
// cost variant this line should link to.
func (li LineItem) VariantKey() VariantKey {
	return VariantKey{
		ProductName: li.ProductName,
		SKU:         deref(li.SKU),
		Size:        deref(li.Size),
	}
}

// DedupKey is the lowercased, trimmed (name, size, sku) composite used to
// collapse duplicate rows of the same variant within one order.
func (li LineItem) DedupKey() string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return norm(li.ProductName) + "\x1f" + norm(deref(li.Size)) + "\x1f" + norm(deref(li.SKU))
}

// VariantKey identifies one CostVariant per tenant. Missing SKU and size are
// represented by empty strings.
type VariantKey struct {
	ProductName string
	SKU         string
	Size        string
}

// SplitColor separates a stored size back into size and color.
func (k VariantKey) SplitColor() (size string, color string) {
	if i := strings.Index(k.Size, ColorSeparator); i >= 0 {
		return k.Size[:i], k.Size[i+len(ColorSeparator):]
	}
	if rest, ok := strings.CutPrefix(k.Size, colorOnlyPrefix); ok {
		return "", rest
	}
	return k.Size, ""
}

const colorOnlyPrefix = "Color: "

// ComposeSize folds a color into the stored size. A color without a size is
// stored as "Color: <color>".
func ComposeSize(size, color string) string {
	size, color = strings.TrimSpace(size), strings.TrimSpace(color)
	switch {
	case color == "":
		return size
	case size == "":
		return colorOnlyPrefix + color
	default:
		return size + ColorSeparator + color
	}
}

// ExpenseCategory is a classification bucket for cost items.
type ExpenseCategory struct {
	ID       string    `json:"id" db:"id"`
	TenantID uuid.UUID `json:"user_id" db:"user_id"`
	Name     string    `json:"name" db:"name"`
}

// ExpenseItem is one catalog entry per distinct product name.
type ExpenseItem struct {
	ID         string    `json:"id" db:"id"`
	TenantID   uuid.UUID `json:"user_id" db:"user_id"`
	CategoryID string    `json:"category_id" db:"category_id"`
	Name       string    `json:"name" db:"name"`
}

// CostVariant carries the unit cost of one (product, sku, size) combination.
type CostVariant struct {
	ID          string              `json:"id" db:"id"`
	TenantID    uuid.UUID           `json:"user_id" db:"user_id"`
	ItemID      string              `json:"item_id" db:"item_id"`
	ProductName string              `json:"product_name,omitempty" db:"product_name"`
	SKU         string              `json:"sku" db:"sku"`
	Size        string              `json:"size" db:"size"`
	Color       *string             `json:"color" db:"color"`
	CostPerUnit decimal.NullDecimal `json:"cost_per_unit" db:"cost_per_unit"`
}

// StringPtr returns nil for blank strings.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
