package domain

// ColumnID names one column of the orders table.
type ColumnID string

const (
	ColumnOrderID     ColumnID = "order_id"
	ColumnDate        ColumnID = "date"
	ColumnProductName ColumnID = "product_name"
	ColumnSKU         ColumnID = "sku"
	ColumnSize        ColumnID = "size"
	ColumnQuantity    ColumnID = "quantity"
	ColumnPrice       ColumnID = "price"
	ColumnDiscounts   ColumnID = "discounts"
	ColumnFees        ColumnID = "fees"
	ColumnCOGS        ColumnID = "cogs"
	ColumnProfit      ColumnID = "profit"
)

// ColumnsSettingKey is the user_settings key the preferences live under.
const ColumnsSettingKey = "orders_table_columns_v1"

const minColumnWidth = 60

// Column is one entry of a tenant's orders-table layout.
type Column struct {
	ID       ColumnID `json:"id"`
	Label    string   `json:"label"`
	Visible  bool     `json:"visible"`
	Width    int      `json:"width,omitempty"`
	MinWidth int      `json:"minWidth,omitempty"`
}

// ColumnPreferences is the per-tenant, per-workspace column layout.
type ColumnPreferences struct {
	WorkspaceID string   `json:"workspace_id"`
	Columns     []Column `json:"columns"`
}

// DefaultColumns returns a fresh copy of the stock layout.
func DefaultColumns() []Column {
	return []Column{
		{ID: ColumnOrderID, Label: "Order ID", Visible: true, Width: 140, MinWidth: 120},
		{ID: ColumnDate, Label: "Date", Visible: true, Width: 120, MinWidth: 110},
		{ID: ColumnProductName, Label: "Product Name", Visible: true, Width: 360, MinWidth: 200},
		{ID: ColumnSKU, Label: "SKU", Visible: true, Width: 140, MinWidth: 100},
		{ID: ColumnSize, Label: "Size", Visible: true, Width: 140, MinWidth: 110},
		{ID: ColumnQuantity, Label: "Qty", Visible: true, Width: 80, MinWidth: 70},
		{ID: ColumnPrice, Label: "Price", Visible: true, Width: 120, MinWidth: 100},
		{ID: ColumnDiscounts, Label: "Discounts", Visible: true, Width: 120, MinWidth: 100},
		{ID: ColumnFees, Label: "Fees", Visible: true, Width: 120, MinWidth: 100},
		{ID: ColumnCOGS, Label: "COGS", Visible: true, Width: 120, MinWidth: 100},
		{ID: ColumnProfit, Label: "Profit", Visible: true, Width: 120, MinWidth: 100},
	}
}

// NormalizeColumns overlays stored settings onto the defaults. Unknown ids are
// dropped, missing ids are appended in default order, and the stored order of
// known ids is kept.
func NormalizeColumns(stored []Column) []Column {
	defaults := DefaultColumns()
	byID := make(map[ColumnID]Column, len(defaults))
	for _, d := range defaults {
		byID[d.ID] = d
	}

	out := make([]Column, 0, len(defaults))
	seen := make(map[ColumnID]bool, len(defaults))
	for _, c := range stored {
		d, ok := byID[c.ID]
		if !ok || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		merged := d
		merged.Visible = c.Visible
		if c.Width > 0 {
			merged.Width = clampWidth(c.Width, d.MinWidth)
		}
		out = append(out, merged)
	}
	for _, d := range defaults {
		if !seen[d.ID] {
			out = append(out, d)
		}
	}
	return out
}

// ToggleColumn flips (or sets, when visible is non-nil) a column's visibility.
func ToggleColumn(cols []Column, id ColumnID, visible *bool) []Column {
	out := append([]Column(nil), cols...)
	for i := range out {
		if out[i].ID == id {
			if visible != nil {
				out[i].Visible = *visible
			} else {
				out[i].Visible = !out[i].Visible
			}
		}
	}
	return out
}

// ReorderColumns applies the given id order; ids not listed keep their
// relative order at the end.
func ReorderColumns(cols []Column, ids []ColumnID) []Column {
	byID := make(map[ColumnID]Column, len(cols))
	for _, c := range cols {
		byID[c.ID] = c
	}
	out := make([]Column, 0, len(cols))
	used := make(map[ColumnID]bool, len(cols))
	for _, id := range ids {
		if c, ok := byID[id]; ok && !used[id] {
			out = append(out, c)
			used[id] = true
		}
	}
	for _, c := range cols {
		if !used[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// ResizeColumn sets a width, never below the column's minimum.
func ResizeColumn(cols []Column, id ColumnID, width int) []Column {
	out := append([]Column(nil), cols...)
	for i := range out {
		if out[i].ID == id {
			out[i].Width = clampWidth(width, out[i].MinWidth)
		}
	}
	return out
}

// VisibleColumns filters to visible columns, preserving order.
func VisibleColumns(cols []Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if c.Visible {
			out = append(out, c)
		}
	}
	return out
}

func clampWidth(width, min int) int {
	if min <= 0 {
		min = minColumnWidth
	}
	if width < min {
		return min
	}
	return width
}
