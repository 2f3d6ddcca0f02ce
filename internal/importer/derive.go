package importer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/sellerdash/backend-go/internal/columns"
	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/parse"
	"github.com/andresuchdata/sellerdash/backend-go/internal/tabular"
)

// DeriveRevenue walks the revenue fallback chain and returns the first
// non-zero amount:
//
//  1. net amount of the first summary row
//  2. total amount of the first summary row
//  3. sum of item line totals (unit price x quantity when absent)
//  4. adjusted net amount of the first summary row
//  5. sum of payment net amounts
func DeriveRevenue(rows OrderRows) decimal.Decimal {
	if len(rows.Summary) > 0 {
		first := rows.Summary[0]
		if v := columns.ResolveAmount(first, columns.NetAmount); !v.IsZero() {
			return v
		}
		if v := columns.ResolveAmount(first, columns.TotalAmount); !v.IsZero() {
			return v
		}
	}

	if v := sumRows(rows.Items, lineTotal); !v.IsZero() {
		return v
	}

	if len(rows.Summary) > 0 {
		if v := columns.ResolveAmount(rows.Summary[0], columns.AdjustedNetAmount); !v.IsZero() {
			return v
		}
	}

	return sumRows(rows.Payments, func(r tabular.RawRow) decimal.Decimal {
		return columns.ResolveAmount(r, columns.PaymentNet)
	})
}

// DeriveFees walks the fee fallback chain:
//
//  1. sum of named fee columns on the first summary row
//  2. sum over payment rows of every fee column plus regulatory fees
//  3. sum of item fee columns
//  4. adjusted fees of the first summary row
//
// With strict set, step 2 only counts named fee columns.
func DeriveFees(rows OrderRows, strict bool) decimal.Decimal {
	if len(rows.Summary) > 0 {
		if v := sumMatching(rows.Summary[0], columns.SummaryFees.Matches); !v.IsZero() {
			return v
		}
	}

	paymentFee := isPaymentFeeColumn
	if strict {
		paymentFee = func(h string) bool {
			return columns.SummaryFees.Matches(h) || columns.RegulatoryFees.Matches(h)
		}
	}
	if v := sumRows(rows.Payments, func(r tabular.RawRow) decimal.Decimal {
		return sumMatching(r, paymentFee)
	}); !v.IsZero() {
		return v
	}

	if v := sumRows(rows.Items, func(r tabular.RawRow) decimal.Decimal {
		return columns.ResolveAmount(r, columns.ItemFees)
	}); !v.IsZero() {
		return v
	}

	if len(rows.Summary) > 0 {
		return columns.ResolveAmount(rows.Summary[0], columns.AdjustedFees)
	}
	return decimal.Zero
}

// isPaymentFeeColumn matches fee-word headers and regulatory fee aliases.
// Adjusted and posted columns restate the same fee and are skipped.
func isPaymentFeeColumn(header string) bool {
	if columns.RegulatoryFees.Matches(header) {
		return true
	}
	if !columns.HasFeeToken(header) {
		return false
	}
	for _, w := range columns.Words(header) {
		if w == "adjusted" || w == "posted" {
			return false
		}
	}
	return true
}

// DeriveDiscounts reads the summary discount, else sums item discounts.
func DeriveDiscounts(rows OrderRows) decimal.Decimal {
	if len(rows.Summary) > 0 {
		if v := columns.ResolveAmount(rows.Summary[0], columns.Discount); !v.IsZero() {
			return v
		}
	}
	return sumRows(rows.Items, func(r tabular.RawRow) decimal.Decimal {
		return columns.ResolveAmount(r, columns.Discount)
	})
}

// DeriveOrderDate takes the first non-empty date column from the first row of
// summary, items, then payments. Unparseable dates yield nil.
func DeriveOrderDate(rows OrderRows) *time.Time {
	raw, ok := firstNonBlank(rows, columns.OrderDate)
	if !ok {
		return nil
	}
	t, ok := parse.Date(raw)
	if !ok {
		return nil
	}
	return &t
}

// DeriveStoreName mirrors DeriveOrderDate for the store column.
func DeriveStoreName(rows OrderRows, fallback string) string {
	if name, ok := firstNonBlank(rows, columns.StoreName); ok {
		return name
	}
	if fallback == "" {
		return domain.DefaultStoreName
	}
	return fallback
}

// DeriveOrder builds the order record for one grouped key.
func DeriveOrder(key string, rows OrderRows, opts Options) domain.OrderRecord {
	o := domain.OrderRecord{
		OrderID:        key,
		OrderDate:      DeriveOrderDate(rows),
		StoreName:      DeriveStoreName(rows, opts.DefaultStoreName),
		Source:         domain.SourceCSV,
		TotalPrice:     DeriveRevenue(rows),
		TotalFees:      DeriveFees(rows, opts.StrictFees),
		TotalDiscounts: DeriveDiscounts(rows),
		TotalCOGS:      decimal.Zero,
	}
	o.ComputeProfit()
	return o
}

func firstNonBlank(rows OrderRows, aliases columns.AliasSet) (string, bool) {
	for _, set := range [][]tabular.RawRow{rows.Summary, rows.Items, rows.Payments} {
		if len(set) == 0 {
			continue
		}
		if v, ok := columns.ResolveNonBlank(set[0], aliases); ok {
			return v, true
		}
	}
	return "", false
}

// lineTotal is the line-total column, or unit price times quantity.
func lineTotal(r tabular.RawRow) decimal.Decimal {
	if v := columns.ResolveAmount(r, columns.LineTotal); !v.IsZero() {
		return v
	}
	unit := columns.ResolveAmount(r, columns.UnitPrice)
	qty := parse.Quantity(columns.ResolveText(r, columns.Quantity))
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}

func sumRows(rows []tabular.RawRow, f func(tabular.RawRow) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(f(r))
	}
	return total
}

func sumMatching(r tabular.RawRow, match func(string) bool) decimal.Decimal {
	total := decimal.Zero
	for _, f := range r.Fields() {
		if match(strings.TrimSpace(f.Header)) {
			total = total.Add(columns.Amount(f.Value))
		}
	}
	return total
}
