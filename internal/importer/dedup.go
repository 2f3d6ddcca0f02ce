package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/sellerdash/backend-go/internal/columns"
	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/parse"
	"github.com/andresuchdata/sellerdash/backend-go/internal/tabular"
)

// DedupPolicy decides what happens when two rows of one order share a
// (name, size, sku) key.
type DedupPolicy string

const (
	// DedupMerge sums quantity, price, fees and discounts.
	DedupMerge DedupPolicy = "merge"
	// DedupPreferRicher keeps the row with the larger absolute price.
	DedupPreferRicher DedupPolicy = "prefer_richer"
)

// ParseDedupPolicy maps a config value to a policy, defaulting to merge.
func ParseDedupPolicy(s string) (DedupPolicy, error) {
	switch DedupPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DedupMerge:
		return DedupMerge, nil
	case DedupPreferRicher:
		return DedupPreferRicher, nil
	default:
		return "", fmt.Errorf("unknown dedup policy %q", s)
	}
}

var (
	sizeAttr  = regexp.MustCompile(`(?i)\bsize\s*[:=]\s*([^,;|]+)`)
	colorAttr = regexp.MustCompile(`(?i)\bcolou?r\s*[:=]\s*([^,;|]+)`)
	anyAttr   = regexp.MustCompile(`[:=]`)
)

// ParseVariation extracts size and color from a variation string such as
// "Size: M, Color: Red". A string with no key/value pairs is returned
// whole as the size.
func ParseVariation(s string) (size, color string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	if m := sizeAttr.FindStringSubmatch(s); m != nil {
		size = strings.TrimSpace(m[1])
	}
	if m := colorAttr.FindStringSubmatch(s); m != nil {
		color = strings.TrimSpace(m[1])
	}
	if size == "" && color == "" && !anyAttr.MatchString(s) {
		size = s
	}
	return size, color
}

var placeholderNames = map[string]struct{}{
	"":         {},
	"-":        {},
	"n/a":      {},
	"na":       {},
	"none":     {},
	"item":     {},
	"product":  {},
	"title":    {},
	"unknown":  {},
	"untitled": {},
}

// IsPlaceholderName reports product names that carry no information.
func IsPlaceholderName(name string) bool {
	_, ok := placeholderNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// BuildLineItems turns the item rows of one order into line items,
// collapsing rows that share a dedup key. It returns the items in
// first-seen order and the number of collapsed rows.
func BuildLineItems(rows []tabular.RawRow, policy DedupPolicy) ([]domain.LineItem, int) {
	fallbackName := domain.UnknownProductName
	for _, r := range rows {
		if name := columns.ResolveText(r, columns.ItemName); !IsPlaceholderName(name) {
			fallbackName = name
			break
		}
	}

	var (
		out   []domain.LineItem
		index = make(map[string]int)
		dupes int
	)
	for _, r := range rows {
		li := lineItemFromRow(r, fallbackName)
		key := li.DedupKey()

		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, li)
			continue
		}

		dupes++
		existing := &out[i]
		switch policy {
		case DedupPreferRicher:
			if li.Price.Abs().GreaterThan(existing.Price.Abs()) {
				*existing = li
			}
		default:
			existing.Quantity += li.Quantity
			existing.Price = existing.Price.Add(li.Price)
			existing.Fees = existing.Fees.Add(li.Fees)
			existing.Discounts = existing.Discounts.Add(li.Discounts)
		}
	}

	for i := range out {
		out[i].ComputeProfit()
	}
	return out, dupes
}

func lineItemFromRow(r tabular.RawRow, fallbackName string) domain.LineItem {
	name := columns.ResolveText(r, columns.ItemName)
	if IsPlaceholderName(name) {
		name = fallbackName
	}

	size := columns.ResolveText(r, columns.Size)
	varSize, color := ParseVariation(columns.ResolveText(r, columns.Variation))
	if size == "" {
		size = varSize
	}

	qty := parse.Quantity(columns.ResolveText(r, columns.Quantity))

	return domain.LineItem{
		ProductName: name,
		SKU:         domain.StringPtr(columns.ResolveText(r, columns.SKU)),
		Size:        domain.StringPtr(domain.ComposeSize(size, color)),
		Quantity:    qty,
		Price:       lineTotal(r),
		Fees:        columns.ResolveAmount(r, columns.ItemFees),
		COGS:        decimal.Zero,
		Discounts:   columns.ResolveAmount(r, columns.Discount),
	}
}

// SummaryLine is the synthesized single line of an order that arrived
// without item rows.
func SummaryLine(o domain.OrderRecord) domain.LineItem {
	li := domain.LineItem{
		ProductName: domain.SummaryLineName,
		Quantity:    1,
		Price:       o.TotalPrice,
		Fees:        o.TotalFees,
		COGS:        decimal.Zero,
		Discounts:   o.TotalDiscounts,
		OrderKey:    o.OrderID,
	}
	li.ComputeProfit()
	return li
}
