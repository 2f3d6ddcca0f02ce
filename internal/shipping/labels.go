// Package shipping normalizes shipping-ledger exports into label records.
package shipping

import (
	"strings"

	"github.com/andresuchdata/sellerdash/backend-go/internal/columns"
	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/parse"
	"github.com/andresuchdata/sellerdash/backend-go/internal/tabular"
)

const (
	ProviderPirateShip = "PirateShip"
	LabelType          = "Label"
	DefaultCurrency    = "USD"
)

// IsLabel reports whether a type cell names a purchased label.
func IsLabel(typ string) bool {
	return strings.EqualFold(strings.TrimSpace(typ), "label")
}

// ClassifyLabelRow keeps a row only when its type is "label" and it carries
// a date, a description and a parseable total.
func ClassifyLabelRow(row tabular.RawRow) (domain.CleanedLabel, bool) {
	if !IsLabel(columns.ResolveText(row, columns.LabelType)) {
		return domain.CleanedLabel{}, false
	}

	date := columns.ResolveText(row, columns.LabelDate)
	desc := columns.ResolveText(row, columns.LabelDescription)
	total, ok := parse.LabelTotal(columns.ResolveText(row, columns.LabelTotal))
	if date == "" || desc == "" || !ok {
		return domain.CleanedLabel{}, false
	}

	return domain.CleanedLabel{
		Provider:    ProviderPirateShip,
		Type:        LabelType,
		Date:        date,
		Description: desc,
		Total:       total,
	}, true
}

// CleanRows drops payments, balances and malformed rows from a ledger.
func CleanRows(rows []tabular.RawRow) ([]domain.CleanedLabel, int) {
	cleaned := make([]domain.CleanedLabel, 0, len(rows))
	ignored := 0
	for _, row := range rows {
		label, ok := ClassifyLabelRow(row)
		if !ok {
			ignored++
			continue
		}
		cleaned = append(cleaned, label)
	}
	return cleaned, ignored
}
