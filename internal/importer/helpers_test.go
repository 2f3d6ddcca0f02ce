package importer

import (
	"github.com/shopspring/decimal"

	"github.com/andresuchdata/sellerdash/backend-go/internal/tabular"
)

func table(name string, headers []string, records ...[]string) *tabular.Table {
	t := &tabular.Table{Name: name, Headers: headers}
	for _, rec := range records {
		values := make([]tabular.Value, len(rec))
		for i, cell := range rec {
			values[i] = tabular.Cell(cell)
		}
		t.Rows = append(t.Rows, tabular.NewRow(headers, values))
	}
	return t
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
