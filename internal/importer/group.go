package importer

import (
	"sort"
	"strings"

	"github.com/andresuchdata/sellerdash/backend-go/internal/columns"
	"github.com/andresuchdata/sellerdash/backend-go/internal/tabular"
)

// OrderRows are the rows of one order key, split by role.
type OrderRows struct {
	Summary  []tabular.RawRow
	Items    []tabular.RawRow
	Payments []tabular.RawRow
}

// Grouping joins every classified file on the order identifier.
type Grouping struct {
	Summary  map[string][]tabular.RawRow
	Items    map[string][]tabular.RawRow
	Payments map[string][]tabular.RawRow

	// Keys is the sorted union of keys across the three maps.
	Keys []string

	DroppedRows      int
	IgnoredFileNames []string
}

// Rows returns the grouped rows of one key.
func (g *Grouping) Rows(key string) OrderRows {
	return OrderRows{
		Summary:  g.Summary[key],
		Items:    g.Items[key],
		Payments: g.Payments[key],
	}
}

// OrderKey extracts the trimmed order identifier of a row; "" means none.
func OrderKey(row tabular.RawRow) string {
	return strings.TrimSpace(columns.ResolveText(row, columns.OrderID))
}

// Group classifies tables and buckets their rows by order key. Tables are
// visited in a canonical order so the result does not depend on upload order.
func Group(tables []*tabular.Table) *Grouping {
	g := &Grouping{
		Summary:  make(map[string][]tabular.RawRow),
		Items:    make(map[string][]tabular.RawRow),
		Payments: make(map[string][]tabular.RawRow),
	}

	ordered := make([]*tabular.Table, 0, len(tables))
	for _, t := range tables {
		if t != nil {
			ordered = append(ordered, t)
		}
	}
	canonicalOrder(ordered)

	keys := make(map[string]struct{})
	for _, t := range ordered {
		roles := ClassifyTable(t)
		if roles.None() {
			g.IgnoredFileNames = append(g.IgnoredFileNames, t.Name)
			continue
		}

		for _, row := range t.Rows {
			key := OrderKey(row)
			if key == "" {
				g.DroppedRows++
				continue
			}
			keys[key] = struct{}{}
			if roles.Summary {
				g.Summary[key] = append(g.Summary[key], row)
			}
			if roles.Items {
				g.Items[key] = append(g.Items[key], row)
			}
			if roles.Payments {
				g.Payments[key] = append(g.Payments[key], row)
			}
		}
	}

	g.Keys = make([]string, 0, len(keys))
	for k := range keys {
		g.Keys = append(g.Keys, k)
	}
	sort.Strings(g.Keys)
	return g
}

// canonicalOrder sorts tables by name, header row and finally full content,
// so two same-named uploads land in the same order whichever came first.
func canonicalOrder(tables []*tabular.Table) {
	type sortKey struct {
		name, header, content string
	}
	keys := make(map[*tabular.Table]sortKey, len(tables))
	for _, t := range tables {
		keys[t] = sortKey{
			name:    t.Name,
			header:  strings.Join(t.HeaderRow(), "\x1f"),
			content: tableContent(t),
		}
	}
	sort.SliceStable(tables, func(i, j int) bool {
		a, b := keys[tables[i]], keys[tables[j]]
		if a.name != b.name {
			return a.name < b.name
		}
		if a.header != b.header {
			return a.header < b.header
		}
		return a.content < b.content
	})
}

func tableContent(t *tabular.Table) string {
	var b strings.Builder
	for _, row := range t.Rows {
		for _, f := range row.Fields() {
			b.WriteString(f.Header)
			b.WriteByte(0x1f)
			b.WriteString(f.Value.Text())
			b.WriteByte(0x1e)
		}
		b.WriteByte(0x1d)
	}
	return b.String()
}
