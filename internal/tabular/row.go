package tabular

// Field is one (header, value) pair of a row, in file column order.
type Field struct {
	Header string
	Value  Value
}

// RawRow is an ordered mapping from the exporter's original headers to cell
// values. Header spelling and casing are kept exactly as authored.
type RawRow struct {
	fields []Field
}

// NewRow zips headers with values. Missing trailing values become null.
func NewRow(headers []string, values []Value) RawRow {
	fields := make([]Field, len(headers))
	for i, h := range headers {
		v := Null()
		if i < len(values) {
			v = values[i]
		}
		fields[i] = Field{Header: h, Value: v}
	}
	return RawRow{fields: fields}
}

// RowFromPairs builds a row from alternating header/value strings. Handy in tests.
func RowFromPairs(pairs ...string) RawRow {
	fields := make([]Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		fields = append(fields, Field{Header: pairs[i], Value: Cell(pairs[i+1])})
	}
	return RawRow{fields: fields}
}

// Fields returns the row's fields in column order.
func (r RawRow) Fields() []Field { return r.fields }

// Headers returns the row's headers in column order.
func (r RawRow) Headers() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Header
	}
	return out
}

// Get looks up an exact header.
func (r RawRow) Get(header string) (Value, bool) {
	for _, f := range r.fields {
		if f.Header == header {
			return f.Value, true
		}
	}
	return Null(), false
}

// Empty reports whether every cell is blank.
func (r RawRow) Empty() bool {
	for _, f := range r.fields {
		if !f.Value.IsBlank() {
			return false
		}
	}
	return true
}

// Table is one parsed file.
type Table struct {
	Name    string
	Headers []string
	Rows    []RawRow
}

// HeaderRow returns the header set a classifier should inspect: the first
// row's headers, or the table headers when the file has no data rows.
func (t *Table) HeaderRow() []string {
	if len(t.Rows) > 0 {
		return t.Rows[0].Headers()
	}
	return t.Headers
}
