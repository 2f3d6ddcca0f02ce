package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses a delimited export with a header row. The delimiter is
// sniffed from the header line (comma, semicolon or tab).
func ReadCSV(name string, r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	sample, _ := br.Peek(br.Buffered())
	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(sample)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Table{Name: name}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header of %s: %w", name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	table := &Table{Name: name, Headers: header}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record %d of %s: %w", line, name, err)
		}

		values := make([]Value, len(record))
		for i, cell := range record {
			values[i] = Cell(strings.TrimSpace(cell))
		}
		row := NewRow(header, values)
		if row.Empty() {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func sniffDelimiter(sample []byte) rune {
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}
	best, bestCount := ',', bytes.Count(sample, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if c := bytes.Count(sample, []byte(string(d))); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}
