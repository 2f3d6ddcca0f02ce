package tabular

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrMalformedFile marks uploads that could not be decoded as CSV or XLSX.
var ErrMalformedFile = errors.New("malformed file")

// ReadFile picks a reader from the file extension.
func ReadFile(name string, data []byte) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		t, err = ReadXLSX(name, bytes.NewReader(data))
	default:
		t, err = ReadCSV(name, bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}
	return t, nil
}

// ReadAll parses files concurrently with at most workers in flight and
// returns tables in input order. It returns only after every file is parsed.
func ReadAll(ctx context.Context, files []*domain.UploadedFile, workers int) ([]*Table, error) {
	if workers < 1 {
		workers = 1
	}

	tables := make([]*Table, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := ReadFile(file.Filename, file.Data)
			if err != nil {
				return fmt.Errorf("error parsing file %s: %w", file.Filename, err)
			}
			log.Debug().Str("file", file.Filename).Int("rows", len(t.Rows)).Msg("parsed file")
			tables[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
