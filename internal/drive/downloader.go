package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

var ErrFolderNotFound = errors.New("folder not found")

// Source is the part of the Drive client the downloader needs.
type Source interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
}

// Importable reports whether a Drive file is a CSV or XLSX export.
func Importable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx", ".xlsm":
		return true
	}
	return false
}

// Downloader pulls importable files from a Drive folder into memory.
type Downloader struct {
	source  Source
	limiter *rate.Limiter
}

// NewDownloader paces downloads at perSecond to stay inside the Drive API
// quota; zero or less means unlimited.
func NewDownloader(source Source, perSecond float64) *Downloader {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Downloader{source: source, limiter: rate.NewLimiter(limit, 1)}
}

// FetchFolder downloads every CSV and XLSX file in folderID. When fileIDs is
// non-empty only those files are fetched.
func (d *Downloader) FetchFolder(ctx context.Context, folderID string, fileIDs []string) ([]*domain.UploadedFile, error) {
	files, err := d.source.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(fileIDs))
	for _, id := range fileIDs {
		wanted[id] = true
	}

	var out []*domain.UploadedFile
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(wanted) > 0 && !wanted[f.ID] {
			continue
		}
		if !Importable(f.Name) {
			log.Debug().Str("file", f.Name).Str("mime", f.MimeType).Msg("skipping non-tabular drive file")
			continue
		}

		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := d.source.DownloadFile(ctx, f.ID, &buf); err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}
		out = append(out, &domain.UploadedFile{Filename: f.Name, Data: buf.Bytes()})
	}
	return out, nil
}
