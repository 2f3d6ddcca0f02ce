package drive

import (
	"context"
	"errors"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNoFiles is returned when a folder holds nothing importable.
var ErrNoFiles = errors.New("no csv or xlsx files in folder")

// OrderImporter reconciles a batch of order exports for a tenant.
type OrderImporter interface {
	ImportOrders(ctx context.Context, tenant uuid.UUID, files []*domain.UploadedFile) (*domain.ImportResult, error)
}

// Syncer imports the exports found in a Drive folder as one batch.
type Syncer struct {
	downloader    *Downloader
	imports       OrderImporter
	defaultFolder string
}

func NewSyncer(downloader *Downloader, imports OrderImporter, defaultFolder string) *Syncer {
	return &Syncer{downloader: downloader, imports: imports, defaultFolder: defaultFolder}
}

func (s *Syncer) Sync(ctx context.Context, tenant uuid.UUID, folderID string, fileIDs []string) (*domain.ImportResult, error) {
	if folderID == "" {
		folderID = s.defaultFolder
	}

	files, err := s.downloader.FetchFolder(ctx, folderID, fileIDs)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	log.Info().
		Str("tenant", tenant.String()).
		Str("folder", folderID).
		Int("files", len(files)).
		Msg("importing drive folder")
	return s.imports.ImportOrders(ctx, tenant, files)
}
