// backend-go/internal/service/import_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/importer"
	"github.com/andresuchdata/sellerdash/backend-go/internal/repository"
	"github.com/andresuchdata/sellerdash/backend-go/internal/storage"
	"github.com/andresuchdata/sellerdash/backend-go/internal/tabular"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNothingArchived is returned by Replay when a run left no raw files behind.
var ErrNothingArchived = errors.New("no archived files for import run")

const defaultRunsLimit = 50

type ImportService struct {
	engine  *importer.Engine
	runs    repository.ImportRunRepository
	archive storage.ObjectStorage
	workers int
}

func NewImportService(engine *importer.Engine, runs repository.ImportRunRepository, archive storage.ObjectStorage, workers int) *ImportService {
	if archive == nil {
		archive = storage.Noop{}
	}
	return &ImportService{
		engine:  engine,
		runs:    runs,
		archive: archive,
		workers: workers,
	}
}

// ImportOrders records an import run, archives the raw uploads, parses them
// and reconciles the batch. The run row is finalized on both paths.
func (s *ImportService) ImportOrders(ctx context.Context, tenant uuid.UUID, files []*domain.UploadedFile) (*domain.ImportResult, error) {
	run := &domain.ImportRun{
		ID:        uuid.New(),
		TenantID:  tenant,
		Kind:      domain.ImportKindOrders,
		Status:    domain.ImportStatusProcessing,
		FileNames: fileNames(files),
		StartedAt: time.Now().UTC(),
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create import run: %w", err)
	}

	logger := log.With().Str("tenant", tenant.String()).Str("run_id", run.ID.String()).Logger()
	s.archiveFiles(ctx, tenant, run.ID, files)

	res, err := s.reconcile(ctx, tenant, files)

	now := time.Now().UTC()
	run.CompletedAt = &now
	if err != nil {
		run.Status = domain.ImportStatusFailed
		run.ErrorMessage = err.Error()
	} else {
		run.Status = domain.ImportStatusCompleted
		run.Apply(res)
	}
	if ferr := s.runs.FinishRun(ctx, run); ferr != nil {
		logger.Error().Err(ferr).Msg("failed to finalize import run")
	}

	if err != nil {
		logger.Warn().Err(err).Int("files", len(files)).Msg("order import failed")
		return nil, err
	}
	return res, nil
}

// Preview runs classification and derivation without writing anything.
func (s *ImportService) Preview(ctx context.Context, files []*domain.UploadedFile) (*importer.Plan, error) {
	tables, err := tabular.ReadAll(ctx, files, s.workers)
	if err != nil {
		return nil, err
	}
	return s.engine.Plan(tables)
}

// Replay re-imports the raw files archived under an earlier run. The
// replay is recorded as a new run.
func (s *ImportService) Replay(ctx context.Context, tenant, runID uuid.UUID) (*domain.ImportResult, error) {
	objects, err := s.archive.ListObjects(ctx, storage.RunPrefix(tenant, runID))
	if err != nil {
		return nil, fmt.Errorf("failed to list archived files: %w", err)
	}
	if len(objects) == 0 {
		return nil, ErrNothingArchived
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	files := make([]*domain.UploadedFile, 0, len(objects))
	for _, obj := range objects {
		data, err := s.archive.GetObject(ctx, obj.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", obj.Key, err)
		}
		files = append(files, &domain.UploadedFile{Filename: storage.ArchivedName(obj.Key), Data: data})
	}

	log.Info().
		Str("tenant", tenant.String()).
		Str("replayed_run", runID.String()).
		Int("files", len(files)).
		Msg("replaying archived import")
	return s.ImportOrders(ctx, tenant, files)
}

func (s *ImportService) ListRuns(ctx context.Context, tenant uuid.UUID, limit int) ([]domain.ImportRun, error) {
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	return s.runs.ListRuns(ctx, tenant, limit)
}

func (s *ImportService) reconcile(ctx context.Context, tenant uuid.UUID, files []*domain.UploadedFile) (*domain.ImportResult, error) {
	tables, err := tabular.ReadAll(ctx, files, s.workers)
	if err != nil {
		return nil, err
	}
	return s.engine.Import(ctx, tenant, tables)
}

// archiveFiles is best effort; a failed upload never blocks the import.
func (s *ImportService) archiveFiles(ctx context.Context, tenant, runID uuid.UUID, files []*domain.UploadedFile) {
	for i, f := range files {
		key := storage.ArchiveKey(tenant, runID, i, f.Filename)
		if err := s.archive.UploadObject(ctx, key, f.Data); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to archive upload")
		}
	}
}

func fileNames(files []*domain.UploadedFile) []string {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Filename)
	}
	return names
}
