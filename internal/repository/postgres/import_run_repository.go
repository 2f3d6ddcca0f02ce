package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// importRunRepository records one audit row per import batch.
type importRunRepository struct {
	db *DB
}

func NewImportRunRepository(db *DB) *importRunRepository {
	return &importRunRepository{db: db}
}

// CreateRun inserts a run in its initial state, assigning an id when unset.
func (r *importRunRepository) CreateRun(ctx context.Context, run *domain.ImportRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	query := `
		INSERT INTO import_runs (
			id, user_id, kind, status, file_names, started_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.TenantID, run.Kind, run.Status, pq.Array(run.FileNames), run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}
	return nil
}

// FinishRun stores the final status and counters of a run.
func (r *importRunRepository) FinishRun(ctx context.Context, run *domain.ImportRun) error {
	query := `
		UPDATE import_runs
		SET status = $1, unique_orders = $2, inserted_orders = $3,
		    duplicate_orders = $4, item_duplicates = $5, ignored_files = $6,
		    ignored_rows = $7, error_message = $8, completed_at = $9
		WHERE id = $10
	`
	_, err := r.db.ExecContext(ctx, query,
		run.Status, run.UniqueOrders, run.InsertedOrders,
		run.DuplicateOrders, run.ItemDuplicates, run.IgnoredFiles,
		run.IgnoredRows, run.ErrorMessage, run.CompletedAt, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish import run: %w", err)
	}
	return nil
}

// ListRuns returns the tenant's most recent runs first.
func (r *importRunRepository) ListRuns(ctx context.Context, tenant uuid.UUID, limit int) ([]domain.ImportRun, error) {
	query := `
		SELECT id, user_id, kind, status, file_names, unique_orders,
		       inserted_orders, duplicate_orders, item_duplicates,
		       ignored_files, ignored_rows, error_message, started_at, completed_at
		FROM import_runs
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, tenant, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ImportRun
	for rows.Next() {
		var run domain.ImportRun
		if err := rows.Scan(
			&run.ID, &run.TenantID, &run.Kind, &run.Status, pq.Array(&run.FileNames),
			&run.UniqueOrders, &run.InsertedOrders, &run.DuplicateOrders, &run.ItemDuplicates,
			&run.IgnoredFiles, &run.IgnoredRows, &run.ErrorMessage, &run.StartedAt, &run.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
