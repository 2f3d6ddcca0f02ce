package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andresuchdata/sellerdash/backend-go/internal/repository"
	"github.com/google/uuid"
)

type settingsRepository struct {
	db *DB
}

func NewSettingsRepository(db *DB) *settingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetSetting(ctx context.Context, tenant uuid.UUID, workspaceID, key string) (json.RawMessage, error) {
	var value []byte
	err := r.db.QueryRowxContext(ctx,
		`SELECT value FROM user_settings WHERE user_id = $1 AND workspace_id = $2 AND key = $3`,
		tenant, workspaceID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return json.RawMessage(value), nil
}

func (r *settingsRepository) PutSetting(ctx context.Context, tenant uuid.UUID, workspaceID, key string, value json.RawMessage) error {
	query := `
		INSERT INTO user_settings (user_id, workspace_id, key, value, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, workspace_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, tenant, workspaceID, key, string(value)); err != nil {
		return fmt.Errorf("failed to put setting %s: %w", key, err)
	}
	return nil
}

func (r *settingsRepository) DeleteSetting(ctx context.Context, tenant uuid.UUID, workspaceID, key string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_settings WHERE user_id = $1 AND workspace_id = $2 AND key = $3`,
		tenant, workspaceID, key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
