// backend-go/internal/service/settings_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andresuchdata/sellerdash/backend-go/internal/cache"
	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type SettingsService struct {
	repo  repository.SettingsRepository
	cache cache.SettingsCache
}

func NewSettingsService(repo repository.SettingsRepository, c cache.SettingsCache) *SettingsService {
	if c == nil {
		c = cache.NewNoopSettingsCache()
	}
	return &SettingsService{repo: repo, cache: c}
}

// GetColumns returns the tenant's orders-table layout, falling back to the
// defaults when nothing usable is stored.
func (s *SettingsService) GetColumns(ctx context.Context, tenant uuid.UUID, workspaceID string) ([]domain.Column, error) {
	if cols, ok, err := s.cache.GetColumns(ctx, tenant, workspaceID); err != nil {
		log.Warn().Err(err).Str("tenant", tenant.String()).Msg("settings cache read failed")
	} else if ok {
		return cols, nil
	}

	raw, err := s.repo.GetSetting(ctx, tenant, workspaceID, domain.ColumnsSettingKey)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	var stored []domain.Column
	if len(raw) > 0 {
		if uerr := json.Unmarshal(raw, &stored); uerr != nil {
			log.Warn().Err(uerr).Str("tenant", tenant.String()).Msg("ignoring malformed column settings")
			stored = nil
		}
	}

	cols := domain.NormalizeColumns(stored)
	if err := s.cache.SetColumns(ctx, tenant, workspaceID, cols); err != nil {
		log.Warn().Err(err).Msg("settings cache write failed")
	}
	return cols, nil
}

func (s *SettingsService) SaveColumns(ctx context.Context, tenant uuid.UUID, workspaceID string, cols []domain.Column) ([]domain.Column, error) {
	cols = domain.NormalizeColumns(cols)
	raw, err := json.Marshal(cols)
	if err != nil {
		return nil, fmt.Errorf("failed to encode columns: %w", err)
	}
	if err := s.repo.PutSetting(ctx, tenant, workspaceID, domain.ColumnsSettingKey, raw); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenant, workspaceID)
	return cols, nil
}

// ResetColumns drops the stored layout and returns the defaults.
func (s *SettingsService) ResetColumns(ctx context.Context, tenant uuid.UUID, workspaceID string) ([]domain.Column, error) {
	if err := s.repo.DeleteSetting(ctx, tenant, workspaceID, domain.ColumnsSettingKey); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenant, workspaceID)
	return domain.DefaultColumns(), nil
}

func (s *SettingsService) invalidate(ctx context.Context, tenant uuid.UUID, workspaceID string) {
	if err := s.cache.Invalidate(ctx, tenant, workspaceID); err != nil {
		log.Warn().Err(err).Str("tenant", tenant.String()).Msg("settings cache invalidate failed")
	}
}
