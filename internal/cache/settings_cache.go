package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/sellerdash/backend-go/internal/config"
	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const settingsKeyPrefix = "settings"

// SettingsCache fronts per-tenant column preferences.
type SettingsCache interface {
	GetColumns(ctx context.Context, tenant uuid.UUID, workspaceID string) ([]domain.Column, bool, error)
	SetColumns(ctx context.Context, tenant uuid.UUID, workspaceID string, cols []domain.Column) error
	Invalidate(ctx context.Context, tenant uuid.UUID, workspaceID string) error
	InvalidateTenant(ctx context.Context, tenant uuid.UUID) error
}

type redisSettingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSettingsCache struct{}

func NewSettingsCache(cfg config.CacheConfig) (SettingsCache, error) {
	if !cfg.Enabled {
		return &noopSettingsCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisSettingsCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopSettingsCache() SettingsCache {
	return &noopSettingsCache{}
}

func (c *redisSettingsCache) GetColumns(ctx context.Context, tenant uuid.UUID, workspaceID string) ([]domain.Column, bool, error) {
	payload, err := c.client.Get(ctx, columnsKey(tenant, workspaceID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var cols []domain.Column
	if err := json.Unmarshal(payload, &cols); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached columns: %w", err)
	}
	return cols, true, nil
}

func (c *redisSettingsCache) SetColumns(ctx context.Context, tenant uuid.UUID, workspaceID string, cols []domain.Column) error {
	payload, err := json.Marshal(cols)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}
	if err := c.client.Set(ctx, columnsKey(tenant, workspaceID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisSettingsCache) Invalidate(ctx context.Context, tenant uuid.UUID, workspaceID string) error {
	if err := c.client.Del(ctx, columnsKey(tenant, workspaceID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *redisSettingsCache) InvalidateTenant(ctx context.Context, tenant uuid.UUID) error {
	return unlinkPrefix(ctx, c.client, tenantPrefix(tenant))
}

func (noopSettingsCache) GetColumns(context.Context, uuid.UUID, string) ([]domain.Column, bool, error) {
	return nil, false, nil
}

func (noopSettingsCache) SetColumns(context.Context, uuid.UUID, string, []domain.Column) error {
	return nil
}

func (noopSettingsCache) Invalidate(context.Context, uuid.UUID, string) error { return nil }

func (noopSettingsCache) InvalidateTenant(context.Context, uuid.UUID) error { return nil }

func tenantPrefix(tenant uuid.UUID) string {
	return settingsKeyPrefix + ":" + tenant.String() + ":"
}

func columnsKey(tenant uuid.UUID, workspaceID string) string {
	if workspaceID == "" {
		workspaceID = "default"
	}
	return tenantPrefix(tenant) + workspaceID + ":" + domain.ColumnsSettingKey
}
