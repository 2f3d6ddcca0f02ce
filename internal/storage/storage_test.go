package storage

import (
	"context"
	"testing"

	"github.com/andresuchdata/sellerdash/backend-go/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabledIsNoop(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, s)

	require.NoError(t, s.UploadObject(context.Background(), "k", []byte("x")))
	objs, err := s.ListObjects(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, objs)
	_, err = s.GetObject(context.Background(), "k")
	assert.Error(t, err)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Enabled: true, Provider: "ftp"})
	assert.ErrorContains(t, err, "unknown storage provider")

	_, err = New(context.Background(), config.StorageConfig{Enabled: true, Provider: ProviderS3, Endpoint: "s3.local"})
	assert.ErrorContains(t, err, "credentials")

	_, err = New(context.Background(), config.StorageConfig{
		Enabled: true, Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b",
	})
	assert.ErrorContains(t, err, "bucket")
}

func TestArchiveKey(t *testing.T) {
	tenant := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	run := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	assert.Equal(t,
		"imports/00000000-0000-0000-0000-000000000001/00000000-0000-0000-0000-000000000002/000-orders.csv",
		ArchiveKey(tenant, run, 0, "orders.csv"))
	assert.Equal(t, RunPrefix(tenant, run)+"001-items.xlsx", ArchiveKey(tenant, run, 1, `C:\exports\items.xlsx`))
	assert.Equal(t, RunPrefix(tenant, run)+"002-secret.csv", ArchiveKey(tenant, run, 2, "../../secret.csv"))
	assert.Equal(t, RunPrefix(tenant, run)+"003-upload", ArchiveKey(tenant, run, 3, ""))
	assert.NotEqual(t, ArchiveKey(tenant, run, 0, "orders.csv"), ArchiveKey(tenant, run, 1, "orders.csv"))
}

func TestArchivedName(t *testing.T) {
	tenant, run := uuid.New(), uuid.New()

	assert.Equal(t, "orders.csv", ArchivedName(ArchiveKey(tenant, run, 0, "orders.csv")))
	assert.Equal(t, "2024-orders.csv", ArchivedName(ArchiveKey(tenant, run, 12, "2024-orders.csv")))
	assert.Equal(t, "legacy.csv", ArchivedName("imports/t/r/legacy.csv"))
	assert.Equal(t, "007-", ArchivedName("imports/t/r/007-"))
}
