package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/andresuchdata/sellerdash/backend-go/internal/config"
	"github.com/google/uuid"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations the import
// archive needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	UploadObject(ctx context.Context, key string, data []byte) error
}

const (
	ProviderMinio = "minio"
	ProviderS3    = "s3"
)

// New builds the configured backend, or a no-op store when archiving is off.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStorage, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderMinio:
		return NewMinioClient(ctx, cfg)
	case ProviderS3:
		return NewS3Client(cfg)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// RunPrefix is the folder holding one import run's raw files.
func RunPrefix(tenant, runID uuid.UUID) string {
	return path.Join("imports", tenant.String(), runID.String()) + "/"
}

// ArchiveKey places the index-th file of a batch under its run folder as
// "000-name". The index keeps same-named uploads apart and preserves batch
// order when listing. Directory parts of the uploaded name are dropped.
func ArchiveKey(tenant, runID uuid.UUID, index int, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return RunPrefix(tenant, runID) + fmt.Sprintf("%03d-%s", index, name)
}

// ArchivedName recovers the uploaded file name from an archive key.
func ArchivedName(key string) string {
	name := path.Base(key)
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i > 0 && i < len(name)-1 && name[i] == '-' {
		return name[i+1:]
	}
	return name
}

// Noop discards uploads and lists nothing.
type Noop struct{}

func (Noop) ListObjects(context.Context, string) ([]ObjectInfo, error) { return nil, nil }

func (Noop) GetObject(_ context.Context, key string) ([]byte, error) {
	return nil, fmt.Errorf("object %s: archive storage disabled", key)
}

func (Noop) UploadObject(context.Context, string, []byte) error { return nil }

var _ ObjectStorage = Noop{}
