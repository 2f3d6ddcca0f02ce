// backend-go/internal/service/shipping_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/repository"
	"github.com/andresuchdata/sellerdash/backend-go/internal/shipping"
	"github.com/andresuchdata/sellerdash/backend-go/internal/tabular"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrMissingOrderKey = errors.New("order id is required")

type ShippingService struct {
	repo repository.ShippingRepository
}

func NewShippingService(repo repository.ShippingRepository) *ShippingService {
	return &ShippingService{repo: repo}
}

// Import cleans a shipping ledger. With persist set, the detailed label
// rows are also upserted for the tenant.
func (s *ShippingService) Import(ctx context.Context, tenant uuid.UUID, file *domain.UploadedFile, persist bool) (*domain.ShippingImportResult, error) {
	table, err := tabular.ReadFile(file.Filename, file.Data)
	if err != nil {
		return nil, fmt.Errorf("error parsing file %s: %w", file.Filename, err)
	}

	cleaned, ignored := shipping.CleanRows(table.Rows)
	res := &domain.ShippingImportResult{Cleaned: cleaned, IgnoredCount: ignored}

	if persist {
		labels, skipped := shipping.ParseDetailed(table.Rows)
		if len(labels) > 0 {
			n, err := s.repo.UpsertLabels(ctx, tenant, labels)
			if err != nil {
				return nil, err
			}
			res.Persisted = n
		}
		log.Info().
			Str("tenant", tenant.String()).
			Str("file", file.Filename).
			Int("labels", len(labels)).
			Int("skipped", skipped).
			Msg("shipping labels persisted")
	}

	return res, nil
}

func (s *ShippingService) ListLabels(ctx context.Context, tenant uuid.UUID, limit, offset int) ([]domain.ShippingLabel, error) {
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	return s.repo.ListLabels(ctx, tenant, limit, offset)
}

// LinkLabel attaches a label to one of the tenant's orders by marketplace key.
func (s *ShippingService) LinkLabel(ctx context.Context, tenant uuid.UUID, labelID, orderKey string) error {
	orderKey = strings.TrimSpace(orderKey)
	if orderKey == "" {
		return ErrMissingOrderKey
	}
	return s.repo.LinkLabelToOrder(ctx, tenant, labelID, orderKey)
}
