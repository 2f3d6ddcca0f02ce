package service

import (
	"fmt"

	"github.com/andresuchdata/sellerdash/backend-go/internal/config"
	"github.com/andresuchdata/sellerdash/backend-go/internal/importer"
)

// EngineOptions maps the IMPORT_* settings onto reconciliation options.
func EngineOptions(cfg config.ImportConfig) (importer.Options, error) {
	policy, err := importer.ParseDedupPolicy(cfg.DedupPolicy)
	if err != nil {
		return importer.Options{}, fmt.Errorf("invalid IMPORT_DEDUP_POLICY: %w", err)
	}
	return importer.Options{
		DedupPolicy:        policy,
		SummaryPlaceholder: cfg.SummaryPlaceholder,
		StrictFees:         cfg.StrictFees,
		Transactional:      cfg.Transactional,
		DefaultStoreName:   cfg.DefaultStoreName,
	}, nil
}
