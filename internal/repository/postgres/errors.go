package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/sellerdash/backend-go/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
)

// classify tags integrity violations (SQLSTATE class 23) with
// repository.ErrConflict while keeping the driver error in the chain.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return fmt.Errorf("%w: %w", repository.ErrConflict, err)
	}
	return err
}
