package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/andresuchdata/sellerdash/backend-go/internal/importer"
	"github.com/andresuchdata/sellerdash/backend-go/internal/repository"
	"github.com/andresuchdata/sellerdash/backend-go/internal/service"
	"github.com/andresuchdata/sellerdash/backend-go/internal/tabular"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no orders", importer.ErrNoOrders, http.StatusUnprocessableEntity},
		{"persist", &importer.PersistError{Step: "link variants", Err: errors.New("boom")}, http.StatusInternalServerError},
		{"not found", fmt.Errorf("label: %w", repository.ErrNotFound), http.StatusNotFound},
		{"nothing archived", service.ErrNothingArchived, http.StatusNotFound},
		{"conflict", fmt.Errorf("insert: %w", repository.ErrConflict), http.StatusConflict},
		{"malformed", fmt.Errorf("%w: bad quote", tabular.ErrMalformedFile), http.StatusBadRequest},
		{"missing order key", service.ErrMissingOrderKey, http.StatusBadRequest},
		{"negative cost", service.ErrInvalidCost, http.StatusBadRequest},
		{"missing variant", service.ErrMissingVariantID, http.StatusBadRequest},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"other", errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
