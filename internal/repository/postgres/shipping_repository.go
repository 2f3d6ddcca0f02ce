package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const labelBatchSize = 1000

type shippingRepository struct {
	db *DB
}

func NewShippingRepository(db *DB) *shippingRepository {
	return &shippingRepository{db: db}
}

// UpsertLabels is idempotent on (user_id, label_key); a re-uploaded export
// refreshes existing rows and never duplicates them. Manual order links
// survive the refresh.
func (r *shippingRepository) UpsertLabels(ctx context.Context, tenant uuid.UUID, labels []domain.ShippingLabel) (int, error) {
	query := `
		INSERT INTO shipping_labels (
			user_id, label_key, label_id, batch_id, carrier, service, ship_date,
			to_name, address1, city, state, postal, country, tracking,
			reference, notes, weight, dimensions, amount, currency, store_id, order_ref
		) VALUES (
			:user_id, :label_key, :label_id, :batch_id, :carrier, :service, :ship_date,
			:to_name, :address1, :city, :state, :postal, :country, :tracking,
			:reference, :notes, :weight, :dimensions, :amount, :currency, :store_id, :order_ref
		)
		ON CONFLICT (user_id, label_key)
		DO UPDATE SET
			label_id = EXCLUDED.label_id,
			batch_id = EXCLUDED.batch_id,
			carrier = EXCLUDED.carrier,
			service = EXCLUDED.service,
			ship_date = EXCLUDED.ship_date,
			to_name = EXCLUDED.to_name,
			address1 = EXCLUDED.address1,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			postal = EXCLUDED.postal,
			country = EXCLUDED.country,
			tracking = EXCLUDED.tracking,
			reference = EXCLUDED.reference,
			notes = EXCLUDED.notes,
			weight = EXCLUDED.weight,
			dimensions = EXCLUDED.dimensions,
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			store_id = EXCLUDED.store_id,
			order_ref = EXCLUDED.order_ref,
			updated_at = NOW()
	`

	total := 0
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for start := 0; start < len(labels); start += labelBatchSize {
			end := min(start+labelBatchSize, len(labels))
			batch := make([]domain.ShippingLabel, end-start)
			copy(batch, labels[start:end])
			for i := range batch {
				batch[i].TenantID = tenant
			}

			bound, args, err := sqlx.Named(query, batch)
			if err != nil {
				return fmt.Errorf("failed to bind labels: %w", classify(err))
			}
			res, err := tx.ExecContext(ctx, tx.Rebind(bound), args...)
			if err != nil {
				return fmt.Errorf("failed to upsert labels: %w", classify(err))
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			total += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *shippingRepository) ListLabels(ctx context.Context, tenant uuid.UUID, limit, offset int) ([]domain.ShippingLabel, error) {
	query := `
		SELECT id, user_id, label_key, label_id, batch_id, carrier, service, ship_date,
		       to_name, address1, city, state, postal, country, tracking,
		       reference, notes, weight, dimensions, amount, currency, store_id,
		       order_ref, order_id_fk, created_at
		FROM shipping_labels
		WHERE user_id = $1
		ORDER BY ship_date DESC NULLS LAST, created_at DESC
		LIMIT $2 OFFSET $3
	`
	var labels []domain.ShippingLabel
	if err := sqlx.SelectContext(ctx, r.db, &labels, query, tenant, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", classify(err))
	}
	return labels, nil
}

// LinkLabelToOrder attaches a label to the tenant's order with the given
// marketplace order id.
func (r *shippingRepository) LinkLabelToOrder(ctx context.Context, tenant uuid.UUID, labelID, orderKey string) error {
	var orderFK string
	err := r.db.QueryRowxContext(ctx,
		`SELECT id FROM orders WHERE user_id = $1 AND order_id = $2`,
		tenant, orderKey,
	).Scan(&orderFK)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("order %q: %w", orderKey, repository.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up order: %w", classify(err))
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE shipping_labels SET order_id_fk = $1, updated_at = NOW() WHERE user_id = $2 AND id = $3`,
		orderFK, tenant, labelID,
	)
	if err != nil {
		return fmt.Errorf("failed to link label: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("label %q: %w", labelID, repository.ErrNotFound)
	}
	return nil
}
