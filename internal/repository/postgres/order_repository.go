package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/importer"
	"github.com/andresuchdata/sellerdash/backend-go/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Postgres caps bind parameters at 65535 per statement.
const (
	orderBatchSize = 1000
	itemBatchSize  = 500
)

type orderRepository struct {
	db *DB
	q  dbtx
}

func NewOrderRepository(db *DB) *orderRepository {
	return &orderRepository{db: db, q: db}
}

// WithinTx hands fn a repository bound to a single transaction.
func (r *orderRepository) WithinTx(ctx context.Context, fn func(importer.Store) error) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&orderRepository{db: r.db, q: tx})
	})
}

func (r *orderRepository) UpsertOrders(ctx context.Context, tenant uuid.UUID, orders []domain.OrderRecord) (map[string]domain.OrderRef, error) {
	query := `
		INSERT INTO orders (
			user_id, order_id, order_date, store_name, source,
			total_price, total_fees, total_cogs, total_discounts, total_profit
		) VALUES (
			:user_id, :order_id, :order_date, :store_name, :source,
			:total_price, :total_fees, :total_cogs, :total_discounts, :total_profit
		)
		ON CONFLICT (user_id, order_id)
		DO UPDATE SET
			order_date = EXCLUDED.order_date,
			store_name = EXCLUDED.store_name,
			source = EXCLUDED.source,
			total_price = EXCLUDED.total_price,
			total_fees = EXCLUDED.total_fees,
			total_discounts = EXCLUDED.total_discounts,
			total_profit = EXCLUDED.total_price - EXCLUDED.total_fees - orders.total_cogs,
			updated_at = NOW()
		RETURNING id, order_id, (xmax = 0) AS inserted
	`

	refs := make(map[string]domain.OrderRef, len(orders))
	for start := 0; start < len(orders); start += orderBatchSize {
		end := min(start+orderBatchSize, len(orders))
		batch := make([]domain.OrderRecord, end-start)
		copy(batch, orders[start:end])
		for i := range batch {
			batch[i].TenantID = tenant
		}

		bound, args, err := sqlx.Named(query, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to bind orders: %w", classify(err))
		}

		rows, err := r.q.QueryxContext(ctx, r.q.Rebind(bound), args...)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert orders: %w", classify(err))
		}
		for rows.Next() {
			var (
				id, orderID string
				inserted    bool
			)
			if err := rows.Scan(&id, &orderID, &inserted); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan order ref: %w", classify(err))
			}
			refs[orderID] = domain.OrderRef{ID: id, Inserted: inserted}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return refs, nil
}

func (r *orderRepository) ReplaceLineItems(ctx context.Context, tenant uuid.UUID, orderIDs []string, items []domain.LineItem) error {
	if len(orderIDs) == 0 {
		return nil
	}

	if _, err := r.q.ExecContext(ctx,
		`DELETE FROM order_items WHERE user_id = $1 AND order_id_fk = ANY($2)`,
		tenant, pq.Array(orderIDs),
	); err != nil {
		return fmt.Errorf("failed to delete line items: %w", classify(err))
	}

	query := `
		INSERT INTO order_items (
			user_id, order_id_fk, product_name, sku, size, quantity,
			price, fees, cogs, discounts, profit
		) VALUES (
			:user_id, :order_id_fk, :product_name, :sku, :size, :quantity,
			:price, :fees, :cogs, :discounts, :profit
		)
	`
	for start := 0; start < len(items); start += itemBatchSize {
		end := min(start+itemBatchSize, len(items))
		batch := make([]domain.LineItem, end-start)
		copy(batch, items[start:end])
		for i := range batch {
			batch[i].TenantID = tenant
		}

		bound, args, err := sqlx.Named(query, batch)
		if err != nil {
			return fmt.Errorf("failed to bind line items: %w", classify(err))
		}
		if _, err := r.q.ExecContext(ctx, r.q.Rebind(bound), args...); err != nil {
			return fmt.Errorf("failed to insert line items: %w", classify(err))
		}
	}
	return nil
}

func (r *orderRepository) EnsureDefaultCategory(ctx context.Context, tenant uuid.UUID) (string, error) {
	query := `
		INSERT INTO expense_categories (user_id, name)
		VALUES ($1, $2)
		ON CONFLICT (user_id, name)
		DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`
	var id string
	if err := r.q.QueryRowxContext(ctx, query, tenant, domain.DefaultCategoryName).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to upsert default category: %w", classify(err))
	}
	return id, nil
}

func (r *orderRepository) EnsureExpenseItems(ctx context.Context, tenant uuid.UUID, categoryID string, names []string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	if len(names) == 0 {
		return out, nil
	}

	batch := make([]domain.ExpenseItem, len(names))
	for i, n := range names {
		batch[i] = domain.ExpenseItem{TenantID: tenant, CategoryID: categoryID, Name: n}
	}

	bound, args, err := sqlx.Named(`
		INSERT INTO expense_items (user_id, category_id, name)
		VALUES (:user_id, :category_id, :name)
		ON CONFLICT (user_id, name)
		DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to bind expense items: %w", classify(err))
	}

	rows, err := r.q.QueryxContext(ctx, r.q.Rebind(bound), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert expense items: %w", classify(err))
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan expense item: %w", classify(err))
		}
		out[name] = id
	}
	return out, rows.Err()
}

func (r *orderRepository) EnsureCostVariants(ctx context.Context, tenant uuid.UUID, variants []domain.CostVariant) (int, error) {
	if len(variants) == 0 {
		return 0, nil
	}

	batch := make([]domain.CostVariant, len(variants))
	copy(batch, variants)
	for i := range batch {
		batch[i].TenantID = tenant
	}

	bound, args, err := sqlx.Named(`
		INSERT INTO expense_variants (user_id, item_id, sku, size, color)
		VALUES (:user_id, :item_id, :sku, :size, :color)
		ON CONFLICT (user_id, item_id, sku, size) DO NOTHING
	`, batch)
	if err != nil {
		return 0, fmt.Errorf("failed to bind cost variants: %w", classify(err))
	}

	res, err := r.q.ExecContext(ctx, r.q.Rebind(bound), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert cost variants: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *orderRepository) LinkLineItemVariants(ctx context.Context, tenant uuid.UUID, orderIDs []string) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}

	query := `
		UPDATE order_items oi
		SET variant_id = v.id
		FROM expense_items ei
		JOIN expense_variants v ON v.item_id = ei.id AND v.user_id = ei.user_id
		WHERE oi.user_id = $1
		  AND oi.order_id_fk = ANY($2)
		  AND oi.variant_id IS NULL
		  AND ei.user_id = oi.user_id
		  AND ei.name = oi.product_name
		  AND v.sku = COALESCE(oi.sku, '')
		  AND v.size = COALESCE(oi.size, '')
	`
	res, err := r.q.ExecContext(ctx, query, tenant, pq.Array(orderIDs))
	if err != nil {
		return 0, fmt.Errorf("failed to link variants: %w", classify(err))
	}
	return res.RowsAffected()
}

func (r *orderRepository) RecalcOrderTotals(ctx context.Context, tenant uuid.UUID, orderIDs []string) error {
	if len(orderIDs) == 0 {
		return nil
	}
	ids := pq.Array(orderIDs)

	itemsQuery := `
		UPDATE order_items oi
		SET cogs = v.cost_per_unit * oi.quantity,
		    profit = oi.price - oi.fees - v.cost_per_unit * oi.quantity
		FROM expense_variants v
		WHERE oi.variant_id = v.id
		  AND v.cost_per_unit IS NOT NULL
		  AND oi.user_id = $1
		  AND oi.order_id_fk = ANY($2)
	`
	if _, err := r.q.ExecContext(ctx, itemsQuery, tenant, ids); err != nil {
		return fmt.Errorf("failed to recalculate item costs: %w", classify(err))
	}

	ordersQuery := `
		UPDATE orders o
		SET total_cogs = t.cogs,
		    total_profit = o.total_price - o.total_fees - t.cogs,
		    updated_at = NOW()
		FROM (
			SELECT ord.id, COALESCE(SUM(oi.cogs), 0) AS cogs
			FROM orders ord
			LEFT JOIN order_items oi ON oi.order_id_fk = ord.id
			WHERE ord.user_id = $1 AND ord.id = ANY($2)
			GROUP BY ord.id
		) t
		WHERE o.id = t.id
	`
	if _, err := r.q.ExecContext(ctx, ordersQuery, tenant, ids); err != nil {
		return fmt.Errorf("failed to recalculate order totals: %w", classify(err))
	}
	return nil
}

var _ repository.OrderRepository = (*orderRepository)(nil)

func (r *orderRepository) ListOrders(ctx context.Context, tenant uuid.UUID, limit, offset int) ([]domain.OrderRecord, error) {
	query := `
		SELECT id, user_id, order_id, order_date, store_name, source,
		       total_price, total_fees, total_cogs, total_discounts, total_profit,
		       created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC NULLS LAST, order_id
		LIMIT $2 OFFSET $3
	`
	orders := []domain.OrderRecord{}
	if err := sqlx.SelectContext(ctx, r.q, &orders, query, tenant, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", classify(err))
	}
	return orders, nil
}

// ListLineItems returns the lines of one order by its marketplace id.
func (r *orderRepository) ListLineItems(ctx context.Context, tenant uuid.UUID, orderID string) ([]domain.LineItem, error) {
	var orderFK string
	err := sqlx.GetContext(ctx, r.q, &orderFK,
		`SELECT id FROM orders WHERE user_id = $1 AND order_id = $2`, tenant, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %q: %w", orderID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up order: %w", classify(err))
	}

	query := `
		SELECT id, user_id, order_id_fk, product_name, sku, size,
		       quantity, price, fees, cogs, discounts, profit, variant_id
		FROM order_items
		WHERE user_id = $1 AND order_id_fk = $2
		ORDER BY product_name, size
	`
	items := []domain.LineItem{}
	if err := sqlx.SelectContext(ctx, r.q, &items, query, tenant, orderFK); err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", classify(err))
	}
	return items, nil
}

func (r *orderRepository) ListVariants(ctx context.Context, tenant uuid.UUID, limit, offset int) ([]domain.CostVariant, error) {
	query := `
		SELECT v.id, v.user_id, v.item_id, ei.name AS product_name,
		       v.sku, v.size, v.color, v.cost_per_unit
		FROM expense_variants v
		JOIN expense_items ei ON ei.id = v.item_id
		WHERE v.user_id = $1
		ORDER BY ei.name, v.size, v.sku
		LIMIT $2 OFFSET $3
	`
	variants := []domain.CostVariant{}
	if err := sqlx.SelectContext(ctx, r.q, &variants, query, tenant, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list cost variants: %w", classify(err))
	}
	return variants, nil
}

// SetVariantCost stores a unit cost (null clears it) and re-prices every
// order holding a line linked to the variant, in one transaction. It returns
// the number of orders re-priced.
func (r *orderRepository) SetVariantCost(ctx context.Context, tenant uuid.UUID, variantID string, cost decimal.NullDecimal) (int, error) {
	var orderIDs []string
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE expense_variants SET cost_per_unit = $3 WHERE user_id = $1 AND id = $2`,
			tenant, variantID, cost)
		if err != nil {
			return fmt.Errorf("failed to set variant cost: %w", classify(err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("variant %q: %w", variantID, repository.ErrNotFound)
		}

		// Lines keep their last cost unless reset; a cleared cost must zero them.
		if _, err := tx.ExecContext(ctx, `
			UPDATE order_items
			SET cogs = 0, profit = price - fees
			WHERE user_id = $1 AND variant_id = $2
		`, tenant, variantID); err != nil {
			return fmt.Errorf("failed to reset item costs: %w", classify(err))
		}

		if err := tx.SelectContext(ctx, &orderIDs, `
			SELECT DISTINCT order_id_fk FROM order_items
			WHERE user_id = $1 AND variant_id = $2
		`, tenant, variantID); err != nil {
			return fmt.Errorf("failed to find affected orders: %w", classify(err))
		}

		return (&orderRepository{db: r.db, q: tx}).RecalcOrderTotals(ctx, tenant, orderIDs)
	})
	if err != nil {
		return 0, err
	}
	return len(orderIDs), nil
}
