package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/importer"
	"github.com/andresuchdata/sellerdash/backend-go/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return Wrap(sqlx.NewDb(raw, driverName)), mock
}

func TestUpsertOrdersReturnsRefs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	tenant := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "inserted"}).
			AddRow("a1", "1001", true).
			AddRow("a2", "1002", false))

	refs, err := repo.UpsertOrders(context.Background(), tenant, []domain.OrderRecord{
		{OrderID: "1001", StoreName: "Shop", Source: domain.SourceCSV, TotalPrice: decimal.RequireFromString("28")},
		{OrderID: "1002", StoreName: "Shop", Source: domain.SourceCSV},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderRef{ID: "a1", Inserted: true}, refs["1001"])
	assert.Equal(t, domain.OrderRef{ID: "a2", Inserted: false}, refs["1002"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceLineItemsDeletesThenInserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	tenant := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM order_items WHERE user_id = $1 AND order_id_fk = ANY($2)")).
		WithArgs(tenant, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ReplaceLineItems(context.Background(), tenant, []string{"a1"}, []domain.LineItem{
		{OrderFK: "a1", ProductName: "Mug", Quantity: 3, Price: decimal.RequireFromString("30")},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceLineItemsNoOrders(t *testing.T) {
	db, mock := newMockDB(t)
	err := NewOrderRepository(db).ReplaceLineItems(context.Background(), uuid.New(), nil, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureCatalog(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	tenant := uuid.New()
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO expense_categories")).
		WithArgs(tenant, domain.DefaultCategoryName).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cat-1"))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO expense_items")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("item-1", "Mug").AddRow("item-2", "Tee"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO expense_variants")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	catID, err := repo.EnsureDefaultCategory(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, "cat-1", catID)

	ids, err := repo.EnsureExpenseItems(ctx, tenant, catID, []string{"Mug", "Tee"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Mug": "item-1", "Tee": "item-2"}, ids)

	created, err := repo.EnsureCostVariants(ctx, tenant, []domain.CostVariant{
		{ItemID: "item-1", SKU: "MUG-1", Size: "M"},
		{ItemID: "item-2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkAndRecalc(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	tenant := uuid.New()
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("SET variant_id = v.id")).
		WithArgs(tenant, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("SET cogs = v.cost_per_unit * oi.quantity")).
		WithArgs(tenant, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders o")).
		WithArgs(tenant, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	linked, err := repo.LinkLineItemVariants(ctx, tenant, []string{"a1", "a2"})
	require.NoError(t, err)
	assert.EqualValues(t, 4, linked)

	require.NoError(t, repo.RecalcOrderTotals(ctx, tenant, []string{"a1", "a2"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListLineItems(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	tenant := uuid.New()
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM orders")).
		WithArgs(tenant, "1001").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a1"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items")).
		WithArgs(tenant, "a1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "order_id_fk", "product_name", "sku", "size",
			"quantity", "price", "fees", "cogs", "discounts", "profit", "variant_id",
		}).
			AddRow("li-1", tenant.String(), "a1", "Mug", nil, "M", 2, "20.00", "1.00", "6.00", "0", "13.00", "v-1").
			AddRow("li-2", tenant.String(), "a1", "Tee", "TEE-1", nil, 1, "15.00", "0", "0", "0", "15.00", nil))

	items, err := repo.ListLineItems(ctx, tenant, "1001")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Mug", items[0].ProductName)
	assert.True(t, decimal.RequireFromString("13").Equal(items[0].Profit))
	assert.Nil(t, items[1].VariantID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM orders")).
		WithArgs(tenant, "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = repo.ListLineItems(ctx, tenant, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListVariantsJoinsItemName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	tenant := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("JOIN expense_items ei ON ei.id = v.item_id")).
		WithArgs(tenant, 100, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "item_id", "product_name", "sku", "size", "color", "cost_per_unit",
		}).
			AddRow("v-1", tenant.String(), "item-1", "Mug", "", "M", nil, "3.00").
			AddRow("v-2", tenant.String(), "item-1", "Mug", "", "L", nil, nil))

	variants, err := repo.ListVariants(context.Background(), tenant, 100, 0)
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.True(t, variants[0].CostPerUnit.Valid)
	assert.Equal(t, "3", variants[0].CostPerUnit.Decimal.String())
	assert.False(t, variants[1].CostPerUnit.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetVariantCostRecalculatesLinkedOrders(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	tenant := uuid.New()
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE expense_variants SET cost_per_unit")).
		WithArgs(tenant, "v-1", "2.5").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET cogs = 0, profit = price - fees")).
		WithArgs(tenant, "v-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT order_id_fk")).
		WithArgs(tenant, "v-1").
		WillReturnRows(sqlmock.NewRows([]string{"order_id_fk"}).AddRow("a1").AddRow("a2"))
	mock.ExpectExec(regexp.QuoteMeta("SET cogs = v.cost_per_unit * oi.quantity")).
		WithArgs(tenant, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders o")).
		WithArgs(tenant, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.SetVariantCost(ctx, tenant, "v-1", decimal.NewNullDecimal(decimal.RequireFromString("2.50")))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Clearing a cost with no linked items skips the recalculation.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE expense_variants SET cost_per_unit")).
		WithArgs(tenant, "v-2", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET cogs = 0, profit = price - fees")).
		WithArgs(tenant, "v-2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT order_id_fk")).
		WithArgs(tenant, "v-2").
		WillReturnRows(sqlmock.NewRows([]string{"order_id_fk"}))
	mock.ExpectCommit()

	n, err = repo.SetVariantCost(ctx, tenant, "v-2", decimal.NullDecimal{})
	require.NoError(t, err)
	assert.Zero(t, n)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE expense_variants SET cost_per_unit")).
		WithArgs(tenant, "missing", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = repo.SetVariantCost(ctx, tenant, "missing", decimal.NullDecimal{})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxCommitsAndRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	tenant := uuid.New()
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO expense_categories")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cat-1"))
	mock.ExpectCommit()

	err := repo.WithinTx(ctx, func(s importer.Store) error {
		_, err := s.EnsureDefaultCategory(ctx, tenant)
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM order_items")).WillReturnError(boom)
	mock.ExpectRollback()

	err = repo.WithinTx(ctx, func(s importer.Store) error {
		return s.ReplaceLineItems(ctx, tenant, []string{"a1"}, nil)
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertLabels(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewShippingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shipping_labels")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.UpsertLabels(context.Background(), uuid.New(), []domain.ShippingLabel{
		{LabelKey: "id:L-1", Amount: decimal.RequireFromString("4.75"), Currency: "USD"},
		{LabelKey: "trk:9400|2024-02-02|5.10", Amount: decimal.RequireFromString("5.10"), Currency: "USD"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkLabelToOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewShippingRepository(db)
	tenant := uuid.New()
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM orders")).
		WithArgs(tenant, "1001").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE shipping_labels SET order_id_fk")).
		WithArgs("a1", tenant, "lbl-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.LinkLabelToOrder(ctx, tenant, "lbl-1", "1001"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM orders")).
		WithArgs(tenant, "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	err := repo.LinkLabelToOrder(ctx, tenant, "lbl-1", "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE shipping_labels")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.LinkLabelToOrder(ctx, tenant, "other-tenant-label", "1001")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingsRepository(db)
	tenant := uuid.New()
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM user_settings")).
		WithArgs(tenant, "default", domain.ColumnsSettingKey).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	_, err := repo.GetSetting(ctx, tenant, "default", domain.ColumnsSettingKey)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	value := json.RawMessage(`[{"id":"order_id","visible":true}]`)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_settings")).
		WithArgs(tenant, "default", domain.ColumnsSettingKey, string(value)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.PutSetting(ctx, tenant, "default", domain.ColumnsSettingKey, value))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM user_settings")).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(value)))
	got, err := repo.GetSetting(ctx, tenant, "default", domain.ColumnsSettingKey)
	require.NoError(t, err)
	assert.JSONEq(t, string(value), string(got))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_settings")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteSetting(ctx, tenant, "default", domain.ColumnsSettingKey))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRunRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImportRunRepository(db)
	tenant := uuid.New()
	ctx := context.Background()

	run := &domain.ImportRun{
		TenantID:  tenant,
		Kind:      domain.ImportKindOrders,
		Status:    domain.ImportStatusProcessing,
		FileNames: []string{"a.csv", "b.csv"},
		StartedAt: time.Now(),
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO import_runs")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.CreateRun(ctx, run))
	assert.NotEqual(t, uuid.Nil, run.ID)

	done := time.Now()
	run.Status = domain.ImportStatusCompleted
	run.CompletedAt = &done
	mock.ExpectExec(regexp.QuoteMeta("UPDATE import_runs")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.FinishRun(ctx, run))

	cols := []string{"id", "user_id", "kind", "status", "file_names", "unique_orders",
		"inserted_orders", "duplicate_orders", "item_duplicates", "ignored_files",
		"ignored_rows", "error_message", "started_at", "completed_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM import_runs")).
		WithArgs(tenant, 20).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			run.ID.String(), tenant.String(), "orders", "completed", "{a.csv,b.csv}",
			1, 1, 0, 1, 0, 0, "", run.StartedAt, done,
		))

	runs, err := repo.ListRuns(ctx, tenant, 20)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, domain.ImportKindOrders, runs[0].Kind)
	assert.Equal(t, []string{"a.csv", "b.csv"}, runs[0].FileNames)
	require.NotNil(t, runs[0].CompletedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS orders")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS shipping_labels")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassifyConstraintViolations(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "orders_user_id_order_id_key"}
	err := classify(unique)
	assert.ErrorIs(t, err, repository.ErrConflict)

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "orders_user_id_order_id_key", pgErr.ConstraintName)

	other := &pgconn.PgError{Code: "57014"}
	assert.NotErrorIs(t, classify(other), repository.ErrConflict)
	assert.Nil(t, classify(nil))
}

func TestUpsertOrdersClassifiesViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnError(&pgconn.PgError{Code: "23502", Message: "null value"})

	_, err := repo.UpsertOrders(context.Background(), uuid.New(), []domain.OrderRecord{{OrderID: "1"}})
	assert.ErrorIs(t, err, repository.ErrConflict)
}
