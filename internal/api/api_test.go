package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andresuchdata/sellerdash/backend-go/internal/api/middleware"
	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/importer"
	"github.com/andresuchdata/sellerdash/backend-go/internal/repository"
	"github.com/andresuchdata/sellerdash/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/sellerdash/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeImports struct {
	calls  int
	files  []*domain.UploadedFile
	tenant uuid.UUID
	err    error
}

func (f *fakeImports) ImportOrders(_ context.Context, tenant uuid.UUID, files []*domain.UploadedFile) (*domain.ImportResult, error) {
	f.calls++
	f.tenant = tenant
	f.files = files
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ImportResult{UniqueOrders: 2, InsertedOrders: 1, DuplicateOrders: 1, IgnoredFileNames: []string{"notes.csv"}, IgnoredFiles: 1}, nil
}

func (f *fakeImports) Preview(_ context.Context, files []*domain.UploadedFile) (*importer.Plan, error) {
	f.calls++
	return &importer.Plan{
		Orders: []domain.OrderRecord{{OrderID: "1001"}},
		Items:  map[string][]domain.LineItem{"1001": {{ProductName: "Mug"}, {ProductName: "Tee"}}},
	}, nil
}

func (f *fakeImports) Replay(_ context.Context, _ uuid.UUID, runID uuid.UUID) (*domain.ImportResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ImportResult{UniqueOrders: 1, DuplicateOrders: 1}, nil
}

func (f *fakeImports) ListRuns(_ context.Context, tenant uuid.UUID, limit int) ([]domain.ImportRun, error) {
	return []domain.ImportRun{{TenantID: tenant, Kind: domain.ImportKindOrders, Status: domain.ImportStatusCompleted}}, nil
}

type fakeShipping struct {
	persist bool
	linkErr error
	linked  string
}

func (f *fakeShipping) Import(_ context.Context, _ uuid.UUID, file *domain.UploadedFile, persist bool) (*domain.ShippingImportResult, error) {
	f.persist = persist
	return &domain.ShippingImportResult{IgnoredCount: 1}, nil
}

func (f *fakeShipping) ListLabels(context.Context, uuid.UUID, int, int) ([]domain.ShippingLabel, error) {
	return []domain.ShippingLabel{{LabelKey: "id:L-1"}}, nil
}

func (f *fakeShipping) LinkLabel(_ context.Context, _ uuid.UUID, labelID, orderKey string) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	f.linked = labelID + "->" + orderKey
	return nil
}

type fakeSettings struct {
	saved []domain.Column
	reset bool
}

func (f *fakeSettings) GetColumns(context.Context, uuid.UUID, string) ([]domain.Column, error) {
	return domain.DefaultColumns(), nil
}

func (f *fakeSettings) SaveColumns(_ context.Context, _ uuid.UUID, _ string, cols []domain.Column) ([]domain.Column, error) {
	f.saved = cols
	return domain.NormalizeColumns(cols), nil
}

func (f *fakeSettings) ResetColumns(context.Context, uuid.UUID, string) ([]domain.Column, error) {
	f.reset = true
	return domain.DefaultColumns(), nil
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type fixture struct {
	router   *gin.Engine
	imports  *fakeImports
	shipping *fakeShipping
	settings *fakeSettings
	tenant   uuid.UUID
}

func newFixture(maxUpload int64) *fixture {
	f := &fixture{
		imports:  &fakeImports{},
		shipping: &fakeShipping{},
		settings: &fakeSettings{},
		tenant:   uuid.New(),
	}
	f.router = NewRouter(&Services{
		Imports:  f.imports,
		Shipping: f.shipping,
		Settings: f.settings,
		DB:       pinger{},
	}, Options{MaxUploadBytes: maxUpload})
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set(middleware.TenantHeader, f.tenant.String())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func multipartRequest(t *testing.T, target, field string, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	f := newFixture(0)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	down := NewRouter(&Services{DB: pinger{err: errors.New("refused")}}, Options{})
	w = httptest.NewRecorder()
	down.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestImportRequiresTenantBeforeParsing(t *testing.T) {
	f := newFixture(0)
	req := multipartRequest(t, "/api/v1/imports/orders", "files", map[string]string{"a.csv": "Order ID\n1\n"})
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, f.imports.calls)
}

func TestImportOrders(t *testing.T) {
	f := newFixture(0)
	req := multipartRequest(t, "/api/v1/imports/orders", "files", map[string]string{
		"EtsySoldOrders.csv": "Order ID,Net Amount\n1001,10\n",
		"notes.csv":          "Mood\nhappy\n",
	})
	w := f.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	var res domain.ImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 2, res.UniqueOrders)
	assert.Equal(t, []string{"notes.csv"}, res.IgnoredFileNames)
	assert.Equal(t, f.tenant, f.imports.tenant)
	assert.Len(t, f.imports.files, 2)
}

func TestImportOrdersErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"no orders", importer.ErrNoOrders, http.StatusUnprocessableEntity},
		{"persist", &importer.PersistError{Step: "upsert orders", Err: errors.New("deadlock detected")}, http.StatusInternalServerError},
		{"conflict", &importer.PersistError{Step: "upsert orders", Err: repository.ErrConflict}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(0)
			f.imports.err = tt.err
			w := f.do(multipartRequest(t, "/api/v1/imports/orders", "files", map[string]string{"a.csv": "x\n"}))

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.err.Error())
		})
	}
}

func TestImportOrdersNoFiles(t *testing.T) {
	f := newFixture(0)
	w := f.do(multipartRequest(t, "/api/v1/imports/orders", "other", map[string]string{"a.csv": "x\n"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, f.imports.calls)
}

func TestImportOrdersTooLarge(t *testing.T) {
	f := newFixture(128)
	w := f.do(multipartRequest(t, "/api/v1/imports/orders", "files", map[string]string{
		"big.csv": strings.Repeat("Order ID,Net\n", 100),
	}))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Zero(t, f.imports.calls)
}

func TestPreviewOrders(t *testing.T) {
	f := newFixture(0)
	w := f.do(multipartRequest(t, "/api/v1/imports/orders/preview", "files", map[string]string{"a.csv": "x\n"}))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["unique_orders"])
	assert.EqualValues(t, 2, body["line_items"])
}

func TestRunsAndReplay(t *testing.T) {
	f := newFixture(0)
	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/imports/runs?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)

	w = f.do(httptest.NewRequest(http.MethodPost, "/api/v1/imports/runs/nope/replay", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.imports.err = service.ErrNothingArchived
	w = f.do(httptest.NewRequest(http.MethodPost, "/api/v1/imports/runs/"+uuid.NewString()+"/replay", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportShipping(t *testing.T) {
	f := newFixture(0)
	w := f.do(multipartRequest(t, "/api/v1/imports/shipping", "file", map[string]string{"ledger.csv": "Type\nLabel\n"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, f.shipping.persist)

	w = f.do(multipartRequest(t, "/api/v1/imports/shipping?detailed=true", "file", map[string]string{"ledger.csv": "Type\nLabel\n"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.shipping.persist)

	w = f.do(multipartRequest(t, "/api/v1/imports/shipping", "files", map[string]string{"ledger.csv": "Type\n"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLinkLabel(t *testing.T) {
	f := newFixture(0)
	patch := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/shipping/labels/lbl-1/order", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return f.do(req)
	}

	assert.Equal(t, http.StatusBadRequest, patch(`{}`).Code)

	w := patch(`{"order_id":"1001"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lbl-1->1001", f.shipping.linked)

	f.shipping.linkErr = repository.ErrNotFound
	assert.Equal(t, http.StatusNotFound, patch(`{"order_id":"9999"}`).Code)
}

func TestListLabels(t *testing.T) {
	f := newFixture(0)
	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/shipping/labels?limit=10&offset=-3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "id:L-1")
}

func TestColumnSettings(t *testing.T) {
	f := newFixture(0)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/settings/columns?workspace_id=ws-1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var prefs domain.ColumnPreferences
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prefs))
	assert.Equal(t, "ws-1", prefs.WorkspaceID)
	assert.Len(t, prefs.Columns, len(domain.DefaultColumns()))

	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/columns",
		strings.NewReader(`{"workspace_id":"ws-2","columns":[{"id":"sku","visible":false}]}`))
	req.Header.Set("Content-Type", "application/json")
	w = f.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.settings.saved, 1)
	assert.Equal(t, domain.ColumnSKU, f.settings.saved[0].ID)

	req = httptest.NewRequest(http.MethodPut, "/api/v1/settings/columns", strings.NewReader(`not json`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, f.do(req).Code)

	w = f.do(httptest.NewRequest(http.MethodDelete, "/api/v1/settings/columns", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.settings.reset)
}

// newOrdersFixture serves the order routes from the real service and
// repository over a mocked database.
func newOrdersFixture(t *testing.T) (*fixture, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	db := postgres.Wrap(sqlx.NewDb(raw, "pgx"))
	f := &fixture{tenant: uuid.New()}
	f.router = NewRouter(&Services{
		Orders: service.NewOrderService(postgres.NewOrderRepository(db)),
	}, Options{})
	return f, mock
}

func TestListOrders(t *testing.T) {
	f, mock := newOrdersFixture(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
		WithArgs(f.tenant, 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "order_id", "order_date", "store_name", "source",
			"total_price", "total_fees", "total_cogs", "total_discounts", "total_profit",
			"created_at", "updated_at",
		}).AddRow("a1", f.tenant.String(), "1001", now, "Shop", "csv",
			"28.00", "2.00", "0", "0", "26.00", now, now))

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/orders?offset=-1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Orders []domain.OrderRecord `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Orders, 1)
	assert.Equal(t, "1001", body.Orders[0].OrderID)
	assert.Equal(t, "26", body.Orders[0].TotalProfit.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrderItems(t *testing.T) {
	f, mock := newOrdersFixture(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM orders")).
		WithArgs(f.tenant, "1001").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a1"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items")).
		WithArgs(f.tenant, "a1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "order_id_fk", "product_name", "sku", "size",
			"quantity", "price", "fees", "cogs", "discounts", "profit", "variant_id",
		}).AddRow("li-1", f.tenant.String(), "a1", "Mug", nil, "M", 3, "30.00", "0", "0", "0", "30.00", "v-1"))

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/orders/1001/items", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"product_name":"Mug"`)
	assert.Contains(t, w.Body.String(), `"variant_id":"v-1"`)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM orders")).
		WithArgs(f.tenant, "9999").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	w = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/orders/9999/items", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListVariants(t *testing.T) {
	f, mock := newOrdersFixture(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM expense_variants v")).
		WithArgs(f.tenant, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "item_id", "product_name", "sku", "size", "color", "cost_per_unit",
		}).AddRow("v-1", f.tenant.String(), "item-1", "Mug", "", "M", nil, nil))

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/variants?limit=10", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"product_name":"Mug"`)
	assert.Contains(t, w.Body.String(), `"cost_per_unit":null`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetVariantCostRepricesOrders(t *testing.T) {
	f, mock := newOrdersFixture(t)
	patch := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/variants/v-1/cost", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return f.do(req)
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE expense_variants SET cost_per_unit")).
		WithArgs(f.tenant, "v-1", "4.25").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET cogs = 0")).
		WithArgs(f.tenant, "v-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT order_id_fk")).
		WithArgs(f.tenant, "v-1").
		WillReturnRows(sqlmock.NewRows([]string{"order_id_fk"}).AddRow("a1").AddRow("a2"))
	mock.ExpectExec(regexp.QuoteMeta("SET cogs = v.cost_per_unit * oi.quantity")).
		WithArgs(f.tenant, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders o")).
		WithArgs(f.tenant, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	w := patch(`{"cost_per_unit":"4.25"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"orders_repriced":2`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetVariantCostValidation(t *testing.T) {
	f, mock := newOrdersFixture(t)
	patch := func(id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/variants/"+id+"/cost", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return f.do(req)
	}

	assert.Equal(t, http.StatusBadRequest, patch("v-1", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, patch("v-1", `{"cost_per_unit":"abc"}`).Code)
	assert.Equal(t, http.StatusBadRequest, patch("v-1", `{"cost_per_unit":-1}`).Code)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE expense_variants SET cost_per_unit")).
		WithArgs(f.tenant, "v-404", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	assert.Equal(t, http.StatusNotFound, patch("v-404", `{"cost_per_unit":null}`).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"https://a.example, https://b.example", " "})
	assert.False(t, all)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, origins)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}
