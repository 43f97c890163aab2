package adminapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/openmallhq/openmall/config"
	"github.com/openmallhq/openmall/internal/cart"
	"github.com/openmallhq/openmall/internal/checkout"
	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/order"
	"github.com/openmallhq/openmall/internal/payment"
	"github.com/openmallhq/openmall/internal/webserver"
	"github.com/openmallhq/openmall/pkg/metrics"
)

// testContext satisfies the application interface the handlers need
// without booting the full application.
type testContext struct {
	db     *gorm.DB
	cfg    *config.AppConfig
	carts  *cart.Service
	orders *order.Service
	flow   *checkout.Flow
}

func (t *testContext) DB() *gorm.DB              { return t.db }
func (t *testContext) Config() *config.AppConfig { return t.cfg }
func (t *testContext) Carts() *cart.Service      { return t.carts }
func (t *testContext) Orders() *order.Service    { return t.orders }
func (t *testContext) Flow() *checkout.Flow      { return t.flow }

func setupServer(t *testing.T) (*webserver.WebServer, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "test.db")),
		&gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)},
	)
	require.NoError(t, err)
	require.NoError(t, db.Migrator().AutoMigrate(domain.Tables...))

	store, err := cart.NewStore(filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	carts := cart.NewService(store)
	orders := order.NewService(order.NewGormRepository(db), nil)
	flow := checkout.NewFlow(carts, orders, payment.SandboxGateway{})

	cfg := config.DefaultAppConfig()
	srv := webserver.Init(cfg, db)
	Register(&testContext{db: db, cfg: cfg, carts: carts, orders: orders, flow: flow})
	return srv, db
}

func seedUser(t *testing.T, db *gorm.DB, id int64, email string, admin bool) *domain.User {
	t.Helper()
	user := &domain.User{
		ID: id, Name: "user-" + email, Email: email, IsAdmin: admin,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func doRequest(srv *webserver.WebServer, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	srv, db := setupServer(t)

	admin := seedUser(t, db, 1, "admin@test.local", true)
	customer := seedUser(t, db, 2, "customer@test.local", false)

	product := domain.Product{ID: 100, Name: "Widget", Price: 500, CountInStock: 3}
	require.NoError(t, db.Create(&product).Error)

	adminToken, err := webserver.IssueToken(admin)
	require.NoError(t, err)
	customerToken, err := webserver.IssueToken(customer)
	require.NoError(t, err)

	// No credential at all.
	rec := doRequest(srv, http.MethodDelete, "/api/admin/products/100", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid credential without the admin role.
	rec = doRequest(srv, http.MethodDelete, "/api/admin/products/100", customerToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp webserver.WebRestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "FORBIDDEN", resp.Code)

	// The rejected delete must not have touched the row.
	var count int64
	db.Model(&domain.Product{}).Where("id = ?", 100).Count(&count)
	assert.EqualValues(t, 1, count)

	// The admin can delete.
	rec = doRequest(srv, http.MethodDelete, "/api/admin/products/100", adminToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	db.Model(&domain.Product{}).Where("id = ?", 100).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestAdminCannotDeleteOwnAccount(t *testing.T) {
	srv, db := setupServer(t)

	admin := seedUser(t, db, 1, "admin@test.local", true)
	token, err := webserver.IssueToken(admin)
	require.NoError(t, err)

	rec := doRequest(srv, http.MethodDelete, "/api/admin/users/1", token, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	var count int64
	db.Model(&domain.User{}).Where("id = ?", 1).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDeliverOrderTransition(t *testing.T) {
	srv, db := setupServer(t)

	admin := seedUser(t, db, 1, "admin@test.local", true)
	token, err := webserver.IssueToken(admin)
	require.NoError(t, err)

	o := domain.Order{
		ID: 500, UserID: 2, IdempotencyKey: "k-500",
		ItemsPrice: 12000, TaxPrice: 2160, TotalPrice: 14160,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, db.Create(&o).Error)

	rec := doRequest(srv, http.MethodPut, "/api/admin/orders/500/deliver", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stored domain.Order
	require.NoError(t, db.First(&stored, 500).Error)
	assert.True(t, stored.IsDelivered)
	require.NotNil(t, stored.DeliveredAt)

	// Repeating the transition keeps the original timestamp.
	first := *stored.DeliveredAt
	rec = doRequest(srv, http.MethodPut, "/api/admin/orders/500/deliver", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, db.First(&stored, 500).Error)
	assert.True(t, stored.DeliveredAt.Equal(first))
}

func TestQueryMetric(t *testing.T) {
	srv, db := setupServer(t)

	require.NoError(t, metrics.InitMetrics(t.TempDir()))
	t.Cleanup(func() { _ = metrics.Close() })

	admin := seedUser(t, db, 1, "admin@test.local", true)
	token, err := webserver.IssueToken(admin)
	require.NoError(t, err)
	customer := seedUser(t, db, 2, "customer@test.local", false)
	customerToken, err := webserver.IssueToken(customer)
	require.NoError(t, err)

	metrics.IncrCounter("orders_placed", 3)

	rec := doRequest(srv, http.MethodGet, "/api/admin/metrics/orders_placed", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []struct {
			Timestamp int64   `json:"timestamp"`
			Value     float64 `json:"value"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data)
	assert.InDelta(t, 3.0, resp.Data[len(resp.Data)-1].Value, 0.001)

	// A metric nobody recorded reads as empty, not an error.
	rec = doRequest(srv, http.MethodGet, "/api/admin/metrics/no_such_metric", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// The admin claim is still required.
	rec = doRequest(srv, http.MethodGet, "/api/admin/metrics/orders_placed", customerToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrderStatsSummary(t *testing.T) {
	srv, db := setupServer(t)

	admin := seedUser(t, db, 1, "admin@test.local", true)
	token, err := webserver.IssueToken(admin)
	require.NoError(t, err)

	now := time.Now()
	for i, total := range []float64{100, 200, 300} {
		paid := i < 2
		o := domain.Order{
			ID: int64(600 + i), UserID: 2, IdempotencyKey: "stats-" + string(rune('a'+i)),
			TotalPrice: total, IsPaid: paid, CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, db.Create(&o).Error)
	}

	rec := doRequest(srv, http.MethodGet, "/api/admin/orders/stats", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data salesSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 3, resp.Data.Orders)
	assert.EqualValues(t, 2, resp.Data.PaidOrders)
	assert.InDelta(t, 300.0, resp.Data.Revenue, 0.001)
	assert.InDelta(t, 150.0, resp.Data.AverageOrder, 0.001)
}
