package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	ordersvc "github.com/angelmondragon/storefront-backend/internal/orders"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type memoryRedis struct {
	mu     sync.Mutex
	data   map[string]string
	counts map[string]int64
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: map[string]string{}, counts: map[string]int64{}}
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryRedis) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

func (m *memoryRedis) FixedWindow(_ context.Context, scope string, limit int64, window time.Duration) (pkgredis.Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[scope]++
	w := pkgredis.Window{Allowed: m.counts[scope] <= limit, Count: m.counts[scope]}
	if !w.Allowed {
		w.RetryAfter = window
	}
	return w, nil
}

func (m *memoryRedis) Ping(context.Context) error {
	return nil
}

type stubOrders struct{}

func (stubOrders) Transition(context.Context, ordersvc.TransitionInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New()}, nil
}

func (stubOrders) AttachTracking(context.Context, ordersvc.TrackingInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New()}, nil
}

func (stubOrders) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: id}, nil
}

func (stubOrders) List(context.Context, pagination.Params, ordersvc.ListFilters) (*ordersvc.OrderList, error) {
	return &ordersvc.OrderList{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		HTTP: config.HTTPConfig{
			CORSOrigins:        []string{"https://shop.example.com"},
			IdempotencyTTL:     time.Hour,
			IdempotencyLockTTL: time.Minute,
		},
		JWT:       config.JWTConfig{Secret: "router-secret", Issuer: "storefront"},
		RateLimit: config.RateLimitConfig{CouponWindow: time.Minute, CouponIPLimit: 2},
		Metrics:   config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig()
	reg := prometheus.NewRegistry()
	metrics.NewStorefront(reg).OrderCreated("COD")
	return NewRouter(Deps{
		Config:   cfg,
		DB:       stubPinger{},
		Redis:    newMemoryRedis(),
		Gatherer: reg,
		Orders:   stubOrders{},
	}), cfg
}

func bearer(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), time.Hour, uuid.New(), role)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
		if resp.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s: expected request id header", path)
		}
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	router, cfg := newTestRouter(t)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "anonymous", want: http.StatusUnauthorized},
		{name: "customer", header: bearer(t, cfg, enums.RoleCustomer), want: http.StatusForbidden},
		{name: "admin", header: bearer(t, cfg, enums.RoleAdmin), want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestCheckoutRequiresIdempotencyKey(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Idempotency-Key") {
		t.Fatalf("expected idempotency message, got %s", resp.Body.String())
	}
}

func TestPublicOrderDetailAllowsGuests(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected invalid token to be rejected, got %d", resp.Code)
	}
}

func TestCouponValidateIsRateLimited(t *testing.T) {
	router, _ := newTestRouter(t)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(`{}`))
		req.RemoteAddr = "198.51.100.4:5000"
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		last = resp.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected third attempt to be throttled, got %d", last)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "storefront_orders_created_total") {
		t.Fatalf("expected storefront metrics in exposition")
	}
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/checkout", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}
