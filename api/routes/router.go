package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/storefront-backend/api/controllers/orders"
	wholesalecontrollers "github.com/angelmondragon/storefront-backend/api/controllers/wholesale"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	couponsvc "github.com/angelmondragon/storefront-backend/internal/coupons"
	ordersvc "github.com/angelmondragon/storefront-backend/internal/orders"
	settingssvc "github.com/angelmondragon/storefront-backend/internal/settings"
	wholesalesvc "github.com/angelmondragon/storefront-backend/internal/wholesale"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Redis is the slice of the redis client the HTTP layer depends on.
type Redis interface {
	pkgredis.IdempotencyStore
	pkgredis.RateLimiter
	pkgredis.Pinger
}

// Deps collects everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    Redis
	Gatherer prometheus.Gatherer

	Checkout  checkoutsvc.Service
	Coupons   couponsvc.Service
	Orders    ordersvc.Service
	Settings  settingssvc.Service
	Wholesale wholesalesvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	var (
		store   pkgredis.IdempotencyStore
		limiter pkgredis.RateLimiter
		redisP  pkgredis.Pinger
	)
	if deps.Redis != nil {
		store, limiter, redisP = deps.Redis, deps.Redis, deps.Redis
	}
	idempotent := middleware.Idempotency(store, middleware.IdempotencyOptions{
		Required: true,
		TTL:      cfg.HTTP.IdempotencyTTL,
		LockTTL:  cfg.HTTP.IdempotencyLockTTL,
	}, logg)
	couponPolicy := middleware.RateLimitPolicy{
		Name:   "coupon_validate",
		Window: cfg.RateLimit.CouponWindow,
		Limit:  cfg.RateLimit.CouponIPLimit,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, redisP, logg))
	})

	if cfg.Metrics.Enabled && deps.Gatherer != nil {
		r.Handle(metricsPath(cfg), promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))

		r.Post("/cart/quote", controllers.CartQuote(deps.Checkout, logg))
		r.With(middleware.RateLimit(couponPolicy, limiter, logg)).
			Post("/coupons/validate", controllers.CouponValidate(deps.Checkout, deps.Coupons, logg))
		r.With(idempotent).Post("/checkout", controllers.Checkout(deps.Checkout, logg))
		r.Get("/orders/{orderId}", ordercontrollers.OrderDetail(deps.Orders, logg))
		r.With(idempotent).Post("/wholesale", wholesalecontrollers.InquiryCreate(deps.Wholesale, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.RoleAdmin))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.AdminOrderList(deps.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.AdminOrderDetail(deps.Orders, logg))
			r.Post("/{orderId}/status", ordercontrollers.AdminOrderStatus(deps.Orders, logg))
			r.Post("/{orderId}/tracking", ordercontrollers.AdminOrderTracking(deps.Orders, logg))
		})
		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.AdminCouponList(deps.Coupons, logg))
			r.Post("/", controllers.AdminCouponCreate(deps.Coupons, logg))
			r.Patch("/{couponId}/active", controllers.AdminCouponActive(deps.Coupons, logg))
		})
		r.Route("/settings/shipping", func(r chi.Router) {
			r.Get("/", controllers.AdminShippingSettings(deps.Settings, logg))
			r.Put("/", controllers.AdminShippingSettingsUpdate(deps.Settings, logg))
		})
		r.Route("/wholesale", func(r chi.Router) {
			r.Get("/", wholesalecontrollers.AdminInquiryList(deps.Wholesale, logg))
			r.Post("/{inquiryId}/status", wholesalecontrollers.AdminInquiryStatus(deps.Wholesale, logg))
		})
	})

	return r
}

func metricsPath(cfg *config.Config) string {
	if cfg.Metrics.Path == "" {
		return "/metrics"
	}
	return cfg.Metrics.Path
}
