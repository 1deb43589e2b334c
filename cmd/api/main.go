package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/settings"
	"github.com/angelmondragon/storefront-backend/internal/wholesale"
	"github.com/angelmondragon/storefront-backend/pkg/bootstrap"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

func main() {
	cfg, logg, err := bootstrap.Load("api")
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	closer := &bootstrap.Closer{}
	fail := func(msg string, err error) {
		logg.Error(ctx, msg, err)
		_ = closer.Close(context.WithoutCancel(ctx))
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		fail("failed to bootstrap database", err)
	}
	closer.Add(dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		fail("failed to run dev migrations", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		fail("failed to bootstrap redis", err)
	}
	closer.Add(redisClient.Close)

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps, err := buildServices(cfg, logg, dbClient, metrics.NewStorefront(promRegistry))
	if err != nil {
		fail("failed to wire services", err)
	}
	deps.Config = cfg
	deps.Logger = logg
	deps.DB = dbClient
	deps.Redis = redisClient
	deps.Gatherer = promRegistry

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(deps),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	closer.AddContext(server.Shutdown)

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	case runErr = <-serveErr:
		logg.Error(ctx, "api server stopped unexpectedly", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := closer.Close(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "error releasing api resources", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
	logg.Info(shutdownCtx, "api server shut down gracefully")
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, rec *metrics.Storefront) (routes.Deps, error) {
	conn := dbClient.DB()
	catalogRepo := catalog.NewRepository(conn)
	couponRepo := coupons.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)

	settingsSvc, err := settings.NewService(settings.NewRepository(conn), settings.DefaultsFromConfig(cfg.Checkout))
	if err != nil {
		return routes.Deps{}, err
	}

	couponSvc, err := coupons.NewService(couponRepo, catalogRepo, rec, logg, nil)
	if err != nil {
		return routes.Deps{}, err
	}

	ordersSvc, err := orders.NewService(ordersRepo, dbClient, outboxSvc, orders.Options{
		Policy:  orders.PolicyFromConfig(cfg.Orders),
		Metrics: rec,
		Logger:  logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	checkoutSvc, err := checkout.NewService(checkout.Deps{
		Tx:           dbClient,
		Catalog:      catalogRepo,
		Coupons:      couponRepo,
		Orders:       ordersRepo,
		Settings:     settingsSvc,
		Outbox:       outboxSvc,
		ReserveStock: cfg.Checkout.ReserveStock,
		Metrics:      rec,
		Logger:       logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	wholesaleSvc, err := wholesale.NewService(wholesale.NewRepository(conn), catalogRepo, dbClient, outboxSvc, logg, nil)
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Checkout:  checkoutSvc,
		Coupons:   couponSvc,
		Orders:    ordersSvc,
		Settings:  settingsSvc,
		Wholesale: wholesaleSvc,
	}, nil
}
