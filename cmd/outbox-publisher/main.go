package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/storefront-backend/pkg/bootstrap"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/registry"
	"github.com/angelmondragon/storefront-backend/pkg/pubsub"
)

const serviceName = "outbox-publisher"

func main() {
	cfg, logg, err := bootstrap.Load(serviceName)
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceName,
	})

	closer := &bootstrap.Closer{}
	promRegistry := prometheus.NewRegistry()
	service, err := wire(ctx, cfg, logg, promRegistry, closer)
	if err != nil {
		logg.Error(ctx, "failed to start outbox publisher", err)
		_ = closer.Close(context.Background())
		os.Exit(1)
	}
	bootstrap.ServeMetrics(ctx, cfg.Metrics, ":"+cfg.App.Port, promRegistry, logg, closer)

	logg.Info(ctx, "starting outbox publisher")
	runErr := service.Run(ctx)
	failed := runErr != nil && !errors.Is(runErr, context.Canceled)
	if failed {
		logg.Error(ctx, "outbox publisher stopped unexpectedly", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := closer.Close(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "error releasing outbox publisher resources", err)
	}
	if failed {
		os.Exit(1)
	}
	logg.Info(shutdownCtx, "outbox publisher shutting down gracefully")
}

// wire opens the database and Pub/Sub clients, registering each with closer
// as soon as it exists.
func wire(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer, closer *bootstrap.Closer) (*Service, error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, err
	}
	closer.Add(dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return nil, err
	}

	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		return nil, err
	}
	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return nil, err
	}
	closer.Add(pubsubClient.Close)

	return NewService(ServiceParams{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		PubSub:     pubsubClient,
		Repository: outbox.NewRepository(dbClient.DB()),
		Registry:   eventRegistry,
		Metrics:    metrics.NewOutbox(reg),
	})
}
