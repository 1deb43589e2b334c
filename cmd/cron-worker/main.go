package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/storefront-backend/internal/cron"
	"github.com/angelmondragon/storefront-backend/pkg/bootstrap"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/instance"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const serviceName = "cron-worker"

func main() {
	once := flag.Bool("once", false, "run a single maintenance cycle and exit")
	flag.Parse()

	cfg, logg, err := bootstrap.Load(serviceName)
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	workerID := instance.GetID()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceName,
		"worker_id":   workerID,
	})

	closer := &bootstrap.Closer{}
	promRegistry := prometheus.NewRegistry()
	cronMetrics := metrics.NewCron(promRegistry)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	closer.Add(dbClient.Close)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		_ = closer.Close(ctx)
		os.Exit(1)
	}
	closer.Add(redisClient.Close)

	service, err := buildService(cfg, logg, dbClient, redisClient, workerID, cronMetrics)
	if err != nil {
		logg.Error(ctx, "failed to build cron service", err)
		_ = closer.Close(ctx)
		os.Exit(1)
	}

	var runErr error
	if *once {
		logg.Info(ctx, "running single maintenance cycle")
		runErr = service.RunOnce(ctx)
	} else {
		bootstrap.ServeMetrics(ctx, cfg.Metrics, ":"+cfg.App.Port, promRegistry, logg, closer)
		logg.Info(ctx, "starting cron worker")
		runErr = service.Run(ctx)
	}
	failed := runErr != nil && !errors.Is(runErr, context.Canceled)
	if failed {
		logg.Error(ctx, "cron worker stopped unexpectedly", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := closer.Close(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "error releasing cron worker resources", err)
	}
	if failed {
		os.Exit(1)
	}
	logg.Info(shutdownCtx, "cron worker shutting down gracefully")
}

func buildService(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, workerID string, m *metrics.Cron) (*cron.Service, error) {
	repo := outbox.NewRepository(dbClient.DB())

	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:        logg,
		DB:            dbClient,
		Repository:    repo,
		RetentionDays: cfg.Cron.OutboxRetentionDays,
	})
	if err != nil {
		return nil, err
	}
	parked, err := cron.NewOutboxParkedJob(cron.OutboxParkedJobParams{
		Logger:      logg,
		Repository:  repo,
		Metrics:     m,
		MaxAttempts: cfg.Outbox.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}
	registry, err := cron.NewRegistry(retention, parked)
	if err != nil {
		return nil, err
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron:maintenance"), workerID, cfg.Cron.LockTTL)
	if err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   registry,
		Lock:       lock,
		Metrics:    m,
		Interval:   cfg.Cron.Interval,
		JobTimeout: cfg.Cron.JobTimeout,
	})
}
