// Package bootstrap holds the startup and shutdown steps shared by the
// api, outbox-publisher and cron-worker binaries.
package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Load reads an optional .env file and the environment config, then returns
// a logger configured from it. The returned logger is usable even on error.
func Load(service string) (*config.Config, *logger.Logger, error) {
	logg := logger.New(logger.Options{ServiceName: service})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, logg, err
	}
	return cfg, logger.New(logger.Options{
		ServiceName: service,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	}), nil
}

// Closer releases resources in reverse registration order.
type Closer struct {
	mu  sync.Mutex
	fns []func(context.Context) error
}

// Add registers a plain io.Closer style func.
func (c *Closer) Add(fn func() error) {
	c.AddContext(func(context.Context) error { return fn() })
}

// AddContext registers a func that honours the shutdown deadline.
func (c *Closer) AddContext(fn func(context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fns = append(c.fns, fn)
}

// Close runs every registered func once and combines their errors.
func (c *Closer) Close(ctx context.Context) error {
	c.mu.Lock()
	fns := c.fns
	c.fns = nil
	c.mu.Unlock()

	var err error
	for i := len(fns) - 1; i >= 0; i-- {
		err = multierr.Append(err, fns[i](ctx))
	}
	return err
}

// ServeMetrics exposes gatherer on addr+path in the background and registers
// its shutdown with closer. It does nothing when metrics are disabled.
func ServeMetrics(ctx context.Context, cfg config.MetricsConfig, addr string, gatherer prometheus.Gatherer, logg *logger.Logger, closer *Closer) {
	if !cfg.Enabled {
		return
	}
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}
	closer.AddContext(server.Shutdown)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped", err)
		}
	}()
}
