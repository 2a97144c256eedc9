package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/gofiber/fiber/v3"
	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vk/tickgraph/internal/config"
	"github.com/vk/tickgraph/internal/ctxlog"
	"github.com/vk/tickgraph/internal/metrics"
	"github.com/vk/tickgraph/internal/nodestore"
	"github.com/vk/tickgraph/internal/registry"
	"github.com/vk/tickgraph/internal/status"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	cfg       *Config
	registry  *registry.Registry
	model     *config.Model
	converter config.Converter
	clock     clock.Clock
	store     nodestore.Store

	metrics    *metrics.Collector
	prometheus *prometheus.Registry
	snapshot   atomic.Pointer[status.Snapshot]
	server     *fiber.App
}

// Option customises an App.
type Option func(*App)

// WithModules replaces the built-in modules.
func WithModules(modules ...registry.Module) Option {
	return func(a *App) {
		a.registry = registry.New()
		for _, mod := range modules {
			mod.Register(a.registry)
		}
	}
}

// WithStore uses s instead of opening the configured backend.
func WithStore(s nodestore.Store) Option {
	return func(a *App) { a.store = s }
}

// WithClock replaces the wall clock used by the run loop.
func WithClock(c clock.Clock) Option {
	return func(a *App) { a.clock = c }
}

// NewApp loads the configuration, registers modules and validates that every
// configured migrator kind exists. The returned App has its own logger and
// registry.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, opts ...Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully")

	a := &App{
		outW:       outW,
		logger:     logger,
		cfg:        cfg,
		clock:      clock.WallClock,
		metrics:    metrics.NewCollector(),
		prometheus: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		WithModules(coreModules...)(a)
	}
	a.prometheus.MustRegister(a.metrics)

	model, converter, err := loader.Load(ctx, cfg.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := a.registry.Validate(model); err != nil {
		return nil, err
	}
	a.model = model
	a.converter = converter
	logger.Debug("Configuration loaded", "migrators", len(model.Migrators), "kinds", a.registry.Kinds())
	return a, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Snapshot returns the status of the last finished run, or nil.
func (a *App) Snapshot() *status.Snapshot {
	return a.snapshot.Load()
}
