package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/specialistvlad/regioncache/internal/config"
	"github.com/specialistvlad/regioncache/internal/ctxlog"
	"github.com/specialistvlad/regioncache/internal/lifecycle"
	"github.com/specialistvlad/regioncache/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	cache      *config.Config
	registry   *registry.Registry
	dispatcher *lifecycle.Dispatcher
	hubs       []mountedHub
	closers    []io.Closer

	startOnce sync.Once
	started   chan struct{}
}

// NewApp is the constructor for the main application. It loads the cache
// configuration file, opens every loader and notifier it names and returns
// an App ready to Run. Resources opened before a failure are released.
func NewApp(outW io.Writer, appConfig *Config) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cache := config.Empty()
	if appConfig.ConfigPath != "" {
		var err error
		cache, err = config.Load(ctx, appConfig.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}
	return newApp(ctx, outW, appConfig, cache)
}

// newApp builds the App from an already decoded cache configuration.
func newApp(ctx context.Context, outW io.Writer, appConfig *Config, cache *config.Config) (*App, error) {
	logger := ctxlog.FromContext(ctx)

	resolver, loaderClosers, err := buildLoaders(ctx, cache)
	if err != nil {
		return nil, err
	}

	publisher, hubs, notifierClosers, err := buildPublishers(ctx, cache, logger)
	if err != nil {
		closeAll(ctx, loaderClosers)
		return nil, err
	}

	reg := registry.New(publisher)
	dispatcher := lifecycle.New(reg, resolver,
		lifecycle.WithLoadTimeout(cache.LoadTimeout),
		lifecycle.WithLogger(logger),
	)
	logger.Debug("Application wired.", "loaders", len(cache.Loaders), "notifiers", len(cache.Notifiers), "hubs", len(hubs))

	return &App{
		outW:       outW,
		logger:     logger,
		config:     appConfig,
		cache:      cache,
		registry:   reg,
		dispatcher: dispatcher,
		hubs:       hubs,
		closers:    append(notifierClosers, loaderClosers...),
		started:    make(chan struct{}),
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Started is closed once the startup event has been handled.
func (a *App) Started() <-chan struct{} {
	return a.started
}

// onReport logs the outcome of a lifecycle event.
func (a *App) onReport(rep lifecycle.Report) {
	for _, o := range rep.Failed() {
		a.logger.Warn("Region not ready.", "event", rep.Kind, "region", o.Region, "stage", o.Stage, "error", o.Err)
	}
	a.logger.Info("Lifecycle report.", "event", rep.Kind, "regions", len(rep.Outcomes), "failed", len(rep.Failed()))

	if rep.Kind == lifecycle.KindStartup {
		a.startOnce.Do(func() { close(a.started) })
	}
}
