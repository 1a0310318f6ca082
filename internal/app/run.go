package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/regioncache/internal/ctxlog"
	"github.com/specialistvlad/regioncache/internal/lifecycle"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Run starts the cache and blocks until ctx is done or the HTTP server fails.
// A Startup event for the configured regions is sent first; a Shutdown event
// is sent on the way out and handled before Run returns, so the regions are
// always cleared. Loaders and notifiers are closed last.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	var ln net.Listener
	if a.config.Listen != "" {
		var err error
		ln, err = net.Listen("tcp", a.config.Listen)
		if err != nil {
			closeAll(ctx, a.closers)
			return fmt.Errorf("failed to listen on %s: %w", a.config.Listen, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	events := make(chan lifecycle.Event, 2)

	// The dispatcher must outlive ctx so the shutdown event is still handled.
	dispatchCtx := context.WithoutCancel(ctx)
	g.Go(func() error {
		return a.dispatcher.Run(dispatchCtx, events, a.onReport)
	})

	if ln != nil {
		server := &http.Server{Handler: a.Handler(), ReadHeaderTimeout: 10 * time.Second}
		g.Go(func() error {
			a.logger.Info("HTTP API listening.", "address", ln.Addr().String())
			if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(dispatchCtx, shutdownTimeout)
			defer cancel()
			a.logger.Info("Shutting down HTTP API...")
			return server.Shutdown(shutdownCtx)
		})
	}

	events <- lifecycle.Startup{Regions: a.cache.StartupRegions}
	g.Go(func() error {
		<-gctx.Done()
		events <- lifecycle.Shutdown{}
		close(events)
		return nil
	})

	err := g.Wait()
	if cerr := closeAll(dispatchCtx, a.closers); cerr != nil {
		a.logger.Warn("Some resources failed to close.", "error", cerr)
	}
	a.logger.Debug("App.Run method finished.")
	return err
}
