package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/regioncache/internal/config"
	"github.com/specialistvlad/regioncache/internal/ctxlog"
	"github.com/specialistvlad/regioncache/internal/loader"
	"github.com/specialistvlad/regioncache/internal/notify"
)

const defaultHubPath = "/socket.io/"

// mountedHub is a socket.io hub together with the path it is served under.
type mountedHub struct {
	path string
	hub  *notify.Hub
}

// buildLoaders opens every declared loader and binds regions to them. The
// returned closers release the loaders' connections.
func buildLoaders(ctx context.Context, cache *config.Config) (*loader.Resolver, []io.Closer, error) {
	logger := ctxlog.FromContext(ctx)
	resolver := loader.NewResolver()
	byName := make(map[string]loader.Loader, len(cache.Loaders))
	var closers []io.Closer

	for _, block := range cache.Loaders {
		l, closer, err := openLoader(block)
		if err != nil {
			closeAll(ctx, closers)
			return nil, nil, fmt.Errorf("loader %q: %w", block.Name, err)
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		byName[block.Name] = l
		logger.Debug("Loader opened.", "loader", block.Name, "type", block.Type)
	}

	for _, r := range cache.Regions {
		resolver.Bind(r.Name, byName[r.Loader])
	}
	if cache.DefaultLoader != "" {
		resolver.SetDefault(byName[cache.DefaultLoader])
	}
	return resolver, closers, nil
}

func openLoader(block *config.LoaderBlock) (loader.Loader, io.Closer, error) {
	switch block.Type {
	case config.LoaderHCL:
		return loader.NewHCLFile(block.Path), nil, nil
	case config.LoaderRedis:
		l := loader.NewRedis(loader.NewRedisPool(block.Addr), block.Key)
		return l, l, nil
	case config.LoaderBadger:
		l, err := loader.OpenBadger(block.Path, block.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return l, l, nil
	case config.LoaderHTTP:
		l := loader.NewHTTP(block.URL, block.Timeout)
		return l, l, nil
	default:
		return nil, nil, fmt.Errorf("unknown loader type %q", block.Type)
	}
}

// buildPublishers creates every declared notifier and combines them into one
// publisher: a router when a routes file is configured, otherwise a fanout
// in declaration order. With no notifiers declared, changes are logged.
func buildPublishers(ctx context.Context, cache *config.Config, logger *slog.Logger) (notify.Publisher, []mountedHub, []io.Closer, error) {
	var (
		hubs    []mountedHub
		closers []io.Closer
	)
	named := make(map[string]notify.Publisher, len(cache.Notifiers))
	fanout := notify.NewFanout()

	blocks := cache.Notifiers
	if len(blocks) == 0 {
		blocks = []*config.NotifierBlock{{Type: config.NotifierLog, Name: "log"}}
	}

	for _, block := range blocks {
		p, hub, closer, err := openNotifier(ctx, block, logger)
		if err != nil {
			closeAll(ctx, closers)
			return nil, nil, nil, fmt.Errorf("notifier %q: %w", block.Name, err)
		}
		if hub != nil {
			path := block.Path
			if path == "" {
				path = defaultHubPath
			}
			hubs = append(hubs, mountedHub{path: path, hub: hub})
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		named[block.Name] = p
		fanout.Add(block.Name, p)
		logger.Debug("Notifier ready.", "notifier", block.Name, "type", block.Type)
	}

	if cache.RoutesFile == "" {
		return fanout, hubs, closers, nil
	}

	routes, err := notify.LoadRoutes(cache.RoutesFile)
	if err == nil {
		var router *notify.Router
		router, err = notify.NewRouter(routes, named)
		if err == nil {
			logger.Debug("Notification routes loaded.", "path", cache.RoutesFile, "routes", len(routes.Notifications))
			return router, hubs, closers, nil
		}
	}
	closeAll(ctx, closers)
	return nil, nil, nil, fmt.Errorf("routes file %s: %w", cache.RoutesFile, err)
}

func openNotifier(ctx context.Context, block *config.NotifierBlock, logger *slog.Logger) (notify.Publisher, *notify.Hub, io.Closer, error) {
	codec, err := notify.CodecByName(block.Codec)
	if err != nil {
		return nil, nil, nil, err
	}

	switch block.Type {
	case config.NotifierLog:
		return notify.NewLog(logger.With("notifier", block.Name)), nil, nil, nil
	case config.NotifierSocketIOHub:
		hub := notify.NewHub(logger.With("notifier", block.Name), block.Event, codec)
		return hub, hub, hub, nil
	case config.NotifierSocketIOClient:
		c, err := notify.DialSocketIO(ctx, notify.SocketIOOptions{
			URL:       block.URL,
			Namespace: block.Namespace,
			Event:     block.Event,
			Codec:     codec,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return c, nil, c, nil
	case config.NotifierWebSocket:
		ws, err := notify.DialWebSocket(ctx, block.URL, codec)
		if err != nil {
			return nil, nil, nil, err
		}
		return ws, nil, ws, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown notifier type %q", block.Type)
	}
}

// closeAll closes in reverse order of opening and logs failures.
func closeAll(ctx context.Context, closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			ctxlog.FromContext(ctx).Error("Failed to close resource.", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
