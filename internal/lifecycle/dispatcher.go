// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/specialistvlad/regioncache/internal/ctxlog"
	"github.com/specialistvlad/regioncache/internal/loader"
	"github.com/specialistvlad/regioncache/internal/registry"
)

// Registry is the subset of *registry.Registry the dispatcher drives.
type Registry interface {
	Create(name string) error
	LoadFrom(ctx context.Context, name string, l loader.Loader) (int, error)
	Publish(ctx context.Context, name string) error
	ClearAll(ctx context.Context) registry.Results
}

// Resolver picks the loader that seeds a region.
type Resolver interface {
	Resolve(region string) (loader.Loader, error)
}

// Dispatcher sequences registry mutation, loading and notification for
// lifecycle events.
type Dispatcher struct {
	reg         Registry
	loaders     Resolver
	loadTimeout time.Duration
	logger      *slog.Logger
}

// New creates a dispatcher over reg that seeds regions with the loaders
// returned by loaders.
func New(reg Registry, loaders Resolver, opts ...Option) *Dispatcher {
	d := &Dispatcher{reg: reg, loaders: loaders}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle processes a single event and returns the per-region outcomes. The
// returned error is Report.Err(); a non-nil error never means the batch was
// cut short. Unknown event kinds yield an empty report.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) (Report, error) {
	if isNil(ev) {
		return Report{}, nil
	}
	ctx = d.contextWithLogger(ctx, ev.Kind())
	logger := ctxlog.FromContext(ctx)

	var rep Report
	switch e := ev.(type) {
	case Startup:
		rep = d.startup(ctx, e.Regions)
	case *Startup:
		rep = d.startup(ctx, e.Regions)
	case Shutdown, *Shutdown:
		rep = d.shutdown(ctx)
	default:
		logger.Debug("Ignoring unknown lifecycle event.")
		return Report{Kind: ev.Kind()}, nil
	}

	if err := rep.Err(); err != nil {
		logger.Warn("Lifecycle event handled with failures.", "failed", len(rep.Failed()), "total", len(rep.Outcomes))
		return rep, err
	}
	logger.Info("Lifecycle event handled.", "regions", len(rep.Outcomes))
	return rep, nil
}

// Run handles events from the channel one at a time until the channel is
// closed or ctx is done. onReport, if non-nil, receives every report.
// It returns ctx.Err() when stopped by the context and nil otherwise.
func (d *Dispatcher) Run(ctx context.Context, events <-chan Event, onReport func(Report)) error {
	logger := d.baseLogger(ctx)
	logger.Debug("Lifecycle dispatcher started.")
	defer logger.Debug("Lifecycle dispatcher finished.")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			rep, _ := d.Handle(ctx, ev)
			if onReport != nil {
				onReport(rep)
			}
		}
	}
}

func (d *Dispatcher) startup(ctx context.Context, names []string) Report {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Starting regions.", "regions", names)

	rep := Report{Kind: KindStartup, Outcomes: make([]Outcome, 0, len(names))}
	for _, name := range names {
		out := d.startRegion(ctx, name)
		if out.Err != nil {
			logger.Error("Region startup failed.", "region", name, "stage", out.Stage, "error", out.Err)
		}
		rep.Outcomes = append(rep.Outcomes, out)
	}
	return rep
}

func (d *Dispatcher) startRegion(ctx context.Context, name string) Outcome {
	logger := ctxlog.FromContext(ctx).With("region", name)

	if err := d.reg.Create(name); err != nil {
		return Outcome{Region: name, Stage: StageCreate, Err: err}
	}

	l, err := d.loaders.Resolve(name)
	if err != nil {
		return Outcome{Region: name, Stage: StageResolve, Err: err}
	}

	loadCtx := ctx
	if d.loadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, d.loadTimeout)
		defer cancel()
	}
	n, err := d.reg.LoadFrom(loadCtx, name, l)
	if err != nil {
		return Outcome{Region: name, Stage: StageLoad, Loaded: n, Err: err}
	}
	logger.Debug("Region seeded.", "pairs", n)

	if err := d.reg.Publish(ctx, name); err != nil {
		return Outcome{Region: name, Stage: StagePublish, Loaded: n, Err: err}
	}
	return Outcome{Region: name, Stage: StageDone, Loaded: n}
}

func (d *Dispatcher) shutdown(ctx context.Context) Report {
	ctxlog.FromContext(ctx).Info("Clearing all regions.")

	results := d.reg.ClearAll(ctx)
	rep := Report{Kind: KindShutdown, Outcomes: make([]Outcome, 0, len(results))}
	for _, res := range results {
		out := Outcome{Region: res.Region, Stage: StageDone}
		if res.Err != nil {
			out.Stage, out.Err = StageClear, res.Err
		}
		rep.Outcomes = append(rep.Outcomes, out)
	}
	return rep
}

// isNil reports a missing event, including nil pointers to the known kinds.
func isNil(ev Event) bool {
	switch e := ev.(type) {
	case nil:
		return true
	case *Startup:
		return e == nil
	case *Shutdown:
		return e == nil
	}
	return false
}

func (d *Dispatcher) baseLogger(ctx context.Context) *slog.Logger {
	if d.logger != nil {
		return d.logger
	}
	return ctxlog.FromContext(ctx)
}

func (d *Dispatcher) contextWithLogger(ctx context.Context, kind Kind) context.Context {
	return ctxlog.WithLogger(ctx, d.baseLogger(ctx).With("event", string(kind)))
}
