// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/specialistvlad/regioncache/internal/ctxlog"
	"github.com/specialistvlad/regioncache/internal/loader"
	"github.com/specialistvlad/regioncache/internal/notify"
	"github.com/specialistvlad/regioncache/internal/region"
)

// Registry owns every region of one cache instance.
//
// All mutations (create, put, load, clear) take the registry write lock, so
// the registry is the single serialization point for region contents. Reads
// share the read lock. Each region also has a publish lock held from its
// write until the notification is delivered, so notifications for one region
// arrive in write order.
type Registry struct {
	mu        sync.RWMutex
	regions   map[string]*region.Region
	publishMu map[string]*sync.Mutex
	publisher notify.Publisher
}

// New creates an empty registry that announces changes through publisher.
// A nil publisher discards notifications.
func New(publisher notify.Publisher) *Registry {
	if publisher == nil {
		publisher = notify.Discard
	}
	return &Registry{
		regions:   make(map[string]*region.Region),
		publishMu: make(map[string]*sync.Mutex),
		publisher: publisher,
	}
}

// Create registers a new, empty region under name.
func (r *Registry) Create(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.regions[name]; exists {
		return fmt.Errorf("%w: %q", ErrRegionAlreadyExists, name)
	}
	r.regions[name] = region.New(name)
	r.publishMu[name] = &sync.Mutex{}
	return nil
}

// Region returns the region registered under name.
func (r *Registry) Region(name string) (*region.Region, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookupLocked(name)
}

// Put writes key/value into the named region and then publishes a
// notification with the region's full contents. A publish failure is
// returned but the write stays applied.
func (r *Registry) Put(ctx context.Context, name string, key, value any) error {
	logger := ctxlog.FromContext(ctx).With("region", name)

	pub, err := r.publishLock(name)
	if err != nil {
		return err
	}
	pub.Lock()
	defer pub.Unlock()

	r.mu.Lock()
	reg, err := r.lookupLocked(name)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	if err := reg.Put(key, value); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("put into region %q: %w", name, err)
	}
	snapshot := reg.All()
	r.mu.Unlock()

	logger.Debug("Region entry written.", "key", key, "size", len(snapshot))
	if err := r.publisher.Publish(ctx, notify.New(name, snapshot)); err != nil {
		logger.Warn("Failed to publish region change.", "error", err)
		return fmt.Errorf("publish region %q: %w", name, err)
	}
	return nil
}

// Last returns the most recently written value of the named region.
func (r *Registry) Last(name string) (any, error) {
	reg, err := r.Region(name)
	if err != nil {
		return nil, err
	}
	v, ok := reg.Last()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEmptyRegion, name)
	}
	return v, nil
}

// All returns the values of the named region in write order.
func (r *Registry) All(name string) ([]any, error) {
	reg, err := r.Region(name)
	if err != nil {
		return nil, err
	}
	return reg.All(), nil
}

// LoadFrom seeds the named region with every pair produced by l and returns
// the number of pairs written. It does not publish; callers announce the
// loaded contents with Publish. A failure part-way through leaves the pairs
// written so far in place.
func (r *Registry) LoadFrom(ctx context.Context, name string, l loader.Loader) (int, error) {
	logger := ctxlog.FromContext(ctx).With("region", name)

	if _, err := r.Region(name); err != nil {
		return 0, err
	}

	pairs, err := l.FetchAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load region %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	reg, err := r.lookupLocked(name)
	if err != nil {
		return 0, err
	}
	for i, p := range pairs {
		if err := reg.Put(p.Key, p.Value); err != nil {
			return i, fmt.Errorf("load region %q: pair %d: %w", name, i, err)
		}
	}
	logger.Debug("Region loaded.", "pairs", len(pairs))
	return len(pairs), nil
}

// Publish announces the named region's current contents.
func (r *Registry) Publish(ctx context.Context, name string) error {
	pub, err := r.publishLock(name)
	if err != nil {
		return err
	}
	pub.Lock()
	defer pub.Unlock()

	values, err := r.All(name)
	if err != nil {
		return err
	}
	if err := r.publisher.Publish(ctx, notify.New(name, values)); err != nil {
		return fmt.Errorf("publish region %q: %w", name, err)
	}
	return nil
}

// Result is the outcome of a batch operation for one region.
type Result struct {
	Region string
	Err    error
}

// Results lists per-region outcomes in region-name order.
type Results []Result

// Err joins every per-region failure, or returns nil.
func (rs Results) Err() error {
	var errs []error
	for _, res := range rs {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("region %q: %w", res.Region, res.Err))
		}
	}
	return errors.Join(errs...)
}

// ClearAll empties every region. It never stops early: a region that cannot
// be cleared is recorded in the results and the sweep continues.
func (r *Registry) ClearAll(ctx context.Context) Results {
	logger := ctxlog.FromContext(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	names := r.namesLocked()
	results := make(Results, 0, len(names))
	for _, name := range names {
		reg, err := r.lookupLocked(name)
		if err != nil {
			logger.Error("Failed to clear region.", "region", name, "error", err)
			results = append(results, Result{Region: name, Err: err})
			continue
		}
		reg.Clear()
		results = append(results, Result{Region: name})
	}
	logger.Debug("All regions cleared.", "count", len(results))
	return results
}

// Names returns the registered region names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

// Len returns the number of registered regions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.regions)
}

// publishLock returns the lock that orders notifications for name.
func (r *Registry) publishLock(name string) (*sync.Mutex, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, err := r.lookupLocked(name); err != nil {
		return nil, err
	}
	return r.publishMu[name], nil
}

func (r *Registry) lookupLocked(name string) (*region.Region, error) {
	reg, ok := r.regions[name]
	if !ok {
		return nil, &NotFoundError{Name: name, Suggestion: suggest(name, r.namesLocked())}
	}
	return reg, nil
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.regions))
	for name := range r.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
