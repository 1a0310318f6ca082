// Package loader defines the data-loader port used to seed cache regions and
// the adapters that implement it against concrete stores.
//
// A Loader returns every key/value pair of one entity set in a stable order.
// The Resolver decides which Loader serves which region, so a single
// lifecycle dispatcher can seed regions backed by different stores.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNoLoader is returned when a region has neither a binding nor a default.
var ErrNoLoader = errors.New("no loader bound to region")

// Pair is one key/value entry produced by a Loader.
type Pair struct {
	Key   any
	Value any
}

// Loader fetches all key/value pairs of one entity set.
type Loader interface {
	FetchAll(ctx context.Context) ([]Pair, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context) ([]Pair, error)

// FetchAll calls f(ctx).
func (f LoaderFunc) FetchAll(ctx context.Context) ([]Pair, error) {
	return f(ctx)
}

// Static serves a fixed list of pairs in the order given.
type Static []Pair

// FetchAll implements Loader.
func (s Static) FetchAll(context.Context) ([]Pair, error) {
	out := make([]Pair, len(s))
	copy(out, s)
	return out, nil
}

// Resolver maps region names to loaders.
type Resolver struct {
	mu       sync.RWMutex
	bindings map[string]Loader
	fallback Loader
}

// NewResolver returns a resolver with no bindings and no default.
func NewResolver() *Resolver {
	return &Resolver{bindings: make(map[string]Loader)}
}

// Bind serves region from l, replacing any earlier binding. A nil l removes
// the binding.
func (r *Resolver) Bind(region string, l Loader) *Resolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l == nil {
		delete(r.bindings, region)
		return r
	}
	r.bindings[region] = l
	return r
}

// SetDefault sets the loader used for regions without a binding.
func (r *Resolver) SetDefault(l Loader) *Resolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = l
	return r
}

// Resolve returns the loader for region.
func (r *Resolver) Resolve(region string) (Loader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if l, ok := r.bindings[region]; ok {
		return l, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("%w %q", ErrNoLoader, region)
}
