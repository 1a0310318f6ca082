// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package region implements the named key/value container that backs every
// cache region.
//
// A Region keeps its entries in write order using a map for O(1) key lookup
// and a doubly-linked list for ordering. Writing an existing key moves it to
// the tail, so the tail of the list is always the most recently written entry
// and All() reads back in recency-of-write order.
package region

import (
	"container/list"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrInvalidKey is returned for nil or non-comparable keys.
var ErrInvalidKey = errors.New("invalid region key")

// entry is the value stored in the ordering list. The key is kept alongside
// the value so that Keys() can be served from the list alone.
type entry struct {
	key   any
	value any
}

// Region is a concurrency-safe, ordered key/value container bound to a name.
type Region struct {
	name string

	mu    sync.RWMutex
	items map[any]*list.Element
	order *list.List // Front = oldest write, Back = last write
}

// New returns an empty region. The name is fixed for the life of the region.
func New(name string) *Region {
	return &Region{
		name:  name,
		items: make(map[any]*list.Element),
		order: list.New(),
	}
}

// Name returns the region's name.
func (r *Region) Name() string {
	return r.name
}

// Put writes or overwrites key and marks it as the last inserted entry.
func (r *Region) Put(key, value any) error {
	if err := validateKey(key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if el, ok := r.items[key]; ok {
		el.Value.(*entry).value = value
		r.order.MoveToBack(el)
		return nil
	}
	r.items[key] = r.order.PushBack(&entry{key: key, value: value})
	return nil
}

// Get returns the value stored under key.
func (r *Region) Get(key any) (any, bool) {
	if validateKey(key) != nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	el, ok := r.items[key]
	if !ok {
		return nil, false
	}
	return el.Value.(*entry).value, true
}

// Last returns the most recently written value. The boolean is false when the
// region is empty.
func (r *Region) Last() (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	el := r.order.Back()
	if el == nil {
		return nil, false
	}
	return el.Value.(*entry).value, true
}

// All returns a snapshot of every value in write order. The slice is never
// nil so that an empty region serializes as an empty list.
func (r *Region) All() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]any, 0, r.order.Len())
	for el := r.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*entry).value)
	}
	return out
}

// Keys returns the keys in write order.
func (r *Region) Keys() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]any, 0, r.order.Len())
	for el := r.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*entry).key)
	}
	return out
}

// Len returns the number of stored entries.
func (r *Region) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Clear removes every entry and resets the last-inserted marker.
func (r *Region) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[any]*list.Element)
	r.order.Init()
}

// validateKey rejects keys that would panic when used as a map index.
func validateKey(key any) error {
	if key == nil {
		return fmt.Errorf("%w: nil", ErrInvalidKey)
	}
	if t := reflect.TypeOf(key); !t.Comparable() {
		return fmt.Errorf("%w: type %s is not comparable", ErrInvalidKey, t)
	}
	return nil
}
