// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package cache

import (
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxEntries is the capacity used when New is given a non-positive size.
const DefaultMaxEntries = 128

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"current_size"`
	MaxSize   int   `json:"max_size"`
}

// HitRatio returns hits / (hits + misses), or 0 before the first lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Option configures an LRU.
type Option func(*options)

type options struct {
	onEvict func(key string)
}

// WithOnEvict registers a callback invoked for each capacity eviction.
// It runs while the cache lock is held and must not call back into the cache.
func WithOnEvict(fn func(key string)) Option {
	return func(o *options) {
		o.onEvict = fn
	}
}

// LRU is a bounded least-recently-used cache with compute-once semantics.
type LRU[V any] struct {
	mu         sync.Mutex
	items      *simplelru.LRU[string, V]
	maxEntries int
	onEvict    func(key string)

	hits      int64
	misses    int64
	evictions int64

	flights singleflight.Group
}

// New creates an LRU holding at most maxEntries values.
func New[V any](maxEntries int, opts ...Option) (*LRU[V], error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	c := &LRU[V]{
		maxEntries: maxEntries,
		onEvict:    o.onEvict,
	}

	items, err := simplelru.NewLRU[string, V](maxEntries, c.evicted)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru: %w", err)
	}
	c.items = items
	return c, nil
}

// evicted is the simplelru callback; it only fires on capacity eviction
// because Clear resets the list with the callback detached.
func (c *LRU[V]) evicted(key string, _ V) {
	c.evictions++
	if c.onEvict != nil {
		c.onEvict(key)
	}
}

// GetOrCompute returns the value cached under key, computing and storing it
// on a miss. Concurrent callers for the same key share a single compute call.
// The boolean reports whether the value came from the cache (or from another
// caller's in-flight computation). Compute errors are returned and not cached.
func (c *LRU[V]) GetOrCompute(key string, compute func() (V, error)) (V, bool, error) {
	if v, ok := c.get(key); ok {
		return v, true, nil
	}

	executed := false
	found := false
	res, err, _ := c.flights.Do(key, func() (interface{}, error) {
		executed = true

		// A flight for this key may have completed between get and Do.
		c.mu.Lock()
		if v, ok := c.items.Get(key); ok {
			c.hits++
			c.mu.Unlock()
			found = true
			return v, nil
		}
		c.misses++
		c.mu.Unlock()

		v, err := compute()
		if err != nil {
			return v, err
		}

		c.mu.Lock()
		c.items.Add(key, v)
		c.mu.Unlock()
		return v, nil
	})

	if !executed {
		c.mu.Lock()
		if err == nil {
			c.hits++
		} else {
			c.misses++
		}
		c.mu.Unlock()
		found = err == nil
	}

	var zero V
	if err != nil {
		return zero, false, err
	}
	v, ok := res.(V)
	if !ok {
		return zero, false, fmt.Errorf("cache entry %q has unexpected type %T", key, res)
	}
	return v, found, nil
}

// get looks up key, refreshing its recency and counting a hit when present.
func (c *LRU[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.items.Get(key)
	if ok {
		c.hits++
	}
	return v, ok
}

// Contains reports whether key is cached without touching recency or counters.
func (c *LRU[V]) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Contains(key)
}

// Len returns the number of cached entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Len()
}

// MaxEntries returns the configured capacity.
func (c *LRU[V]) MaxEntries() int {
	return c.maxEntries
}

// Clear drops all entries. Counters are cumulative and are not reset.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Purge would report every entry through the eviction callback.
	items, err := simplelru.NewLRU[string, V](c.maxEntries, c.evicted)
	if err != nil {
		c.items.Purge()
		return
	}
	c.items = items
}

// Stats returns the current counters.
func (c *LRU[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      c.items.Len(),
		MaxSize:   c.maxEntries,
	}
}
