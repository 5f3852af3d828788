// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

/*
Package cache provides the memoization layer for computed recommendations.

# Overview

LRU is a bounded, thread-safe least-recently-used cache keyed by string
fingerprints. It is built on hashicorp/golang-lru/v2's simplelru for entry
storage and recency ordering, and on golang.org/x/sync/singleflight to make
sure a value is computed at most once per key even when several workers
request it at the same moment.

# Counters

Hits, misses and evictions are updated under the same mutex that guards
the LRU list, so the numbers reported by Stats are exact. A caller that
joins another caller's in-flight computation is counted as a hit. Clear
drops entries but keeps the counters; they only reset when a new cache is
constructed.

# Usage Example

	c, err := cache.New[[]Result](128)
	if err != nil {
	    return err
	}

	value, hit, err := c.GetOrCompute(key, func() ([]Result, error) {
	    return compute(input)
	})

	stats := c.Stats()
	fmt.Printf("hits=%d misses=%d size=%d/%d\n", stats.Hits, stats.Misses, stats.Size, stats.MaxSize)

# Thread Safety

All methods are safe for concurrent use. The compute function runs
outside the cache lock.
*/
package cache
