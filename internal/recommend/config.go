// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package recommend

import (
	"fmt"
	"runtime"
	"time"

	"github.com/goccy/go-json"
)

// MaxDefaultWorkers caps the worker count chosen by DefaultWorkers.
const MaxDefaultWorkers = 32

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Workers is the size of the scoring worker pool.
	// Zero selects DefaultWorkers().
	Workers int `json:"workers"`

	// DefaultK is the number of recommendations per user when a request has K == 0.
	DefaultK int `json:"default_k"`

	// ScoreDepth is the minimum ranking depth computed and cached per user.
	// Requests with K <= ScoreDepth share one cache entry per user and dataset.
	ScoreDepth int `json:"score_depth"`

	// BatchTimeout bounds each batch when the request sets no timeout.
	// Zero disables the default timeout.
	BatchTimeout time.Duration `json:"batch_timeout"`

	// CacheSize is the capacity of the cache built when none is supplied.
	CacheSize int `json:"cache_size"`
}

// DefaultWorkers returns min(32, NumCPU + 4).
func DefaultWorkers() int {
	return min(MaxDefaultWorkers, runtime.NumCPU()+4)
}

// DefaultConfig returns a configuration with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:      DefaultWorkers(),
		DefaultK:     DefaultK,
		ScoreDepth:   DefaultK,
		BatchTimeout: 0,
		CacheSize:    128,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.DefaultK <= 0 {
		return fmt.Errorf("default_k must be positive, got %d", c.DefaultK)
	}
	if c.ScoreDepth <= 0 {
		return fmt.Errorf("score_depth must be positive, got %d", c.ScoreDepth)
	}
	if c.BatchTimeout < 0 {
		return fmt.Errorf("batch_timeout must be non-negative, got %v", c.BatchTimeout)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative, got %d", c.CacheSize)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// MarshalJSON renders BatchTimeout as a duration string.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		BatchTimeout string `json:"batch_timeout"`
	}{
		Alias:        (*Alias)(c),
		BatchTimeout: c.BatchTimeout.String(),
	})
}
