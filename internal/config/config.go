// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/bookreco/internal/logging"
	"github.com/tomtom215/bookreco/internal/recommend"
	"github.com/tomtom215/bookreco/internal/validation"
)

// Config holds all application configuration loaded from defaults, an
// optional config file and environment variables.
type Config struct {
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Server    ServerConfig    `koanf:"server"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn error"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	// Workers is the worker pool size. 0 selects min(32, NumCPU+4).
	Workers int `koanf:"workers" validate:"gte=0,lte=1024"`

	// DefaultK is the number of recommendations per user when a request omits k.
	// Default: 10
	DefaultK int `koanf:"default_k" validate:"gt=0"`

	// ScoreDepth is the minimum ranking depth computed and cached per user.
	// Default: 10
	ScoreDepth int `koanf:"score_depth" validate:"gt=0"`

	// BatchTimeout bounds each batch. 0 disables the timeout.
	BatchTimeout time.Duration `koanf:"batch_timeout" validate:"gte=0"`

	// Filters are CEL expressions applied to every batch, e.g. "book.year >= 2000".
	Filters []string `koanf:"filters"`
}

// CacheConfig holds recommendation cache settings.
type CacheConfig struct {
	// MaxEntries is the LRU capacity.
	// Default: 128
	MaxEntries int `koanf:"max_entries" validate:"gt=0"`
}

// DatasetConfig locates the ratings and catalog.
type DatasetConfig struct {
	// Path is a .json, .yaml or .yml dataset file.
	Path string `koanf:"path"`
}

// ServerConfig holds settings for the long-running serve mode.
type ServerConfig struct {
	// Addr is the ops HTTP listen address.
	// Default: :9090
	Addr string `koanf:"addr" validate:"required"`

	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// ReportInterval is how often serve mode regenerates the batch report.
	// Default: 5m
	ReportInterval time.Duration `koanf:"report_interval" validate:"gt=0"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if c.Recommend.ScoreDepth < c.Recommend.DefaultK {
		return fmt.Errorf("RECOMMEND_SCORE_DEPTH (%d) must be at least RECOMMEND_DEFAULT_K (%d)",
			c.Recommend.ScoreDepth, c.Recommend.DefaultK)
	}

	if c.Dataset.Path != "" {
		ext := strings.ToLower(c.Dataset.Path)
		if !strings.HasSuffix(ext, ".json") && !strings.HasSuffix(ext, ".yaml") && !strings.HasSuffix(ext, ".yml") {
			return fmt.Errorf("DATASET_PATH must be a .json, .yaml or .yml file, got %q", c.Dataset.Path)
		}
	}

	if _, err := recommend.CompileFilters(c.Recommend.Filters); err != nil {
		return fmt.Errorf("RECOMMEND_FILTERS: %w", err)
	}

	return nil
}

// ToEngineConfig maps the settings onto the engine's configuration.
func (c *Config) ToEngineConfig() *recommend.Config {
	return &recommend.Config{
		Workers:      c.Recommend.Workers,
		DefaultK:     c.Recommend.DefaultK,
		ScoreDepth:   c.Recommend.ScoreDepth,
		BatchTimeout: c.Recommend.BatchTimeout,
		CacheSize:    c.Cache.MaxEntries,
	}
}

// ToLoggingConfig maps the settings onto the logger's configuration.
func (c *Config) ToLoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}
