// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/bookreco/internal/cache"
	"github.com/tomtom215/bookreco/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/bookreco/config.yaml",
	"/etc/bookreco/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			Workers:      0, // 0 = min(32, NumCPU+4)
			DefaultK:     recommend.DefaultK,
			ScoreDepth:   recommend.DefaultK,
			BatchTimeout: 0,
			Filters:      []string{},
		},
		Cache: CacheConfig{
			MaxEntries: cache.DefaultMaxEntries,
		},
		Dataset: DatasetConfig{
			Path: "",
		},
		Server: ServerConfig{
			Addr:            ":9090",
			MetricsEnabled:  true,
			ReportInterval:  5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any whitelisted setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// RECOMMEND_WORKERS -> recommend.workers
	// CACHE_MAX_ENTRIES -> cache.max_entries
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns $CONFIG_PATH if it exists, else the first default
// path that exists, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"recommend.filters",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML lists are left untouched.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings whitelists environment variables and maps them to koanf paths.
var envMappings = map[string]string{
	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Recommendation engine
	"recommend_workers":       "recommend.workers",
	"recommend_default_k":     "recommend.default_k",
	"recommend_score_depth":   "recommend.score_depth",
	"recommend_batch_timeout": "recommend.batch_timeout",
	"recommend_filters":       "recommend.filters",

	// Cache
	"cache_max_entries": "cache.max_entries",

	// Dataset
	"dataset_path": "dataset.path",

	// Server
	"http_addr":        "server.addr",
	"metrics_enabled":  "server.metrics_enabled",
	"report_interval":  "server.report_interval",
	"shutdown_timeout": "server.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped keys return "" so unrelated environment variables are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
