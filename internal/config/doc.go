// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

/*
Package config provides layered configuration for bookreco.

Configuration is loaded with Koanf v2 in three layers, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, config.yaml, config.yml, or
    /etc/bookreco/config.yaml
 3. Whitelisted environment variables

# Environment Variables

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: include caller file:line (default: false)

Recommendation engine:
  - RECOMMEND_WORKERS: worker pool size, 0 = min(32, NumCPU+4) (default: 0)
  - RECOMMEND_DEFAULT_K: recommendations per user (default: 10)
  - RECOMMEND_SCORE_DEPTH: minimum ranking depth cached per user (default: 10)
  - RECOMMEND_BATCH_TIMEOUT: default batch timeout, 0 = none (default: 0)
  - RECOMMEND_FILTERS: comma-separated CEL filter expressions

Cache:
  - CACHE_MAX_ENTRIES: LRU capacity (default: 128)

Dataset:
  - DATASET_PATH: JSON or YAML dataset file

Server (serve mode):
  - HTTP_ADDR: ops listener address (default: :9090)
  - METRICS_ENABLED: expose /metrics (default: true)
  - REPORT_INTERVAL: periodic report interval (default: 5m)

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    return err
	}
	engineCfg := cfg.ToEngineConfig()
*/
package config
