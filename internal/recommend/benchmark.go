// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookreco/internal/metrics"
)

// Benchmark statuses.
const (
	BenchmarkCompleted = "completed"
	BenchmarkSkipped   = "skipped"
	BenchmarkFailed    = "failed"
)

// BenchmarkOptions configures a Benchmark run.
type BenchmarkOptions struct {
	// Config is the engine configuration for the run; nil uses DefaultConfig.
	// Its DefaultK and ScoreDepth apply to both passes; its BatchTimeout
	// bounds the parallel pass only.
	Config *Config

	// Workers for the parallel pass; zero uses Config.Workers, then DefaultWorkers().
	Workers int

	// CacheSize is the capacity of each pass's cache; zero uses Config.CacheSize.
	CacheSize int

	// Logger receives progress logs. The zero value discards them.
	Logger zerolog.Logger
}

// BenchmarkResult compares a parallel batch with a serial recomputation.
type BenchmarkResult struct {
	Status            string        `json:"status"`
	Error             string        `json:"error,omitempty"`
	ParallelTime      time.Duration `json:"-"`
	SerialTime        time.Duration `json:"-"`
	ParallelTimeMs    float64       `json:"parallel_time_ms"`
	SerialTimeMs      float64       `json:"serial_time_ms"`
	Speedup           float64       `json:"speedup"`
	Efficiency        float64       `json:"efficiency"`
	UsersProcessed    int           `json:"users_processed"`
	K                 int           `json:"k"`
	Workers           int           `json:"workers"`
	CacheHitRatio     float64       `json:"cache_hit_ratio"`
	ResultsConsistent bool          `json:"results_consistent"`
}

// Benchmark runs req once through a fresh engine's worker pool, then
// recomputes the same users one at a time on the calling goroutine, and
// compares wall-clock times. Each pass starts with an empty cache of the
// same capacity so both do the same scoring work. The engine it creates is
// always shut down.
//
// A failed run returns a result with Status "failed" together with the error.
//
//nolint:gocritic // hugeParam: req and opts passed by value for immutability
func Benchmark(ctx context.Context, req BatchRequest, opts BenchmarkOptions) (*BenchmarkResult, error) {
	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = opts.Config.Clone()
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers()
	}
	if opts.CacheSize > 0 {
		cfg.CacheSize = opts.CacheSize
	}
	workers := cfg.Workers
	logger := opts.Logger.With().Str("component", "benchmark").Logger()

	result := &BenchmarkResult{Workers: workers}
	users := uniqueUserIDs(req.UserIDs)
	if len(users) == 0 {
		result.Status = BenchmarkSkipped
		metrics.RecordBenchmark(result.Status, 0)
		logger.Info().Msg("benchmark skipped: no users")
		return result, nil
	}

	fail := func(err error) (*BenchmarkResult, error) {
		result.Status = BenchmarkFailed
		result.Error = err.Error()
		metrics.RecordBenchmark(result.Status, 0)
		logger.Error().Err(err).Msg("benchmark failed")
		return result, err
	}

	parallelCache, err := NewCache(cfg.CacheSize)
	if err != nil {
		return fail(fmt.Errorf("create parallel cache: %w", err))
	}
	serialCache, err := NewCache(cfg.CacheSize)
	if err != nil {
		return fail(fmt.Errorf("create serial cache: %w", err))
	}

	engine, err := NewEngine(cfg, parallelCache, opts.Logger)
	if err != nil {
		return fail(fmt.Errorf("create engine: %w", err))
	}
	defer engine.Shutdown()

	if req.Snapshot == nil {
		req.Snapshot = NewSnapshot(req.Ratings, req.Catalog)
	}

	parallelStart := time.Now()
	parallel, err := engine.RecommendBatch(ctx, req)
	result.ParallelTime = time.Since(parallelStart)
	if err != nil {
		return fail(fmt.Errorf("parallel pass: %w", err))
	}

	serialStart := time.Now()
	serial, err := engine.recommendSerial(ctx, serialCache, req, users)
	result.SerialTime = time.Since(serialStart)
	if err != nil {
		return fail(fmt.Errorf("serial pass: %w", err))
	}

	result.ParallelTimeMs = durationMs(result.ParallelTime)
	result.SerialTimeMs = durationMs(result.SerialTime)
	if result.ParallelTime > 0 {
		result.Speedup = float64(result.SerialTime) / float64(result.ParallelTime)
	}
	result.Efficiency = result.Speedup / float64(workers)
	result.UsersProcessed = len(users)
	result.K, _ = engine.resolveDepth(req.K)
	result.CacheHitRatio = engine.CacheStats().HitRatio()
	result.ResultsConsistent = sameResults(parallel, serial)
	result.Status = BenchmarkCompleted

	metrics.RecordBenchmark(result.Status, result.Speedup)
	logger.Info().
		Int("users", result.UsersProcessed).
		Int("workers", workers).
		Float64("parallel_ms", result.ParallelTimeMs).
		Float64("serial_ms", result.SerialTimeMs).
		Float64("speedup", result.Speedup).
		Bool("results_consistent", result.ResultsConsistent).
		Msg("benchmark completed")

	return result, nil
}

// recommendSerial computes users one after another with the engine's
// scoring path, bypassing the worker pool.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) recommendSerial(ctx context.Context, c *Cache, req BatchRequest, users []string) (map[string][]Recommendation, error) {
	k, depth := e.resolveDepth(req.K)
	logger := e.batchLogger(ctx)
	result := make(map[string][]Recommendation, len(users))

	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out := e.computeUser(ctx, c, req.Snapshot, userID, k, depth, req.Filters)
		if out.err != nil {
			logger.Warn().Str("user_id", userID).Str("pass", "serial").Err(out.err).Msg("user recommendation failed")
			result[userID] = []Recommendation{}
			continue
		}
		result[userID] = out.recs
	}
	return result, nil
}

// sameResults reports whether both passes produced identical lists per user.
func sameResults(a, b map[string][]Recommendation) bool {
	if len(a) != len(b) {
		return false
	}
	for userID, listA := range a {
		listB, ok := b[userID]
		if !ok || len(listA) != len(listB) {
			return false
		}
		for i := range listA {
			if listA[i] != listB[i] {
				return false
			}
		}
	}
	return true
}
