// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookreco/internal/cache"
	"github.com/tomtom215/bookreco/internal/logging"
	"github.com/tomtom215/bookreco/internal/metrics"
)

// Cache is the memoization cache used by the engine.
type Cache = cache.LRU[[]ScoredBook]

// NewCache creates a recommendation cache of maxEntries (128 when <= 0)
// that reports evictions to Prometheus.
func NewCache(maxEntries int) (*Cache, error) {
	return cache.New[[]ScoredBook](maxEntries, cache.WithOnEvict(func(string) {
		metrics.RecordCacheEviction()
	}))
}

// Engine fans batches of users out over a bounded worker pool, memoizing
// per-user rankings in a shared cache. It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger
	cache  *Cache
	pool   *workerPool

	// closed is set once Shutdown begins. Readers never block on it.
	closed atomic.Bool

	// admit orders batch admission against Shutdown so that inflight.Add
	// never races inflight.Wait. It is held only briefly.
	admit    sync.Mutex
	inflight sync.WaitGroup
	stopOnce sync.Once
}

// userOutcome is the result of one per-user task.
type userOutcome struct {
	userID string
	recs   []Recommendation
	err    error
}

// NewEngine creates an engine and starts its worker pool.
// A nil cfg uses DefaultConfig; a nil c builds a cache of cfg.CacheSize.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, c *Cache, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg = cfg.Clone()
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers()
	}

	if c == nil {
		var err error
		if c, err = NewCache(cfg.CacheSize); err != nil {
			return nil, fmt.Errorf("create cache: %w", err)
		}
	}

	e := &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		cache:  c,
		pool:   newWorkerPool(cfg.Workers),
	}
	metrics.SetWorkerPoolSize(cfg.Workers)

	e.logger.Debug().
		Int("workers", cfg.Workers).
		Int("cache_max_size", c.MaxEntries()).
		Msg("recommendation engine started")

	return e, nil
}

// RecommendBatch computes top-K recommendations for every user in req.
//
// The result has one entry per distinct user ID. A user whose computation
// fails gets an empty list and a log line; the batch still succeeds. The
// batch fails only with ErrEngineShutdown, ErrTimeoutExceeded, or when ctx
// is canceled, and never returns partial results.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) RecommendBatch(ctx context.Context, req BatchRequest) (map[string][]Recommendation, error) {
	if !e.enter() {
		metrics.RecordBatch(metrics.OutcomeShutdown, 0, 0, 0)
		return nil, ErrEngineShutdown
	}
	defer e.inflight.Done()
	if len(req.UserIDs) == 0 {
		return map[string][]Recommendation{}, nil
	}

	start := time.Now()
	k, depth := e.resolveDepth(req.K)

	// Zero inherits the configured timeout; negative disables it.
	timeout := req.Timeout
	if timeout == 0 {
		timeout = e.config.BatchTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	snap := req.Snapshot
	if snap == nil {
		snap = NewSnapshot(req.Ratings, req.Catalog)
	}

	users := uniqueUserIDs(req.UserIDs)
	logger := e.batchLogger(ctx)

	if n := snap.InvalidBookCount(); n > 0 {
		logger.Warn().Int("count", n).Err(snap.InvalidBooks()).Msg("skipping malformed catalog books")
	}

	// Buffered so workers never block on a batch that has already given up.
	outcomes := make(chan userOutcome, len(users))

	for _, userID := range users {
		uid := userID
		err := e.pool.submit(ctx, func() {
			outcomes <- e.computeUser(ctx, e.cache, snap, uid, k, depth, req.Filters)
		})
		if err != nil {
			return nil, e.abortBatch(ctx, logger, start, timeout)
		}
	}

	result := make(map[string][]Recommendation, len(users))
	failed := 0
	for range users {
		select {
		case out := <-outcomes:
			if out.err != nil {
				failed++
				logger.Warn().Str("user_id", out.userID).Err(out.err).Msg("user recommendation failed")
				result[out.userID] = []Recommendation{}
				continue
			}
			result[out.userID] = out.recs
		case <-ctx.Done():
			return nil, e.abortBatch(ctx, logger, start, timeout)
		}
	}

	// Workers that saw a dead context report it as a user failure.
	if ctx.Err() != nil {
		return nil, e.abortBatch(ctx, logger, start, timeout)
	}

	elapsed := time.Since(start)
	succeeded := len(users) - failed
	metrics.RecordBatch(metrics.OutcomeSuccess, elapsed, succeeded, failed)
	metrics.UpdateCacheEntries(e.cache.Len())

	logger.Info().
		Int("users", len(users)).
		Int("successful", succeeded).
		Int("failed", failed).
		Float64("total_ms", durationMs(elapsed)).
		Float64("avg_ms_per_user", durationMs(elapsed)/float64(len(users))).
		Msg("batch recommendations complete")

	return result, nil
}

// abortBatch logs and classifies a batch that ran out of time or was canceled.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) abortBatch(ctx context.Context, logger zerolog.Logger, start time.Time, timeout time.Duration) error {
	elapsed := time.Since(start)
	cause := ctx.Err()

	if errors.Is(cause, context.DeadlineExceeded) {
		metrics.RecordBatch(metrics.OutcomeTimeout, elapsed, 0, 0)
		logger.Warn().
			Dur("timeout", timeout).
			Float64("elapsed_ms", durationMs(elapsed)).
			Msg("batch recommendations timed out")
		return fmt.Errorf("%w after %v: %w", ErrTimeoutExceeded, elapsed.Round(time.Millisecond), cause)
	}

	logger.Warn().Err(cause).Msg("batch recommendations canceled")
	return fmt.Errorf("batch canceled: %w", cause)
}

// computeUser runs one user's cache lookup, scoring, filtering and formatting.
// Panics are recovered into a UserError.
func (e *Engine) computeUser(ctx context.Context, c *Cache, snap *Snapshot, userID string, k, depth int, filters []Filter) (out userOutcome) {
	out.userID = userID

	defer func() {
		if r := recover(); r != nil {
			out = userOutcome{userID: userID, err: &UserError{UserID: userID, Err: fmt.Errorf("panic: %v", r)}}
		}
	}()

	// Nothing reads the outcome once the batch has given up.
	if err := ctx.Err(); err != nil {
		out.err = err
		return out
	}

	metrics.TrackActiveWorker(true)
	defer metrics.TrackActiveWorker(false)

	scored, hit, err := c.GetOrCompute(snap.cacheKey(userID, depth), func() ([]ScoredBook, error) {
		return snap.Score(userID, depth)
	})
	if err != nil {
		out.err = &UserError{UserID: userID, Err: err}
		return out
	}
	metrics.RecordCacheLookup(hit)

	scored, err = applyFilters(snap, scored, filters)
	if err != nil {
		out.err = &UserError{UserID: userID, Err: err}
		return out
	}

	out.recs = formatRecommendations(scored, k)
	return out
}

// resolveDepth returns the effective k and the ranking depth to compute and cache.
func (e *Engine) resolveDepth(requested int) (k, depth int) {
	k = requested
	if k <= 0 {
		k = e.config.DefaultK
	}
	return k, max(k, e.config.ScoreDepth)
}

// batchLogger returns the engine logger tagged with the context's batch ID.
func (e *Engine) batchLogger(ctx context.Context) zerolog.Logger {
	if id := logging.BatchIDFromContext(ctx); id != "" {
		return e.logger.With().Str("batch_id", id).Logger()
	}
	return e.logger
}

// PerformanceMetrics returns cache and engine counters.
func (e *Engine) PerformanceMetrics() PerformanceMetrics {
	stats := e.cache.Stats()
	return PerformanceMetrics{
		CacheHits:     stats.Hits,
		CacheMisses:   stats.Misses,
		CacheSize:     stats.Size,
		CacheMaxSize:  stats.MaxSize,
		HitRatio:      stats.HitRatio(),
		Workers:       e.config.Workers,
		TotalRequests: stats.Hits + stats.Misses,
		EngineStatus:  e.Status(),
	}
}

// HealthCheck reports "healthy" while running and "shutdown" afterwards.
func (e *Engine) HealthCheck() Health {
	status := "healthy"
	if e.Status() == StatusShutdown {
		status = "shutdown"
	}
	return Health{
		Status:             status,
		Workers:            e.config.Workers,
		CacheEffectiveness: e.cache.Stats().HitRatio(),
		Timestamp:          time.Now(),
	}
}

// CacheStats returns the cache counters.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// ClearCache drops all cached rankings. Counters are kept.
func (e *Engine) ClearCache() {
	e.cache.Clear()
	metrics.UpdateCacheEntries(0)
	e.logger.Info().Msg("recommendation cache cleared")
}

// Status returns the lifecycle state.
func (e *Engine) Status() EngineStatus {
	if e.closed.Load() {
		return StatusShutdown
	}
	return StatusRunning
}

// Workers returns the worker pool size.
func (e *Engine) Workers() int {
	return e.config.Workers
}

// GetConfig returns a copy of the engine configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// Shutdown rejects new batches, waits for running ones, stops the worker
// pool and moves the engine to its terminal state. It is idempotent, and
// concurrent callers all return once the pool is stopped. Status and
// HealthCheck report shutdown as soon as it begins.
func (e *Engine) Shutdown() {
	e.stopOnce.Do(func() {
		e.admit.Lock()
		e.closed.Store(true)
		e.admit.Unlock()

		e.inflight.Wait()
		e.pool.close()
		e.logger.Info().Msg("recommendation engine shut down")
	})
}

// enter admits a batch unless the engine is shutting down. Admitted
// batches must call inflight.Done.
func (e *Engine) enter() bool {
	e.admit.Lock()
	defer e.admit.Unlock()
	if e.closed.Load() {
		return false
	}
	e.inflight.Add(1)
	return true
}

// uniqueUserIDs drops repeated IDs, keeping first-seen order.
func uniqueUserIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
