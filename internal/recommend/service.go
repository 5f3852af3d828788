// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookreco/internal/cache"
	"github.com/tomtom215/bookreco/internal/logging"
	"github.com/tomtom215/bookreco/internal/metrics"
)

// Service wraps an Engine with report generation and a performance history.
type Service struct {
	engine *Engine
	logger zerolog.Logger

	historyMu sync.RWMutex
	history   []BatchReport
}

// NewService creates a service over engine. The service takes ownership of
// the engine's lifecycle through Shutdown.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(engine *Engine, logger zerolog.Logger) *Service {
	return &Service{
		engine: engine,
		logger: logger.With().Str("component", "report").Logger(),
	}
}

// GenerateReport runs RecommendBatch and aggregates user and quality
// statistics over its results. The report is appended to the history.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (s *Service) GenerateReport(ctx context.Context, req BatchRequest) (*BatchReport, error) {
	batchID := logging.BatchIDFromContext(ctx)
	if batchID == "" {
		batchID = logging.GenerateBatchID()
		ctx = logging.ContextWithBatchID(ctx, batchID)
	}

	if req.Snapshot == nil {
		req.Snapshot = NewSnapshot(req.Ratings, req.Catalog)
	}

	start := time.Now()
	recs, err := s.engine.RecommendBatch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}
	elapsed := time.Since(start)

	users := uniqueUserIDs(req.UserIDs)
	k, _ := s.engine.resolveDepth(req.K)
	perf := s.engine.PerformanceMetrics()

	report := &BatchReport{
		BatchID:                batchID,
		Timestamp:              start.UTC(),
		TotalProcessingTime:    elapsed,
		TotalProcessingTimeMs:  durationMs(elapsed),
		UsersProcessed:         len(users),
		RecommendationsPerUser: k,
		TotalRecommendations:   countRecommendations(recs),
		Recommendations:        recs,
		PerformanceMetrics:     perf,
		UserStatistics:         summarizeUsers(users, req.Snapshot),
		QualityMetrics:         analyzeQuality(recs),
		SystemMetrics: SystemMetrics{
			CacheHitRatio: perf.HitRatio,
			Workers:       perf.Workers,
		},
	}
	if len(users) > 0 {
		report.SystemMetrics.AverageUserTimeMs = report.TotalProcessingTimeMs / float64(len(users))
	}

	s.historyMu.Lock()
	s.history = append(s.history, *report)
	s.historyMu.Unlock()
	metrics.RecordReport()

	s.logger.Info().
		Str("batch_id", batchID).
		Int("users", report.UsersProcessed).
		Int("recommendations", report.TotalRecommendations).
		Float64("success_rate", report.QualityMetrics.SuccessRate).
		Float64("total_ms", report.TotalProcessingTimeMs).
		Msg("batch report generated")

	return report, nil
}

// History returns a copy of all reports generated since the last ClearHistory.
func (s *Service) History() []BatchReport {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	out := make([]BatchReport, len(s.history))
	copy(out, s.history)
	return out
}

// ClearHistory empties the performance history.
func (s *Service) ClearHistory() {
	s.historyMu.Lock()
	s.history = nil
	s.historyMu.Unlock()
}

// Engine returns the underlying engine.
func (s *Service) Engine() *Engine {
	return s.engine
}

// CacheStats returns the engine's cache counters.
func (s *Service) CacheStats() cache.Stats {
	return s.engine.CacheStats()
}

// ClearCache drops cached rankings; counters are kept.
func (s *Service) ClearCache() {
	s.engine.ClearCache()
}

// PerformanceMetrics returns the engine's counters.
func (s *Service) PerformanceMetrics() PerformanceMetrics {
	return s.engine.PerformanceMetrics()
}

// HealthCheck returns the engine's health.
func (s *Service) HealthCheck() Health {
	return s.engine.HealthCheck()
}

// Shutdown shuts the engine down. It is idempotent.
func (s *Service) Shutdown() {
	s.engine.Shutdown()
}
