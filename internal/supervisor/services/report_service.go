// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/bookreco/internal/logging"
	"github.com/tomtom215/bookreco/internal/recommend"
)

// DefaultReportInterval is used when ReportServiceConfig.Interval is unset.
const DefaultReportInterval = 5 * time.Minute

// ReportGenerator produces batch reports; *recommend.Service satisfies it.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, req recommend.BatchRequest) (*recommend.BatchReport, error)
}

// RequestLoader supplies the batch to report on. It is called once per
// cycle so dataset changes are picked up.
type RequestLoader func(ctx context.Context) (recommend.BatchRequest, error)

// ReportServiceConfig holds configuration for the report service.
type ReportServiceConfig struct {
	// Interval between reports.
	// Default: 5m
	Interval time.Duration

	// SkipStartup disables the report generated when the service starts.
	SkipStartup bool
}

// ReportService regenerates the batch report on a ticker and keeps the latest one.
type ReportService struct {
	generator ReportGenerator
	load      RequestLoader
	config    ReportServiceConfig
	logger    zerolog.Logger

	mu   sync.RWMutex
	last *recommend.BatchReport
}

// NewReportService creates a report service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReportService(generator ReportGenerator, load RequestLoader, cfg ReportServiceConfig, logger zerolog.Logger) *ReportService {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultReportInterval
	}
	return &ReportService{
		generator: generator,
		load:      load,
		config:    cfg,
		logger:    logger.With().Str("service", "report").Logger(),
	}
}

// Serve implements suture.Service.
//
// A failed cycle is logged and retried on the next tick. If the engine has
// been shut down, Serve returns an error wrapping suture.ErrDoNotRestart.
func (s *ReportService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.config.Interval).
		Bool("report_on_startup", !s.config.SkipStartup).
		Msg("report service starting")

	if !s.config.SkipStartup {
		if err := s.runCycle(ctx); err != nil {
			if stop := s.handleCycleError(err); stop != nil {
				return stop
			}
		}
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("report service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				if stop := s.handleCycleError(err); stop != nil {
					return stop
				}
			}
		}
	}
}

// runCycle loads the batch and generates one report.
func (s *ReportService) runCycle(ctx context.Context) error {
	ctx = logging.ContextWithNewBatchID(ctx)

	req, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("load batch: %w", err)
	}

	report, err := s.generator.GenerateReport(ctx, req)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	s.logger.Info().
		Str("batch_id", report.BatchID).
		Int("users", report.UsersProcessed).
		Int("recommendations", report.TotalRecommendations).
		Float64("avg_score", report.QualityMetrics.AverageScore).
		Float64("cache_hit_ratio", report.SystemMetrics.CacheHitRatio).
		Msg("scheduled report complete")
	return nil
}

// handleCycleError logs err and returns a non-nil error only when the
// service should stop.
func (s *ReportService) handleCycleError(err error) error {
	if errors.Is(err, recommend.ErrEngineShutdown) {
		s.logger.Warn().Msg("engine shut down, stopping report service")
		return fmt.Errorf("report service stopped: %w: %w", err, suture.ErrDoNotRestart)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	s.logger.Warn().Err(err).Msg("scheduled report failed")
	return nil
}

// LastReport returns the most recent report, or nil before the first success.
func (s *ReportService) LastReport() *recommend.BatchReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// String implements fmt.Stringer.
func (s *ReportService) String() string {
	return "report-service"
}
