// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookreco/internal/logging"
	"github.com/tomtom215/bookreco/internal/middleware"
	"github.com/tomtom215/bookreco/internal/recommend"
)

// Engine is the part of the recommendation engine the handlers use.
type Engine interface {
	RecommendBatch(ctx context.Context, req recommend.BatchRequest) (map[string][]recommend.Recommendation, error)
	HealthCheck() recommend.Health
	PerformanceMetrics() recommend.PerformanceMetrics
}

// ReportSource exposes the latest scheduled report.
type ReportSource interface {
	LastReport() *recommend.BatchReport
}

// RequestLoader returns a batch request over the current dataset.
type RequestLoader func(ctx context.Context) (recommend.BatchRequest, error)

// RouterConfig wires the handlers to their dependencies.
type RouterConfig struct {
	Engine         Engine
	Reports        ReportSource
	Load           RequestLoader
	MetricsEnabled bool
	Logger         zerolog.Logger
}

// Handler serves the ops endpoints.
type Handler struct {
	engine  Engine
	reports ReportSource
	load    RequestLoader
	logger  zerolog.Logger
}

// NewRouter builds the Chi router for serve mode.
//
//nolint:gocritic // cfg passed by value; it is read once
func NewRouter(cfg RouterConfig) http.Handler {
	h := &Handler{
		engine:  cfg.Engine,
		reports: cfg.Reports,
		load:    cfg.Load,
		logger:  cfg.Logger.With().Str("component", "api").Logger(),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(BatchIDWithLogging(h.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)

	r.Get("/healthz", h.Health)
	r.Get("/stats", h.Stats)
	r.Get("/report/latest", h.LatestReport)
	r.Get("/recommendations/{userID}", h.Recommendations)

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// BatchIDWithLogging tags each request context with a fresh batch ID and
// a logger carrying it and the chi request ID.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func BatchIDWithLogging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logging.ContextWithNewBatchID(r.Context())
			reqLogger := logger.With().
				Str("request_id", chimiddleware.GetReqID(ctx)).
				Str("batch_id", logging.BatchIDFromContext(ctx)).
				Logger()
			ctx = logging.ContextWithLogger(ctx, reqLogger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
