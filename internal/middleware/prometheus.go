// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/bookreco/internal/logging"
	"github.com/tomtom215/bookreco/internal/metrics"
)

// unmatchedRoute labels requests that matched no route.
const unmatchedRoute = "unmatched"

// PrometheusMetrics records request metrics labeled by route pattern.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		metrics.RecordHTTPRequest(
			r.Method,
			routePattern(r),
			strconv.Itoa(wrapper.statusCode),
			time.Since(start),
		)
	})
}

// AccessLog logs each completed request at debug level, or warn for 5xx.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger := logging.LoggerFromContext(r.Context())
		event := logger.Debug()
		if wrapper.statusCode >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Str("method", r.Method).
			Str("route", routePattern(r)).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

// routePattern returns the chi route pattern once routing has completed.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return unmatchedRoute
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

// WriteHeader captures the first status code written.
func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
