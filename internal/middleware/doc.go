// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

/*
Package middleware provides HTTP middleware for the ops router.

PrometheusMetrics records request counts, latency and in-flight requests
labeled by the matched chi route pattern, so /recommendations/{userID}
is one series regardless of the user. AccessLog writes one structured
log line per request through the logger stored in the request context.

Both are plain func(http.Handler) http.Handler and are installed with
chi's Use:

	r := chi.NewRouter()
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)
*/
package middleware
