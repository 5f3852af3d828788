// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

// Package api provides the ops HTTP surface of serve mode on a Chi router.
//
// Routes:
//
//	GET /healthz                      engine health; 503 after shutdown
//	GET /stats                        cache and engine counters
//	GET /report/latest                most recent scheduled report; 404 before the first
//	GET /recommendations/{userID}?k=  one user's recommendations over the current dataset
//	GET /metrics                      Prometheus metrics, when enabled
package api
