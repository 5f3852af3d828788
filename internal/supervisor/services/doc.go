// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

// Package services adapts bookreco components to suture.Service.
//
//   - ReportService regenerates the batch report on an interval.
//   - HTTPServerService runs the ops HTTP server with graceful shutdown.
//
// Each service returns ctx.Err() when its context is canceled and a
// wrapped error on failure, which tells suture to restart it.
package services
