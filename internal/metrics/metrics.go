// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

// Package metrics exposes Prometheus instrumentation for the recommendation
// engine: batch latency and outcomes, per-user results, worker pool usage,
// cache efficiency and benchmark runs. All collectors are registered with
// the default registry via promauto and are served by the ops HTTP router.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Batch outcomes used as label values.
const (
	OutcomeSuccess  = "success"
	OutcomeTimeout  = "timeout"
	OutcomeShutdown = "shutdown"
)

var (
	// Batch Metrics
	BatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookreco_batch_duration_seconds",
			Help:    "Duration of recommendation batches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	BatchUsers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreco_batch_users_total",
			Help: "Total number of users processed in batches by per-user outcome",
		},
		[]string{"outcome"}, // "succeeded", "failed"
	)

	BatchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreco_batch_errors_total",
			Help: "Total number of batches that failed as a whole",
		},
		[]string{"reason"}, // "timeout", "shutdown"
	)

	// Worker Pool Metrics
	WorkerPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookreco_worker_pool_size",
			Help: "Configured number of scoring workers",
		},
	)

	ActiveWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookreco_active_workers",
			Help: "Number of workers currently scoring a user",
		},
	)

	// Cache Metrics
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreco_cache_requests_total",
			Help: "Total number of recommendation cache lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookreco_cache_entries",
			Help: "Current number of entries in the recommendation cache",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookreco_cache_evictions_total",
			Help: "Total number of LRU evictions from the recommendation cache",
		},
	)

	// Report & Benchmark Metrics
	ReportsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookreco_reports_generated_total",
			Help: "Total number of batch reports generated",
		},
	)

	BenchmarkRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreco_benchmark_runs_total",
			Help: "Total number of benchmark runs by status",
		},
		[]string{"status"}, // "completed", "skipped", "failed"
	)

	BenchmarkSpeedup = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookreco_benchmark_speedup",
			Help: "Serial/parallel speedup of the most recent completed benchmark",
		},
	)

	// HTTP Metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookreco_http_requests_total",
			Help: "Total number of ops HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookreco_http_request_duration_seconds",
			Help:    "Duration of ops HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookreco_http_active_requests",
			Help: "Number of ops HTTP requests in flight",
		},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookreco_info",
			Help: "Application build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordBatch records a finished batch. succeeded and failed count users.
func RecordBatch(outcome string, duration time.Duration, succeeded, failed int) {
	BatchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if outcome != OutcomeSuccess {
		BatchErrors.WithLabelValues(outcome).Inc()
		return
	}
	BatchUsers.WithLabelValues("succeeded").Add(float64(succeeded))
	BatchUsers.WithLabelValues("failed").Add(float64(failed))
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheRequests.WithLabelValues("hit").Inc()
		return
	}
	CacheRequests.WithLabelValues("miss").Inc()
}

// RecordCacheEviction records a single LRU eviction.
func RecordCacheEviction() {
	CacheEvictions.Inc()
}

// UpdateCacheEntries sets the cache size gauge.
func UpdateCacheEntries(size int) {
	CacheEntries.Set(float64(size))
}

// TrackActiveWorker increments or decrements the busy worker gauge.
func TrackActiveWorker(inc bool) {
	if inc {
		ActiveWorkers.Inc()
	} else {
		ActiveWorkers.Dec()
	}
}

// SetWorkerPoolSize records the configured worker count.
func SetWorkerPoolSize(n int) {
	WorkerPoolSize.Set(float64(n))
}

// RecordReport records a generated batch report.
func RecordReport() {
	ReportsGenerated.Inc()
}

// RecordBenchmark records a benchmark run; speedup is kept only for completed runs.
func RecordBenchmark(status string, speedup float64) {
	BenchmarkRuns.WithLabelValues(status).Inc()
	if status == "completed" {
		BenchmarkSpeedup.Set(speedup)
	}
}

// RecordHTTPRequest records a finished HTTP request. route is the matched
// route pattern, not the raw path.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}
