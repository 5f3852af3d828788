// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package recommend

import (
	"time"
)

// Book is an immutable catalog entry supplied by the dataset provider.
type Book struct {
	// ID is the unique book identifier.
	ID string `json:"id" yaml:"id" validate:"required"`

	// Title is the display title.
	Title string `json:"title" yaml:"title"`

	// Author is matched exactly against the user's preferred authors.
	Author string `json:"author" yaml:"author"`

	// Genre is matched exactly against the user's preferred genres.
	Genre string `json:"genre" yaml:"genre"`

	// Year is the publication year.
	Year int `json:"year" yaml:"year"`

	// Rating is the catalog-wide average rating in [0, 5].
	Rating float64 `json:"rating" yaml:"rating" validate:"gte=0,lte=5"`
}

// Rating is a single user's rating of a book.
type Rating struct {
	UserID string `json:"user_id" yaml:"user_id" validate:"required"`
	BookID string `json:"book_id" yaml:"book_id" validate:"required"`

	// Value is the star rating in [1, 5].
	Value int `json:"value" yaml:"value" validate:"gte=1,lte=5"`
}

// UserProfile is derived from one user's ratings for a single scoring call.
type UserProfile struct {
	// PreferredAuthors holds authors of books rated LikedThreshold or higher.
	PreferredAuthors map[string]struct{}

	// PreferredGenres holds genres of books rated LikedThreshold or higher.
	PreferredGenres map[string]struct{}

	// RatedBookIDs holds every book the user rated, at any value.
	RatedBookIDs map[string]struct{}
}

// ScoredBook is a ranked candidate produced by the scoring function.
// Slices of ScoredBook are what the recommendation cache stores.
type ScoredBook struct {
	BookID string  `json:"book_id"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Genre  string  `json:"genre"`
	Score  float64 `json:"score"`
}

// Recommendation is a formatted, annotated recommendation returned to callers.
type Recommendation struct {
	BookID string  `json:"book_id"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Genre  string  `json:"genre"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// BatchRequest describes one batch of users to score against a dataset.
type BatchRequest struct {
	// UserIDs to score. Duplicates are scored once. Empty yields an empty result.
	UserIDs []string

	// Ratings is the full rating dataset. Ignored when Snapshot is set.
	Ratings []Rating

	// Catalog is the full book catalog. Ignored when Snapshot is set.
	Catalog []Book

	// K is the number of recommendations per user; 0 uses Config.DefaultK.
	K int

	// Timeout bounds the whole batch. 0 uses Config.BatchTimeout; a negative
	// value disables the timeout even when one is configured.
	Timeout time.Duration

	// Filters are applied to the ranked candidates before the top-K cut.
	Filters []Filter

	// Snapshot is a prebuilt, fingerprinted view of Ratings and Catalog.
	// Set it to reuse one dataset across calls.
	Snapshot *Snapshot
}

// EngineStatus is the lifecycle state of an Engine.
type EngineStatus string

const (
	// StatusRunning accepts batches.
	StatusRunning EngineStatus = "running"

	// StatusShutdown is terminal; every call fails with ErrEngineShutdown.
	StatusShutdown EngineStatus = "shutdown"
)

// PerformanceMetrics is a snapshot of engine and cache counters.
type PerformanceMetrics struct {
	CacheHits     int64        `json:"cache_hits"`
	CacheMisses   int64        `json:"cache_misses"`
	CacheSize     int          `json:"cache_size"`
	CacheMaxSize  int          `json:"cache_max_size"`
	HitRatio      float64      `json:"hit_ratio"`
	Workers       int          `json:"workers"`
	TotalRequests int64        `json:"total_requests"`
	EngineStatus  EngineStatus `json:"engine_status"`
}

// Health is a coarse liveness summary.
type Health struct {
	Status             string    `json:"status"`
	Workers            int       `json:"workers"`
	CacheEffectiveness float64   `json:"cache_effectiveness"`
	Timestamp          time.Time `json:"timestamp"`
}
