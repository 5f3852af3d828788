// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

// Package recommend implements content-based book recommendations computed
// in batches over a bounded worker pool.
//
// # Scoring
//
// A user's profile is built from their ratings: authors and genres of books
// rated 4 or higher are preferred, and every rated book is excluded from the
// candidates. Each remaining catalog book scores
//
//	similarity = (2.0 if author preferred + 1.5 if genre preferred) / 3.5
//	score      = similarity*0.7 + (rating/5)*0.3
//
// Candidates are ranked by descending score; ties keep catalog order.
//
// # Caching
//
// Rankings are memoized in an LRU cache keyed by user ID, a content
// fingerprint of the ratings and catalog, and the ranking depth. Two batches
// over equal data share entries even when the slices are distinct. Concurrent
// requests for the same key compute once.
//
// # Batches
//
// RecommendBatch fans users out to the engine's workers. A failing user
// receives an empty list; the batch fails only when the engine is shut down,
// the timeout elapses, or the context is canceled, and in those cases no
// partial results are returned. Shutdown is terminal and idempotent.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), nil, logger)
//	if err != nil {
//	    return err
//	}
//	defer engine.Shutdown()
//
//	recs, err := engine.RecommendBatch(ctx, recommend.BatchRequest{
//	    UserIDs: []string{"u1", "u2"},
//	    Ratings: ratings,
//	    Catalog: catalog,
//	    K:       5,
//	})
//
// Service adds report generation over the same engine, and Benchmark
// compares a parallel batch with a serial recomputation.
package recommend
