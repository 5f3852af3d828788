// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package recommend

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func benchmarkDataset(users, books int) BatchRequest {
	genres := []string{"Sci-Fi", "Fantasy", "Mystery", "Romance", "History"}

	catalog := make([]Book, 0, books)
	for i := 0; i < books; i++ {
		catalog = append(catalog, Book{
			ID:     "b" + strconv.Itoa(i),
			Title:  "Book " + strconv.Itoa(i),
			Author: "Author " + strconv.Itoa(i%17),
			Genre:  genres[i%len(genres)],
			Year:   1950 + i%70,
			Rating: float64(i%50) / 10,
		})
	}

	ids := make([]string, 0, users)
	var ratings []Rating
	for u := 0; u < users; u++ {
		id := "user" + strconv.Itoa(u)
		ids = append(ids, id)
		for j := 0; j < 8; j++ {
			ratings = append(ratings, Rating{
				UserID: id,
				BookID: "b" + strconv.Itoa((u*7+j*13)%books),
				Value:  1 + (u+j)%5,
			})
		}
	}

	return BatchRequest{UserIDs: ids, Ratings: ratings, Catalog: catalog, K: 5}
}

func TestBenchmark(t *testing.T) {
	result, err := Benchmark(context.Background(), benchmarkDataset(20, 200), BenchmarkOptions{
		Workers: 4,
		Logger:  zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("Benchmark() error = %v", err)
	}

	if result.Status != BenchmarkCompleted {
		t.Errorf("Status = %q, want completed", result.Status)
	}
	if result.UsersProcessed != 20 || result.Workers != 4 {
		t.Errorf("users/workers = %d/%d, want 20/4", result.UsersProcessed, result.Workers)
	}
	if !result.ResultsConsistent {
		t.Error("parallel and serial passes disagree")
	}
	if result.Speedup <= 0 {
		t.Errorf("Speedup = %v, want > 0", result.Speedup)
	}
	if !approxEqual(result.Efficiency, result.Speedup/4) {
		t.Errorf("Efficiency = %v, want Speedup/4", result.Efficiency)
	}
	// The parallel pass starts cold.
	if result.CacheHitRatio != 0 {
		t.Errorf("CacheHitRatio = %v, want 0", result.CacheHitRatio)
	}
}

func TestBenchmark_SingleWorker(t *testing.T) {
	result, err := Benchmark(context.Background(), benchmarkDataset(3, 50), BenchmarkOptions{Workers: 1})
	if err != nil {
		t.Fatalf("Benchmark() error = %v", err)
	}
	if result.Workers != 1 || result.UsersProcessed != 3 {
		t.Errorf("result = %+v", result)
	}
	if !approxEqual(result.Efficiency, result.Speedup) {
		t.Errorf("Efficiency = %v, want Speedup with one worker", result.Efficiency)
	}
	if !result.ResultsConsistent {
		t.Error("results inconsistent")
	}
}

func TestBenchmark_NoUsers(t *testing.T) {
	result, err := Benchmark(context.Background(), BatchRequest{Catalog: testCatalog()}, BenchmarkOptions{})
	if err != nil {
		t.Fatalf("Benchmark() error = %v", err)
	}
	if result.Status != BenchmarkSkipped {
		t.Errorf("Status = %q, want skipped", result.Status)
	}
	if result.Workers != DefaultWorkers() {
		t.Errorf("Workers = %d, want default %d", result.Workers, DefaultWorkers())
	}
}

func TestBenchmark_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Benchmark(ctx, benchmarkDataset(5, 20), BenchmarkOptions{Workers: 2})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if result == nil || result.Status != BenchmarkFailed || result.Error == "" {
		t.Errorf("result = %+v, want failed with error", result)
	}
}

func TestBenchmark_UsesEngineConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 3
	cfg.DefaultK = 2
	cfg.ScoreDepth = 4
	cfg.CacheSize = 16

	req := benchmarkDataset(6, 40)
	req.K = 0

	result, err := Benchmark(context.Background(), req, BenchmarkOptions{Config: cfg, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("Benchmark() error = %v", err)
	}
	if result.Workers != 3 {
		t.Errorf("Workers = %d, want 3 from Config", result.Workers)
	}
	if result.K != 2 {
		t.Errorf("K = %d, want DefaultK 2 from Config", result.K)
	}
	if cfg.Workers != 3 || cfg.CacheSize != 16 {
		t.Errorf("caller config modified: %+v", cfg)
	}

	// Workers in the options override the config.
	result, err = Benchmark(context.Background(), req, BenchmarkOptions{Config: cfg, Workers: 1})
	if err != nil {
		t.Fatalf("Benchmark() error = %v", err)
	}
	if result.Workers != 1 || result.K != 2 {
		t.Errorf("workers/k = %d/%d, want 1/2", result.Workers, result.K)
	}
}

func TestBenchmark_LogsSerialUserFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	req := testRequest("u1", "u2")
	req.Filters = []Filter{FilterFunc(func(Book, float64) (bool, error) {
		return false, errors.New("filter exploded")
	})}

	result, err := Benchmark(context.Background(), req, BenchmarkOptions{Workers: 2, Logger: logger})
	if err != nil {
		t.Fatalf("Benchmark() error = %v", err)
	}
	if !result.ResultsConsistent {
		t.Error("both passes should yield empty lists")
	}

	var serial int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, `"message":"user recommendation failed"`) && strings.Contains(line, `"pass":"serial"`) {
			serial++
			if !strings.Contains(line, "filter exploded") {
				t.Errorf("log line missing cause: %s", line)
			}
		}
	}
	if serial != 2 {
		t.Errorf("serial failure log lines = %d, want 2\n%s", serial, buf.String())
	}
}

func TestSameResults(t *testing.T) {
	a := map[string][]Recommendation{"u": {{BookID: "1", Score: 0.5}}}
	b := map[string][]Recommendation{"u": {{BookID: "1", Score: 0.5}}}
	if !sameResults(a, b) {
		t.Error("equal maps reported different")
	}

	b["u"][0].Score = 0.6
	if sameResults(a, b) {
		t.Error("score difference not detected")
	}
	if sameResults(a, map[string][]Recommendation{"v": {{BookID: "1", Score: 0.5}}}) {
		t.Error("user difference not detected")
	}
}
