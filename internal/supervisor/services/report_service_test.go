// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/bookreco/internal/recommend"
)

func newReportTestService(t *testing.T) *recommend.Service {
	t.Helper()
	engine, err := recommend.NewEngine(nil, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	svc := recommend.NewService(engine, zerolog.Nop())
	t.Cleanup(svc.Shutdown)
	return svc
}

func staticLoader(calls *atomic.Int32) RequestLoader {
	return func(context.Context) (recommend.BatchRequest, error) {
		calls.Add(1)
		return recommend.BatchRequest{
			UserIDs: []string{"u1", "u2"},
			Ratings: []recommend.Rating{
				{UserID: "u1", BookID: "1", Value: 5},
				{UserID: "u2", BookID: "2", Value: 4},
			},
			Catalog: []recommend.Book{
				{ID: "1", Author: "A", Genre: "Sci-Fi", Rating: 4},
				{ID: "2", Author: "B", Genre: "Fantasy", Rating: 3},
				{ID: "3", Author: "A", Genre: "Fantasy", Rating: 5},
			},
			K: 2,
		}, nil
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestReportService_Interface(t *testing.T) {
	var _ suture.Service = (*ReportService)(nil)
	var _ ReportGenerator = (*recommend.Service)(nil)
}

func TestNewReportService_DefaultInterval(t *testing.T) {
	svc := NewReportService(nil, nil, ReportServiceConfig{}, zerolog.Nop())
	if svc.config.Interval != DefaultReportInterval {
		t.Errorf("Interval = %v, want %v", svc.config.Interval, DefaultReportInterval)
	}
	if svc.String() != "report-service" {
		t.Errorf("String() = %q", svc.String())
	}
	if svc.LastReport() != nil {
		t.Error("LastReport() before first cycle should be nil")
	}
}

func TestReportService_Serve(t *testing.T) {
	t.Run("reports on startup and every tick", func(t *testing.T) {
		gen := newReportTestService(t)
		var calls atomic.Int32
		svc := NewReportService(gen, staticLoader(&calls), ReportServiceConfig{Interval: 20 * time.Millisecond}, zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		waitFor(t, func() bool { return calls.Load() >= 3 })
		cancel()

		if err := <-errCh; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}

		last := svc.LastReport()
		if last == nil {
			t.Fatal("LastReport() = nil")
		}
		if last.UsersProcessed != 2 || last.TotalRecommendations != 4 {
			t.Errorf("last report users/recs = %d/%d, want 2/4", last.UsersProcessed, last.TotalRecommendations)
		}
		if len(gen.History()) < 3 {
			t.Errorf("history = %d reports, want >= 3", len(gen.History()))
		}
	})

	t.Run("skip startup waits for first tick", func(t *testing.T) {
		gen := newReportTestService(t)
		var calls atomic.Int32
		svc := NewReportService(gen, staticLoader(&calls), ReportServiceConfig{Interval: time.Hour, SkipStartup: true}, zerolog.Nop())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Serve() = %v, want DeadlineExceeded", err)
		}
		if calls.Load() != 0 {
			t.Errorf("loader called %d times, want 0", calls.Load())
		}
	})

	t.Run("load failures are retried", func(t *testing.T) {
		gen := newReportTestService(t)
		var calls atomic.Int32
		failing := func(context.Context) (recommend.BatchRequest, error) {
			calls.Add(1)
			return recommend.BatchRequest{}, errors.New("dataset unavailable")
		}
		svc := NewReportService(gen, failing, ReportServiceConfig{Interval: 10 * time.Millisecond}, zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		waitFor(t, func() bool { return calls.Load() >= 2 })
		cancel()
		<-errCh

		if svc.LastReport() != nil {
			t.Error("LastReport() set despite failures")
		}
	})

	t.Run("engine shutdown stops without restart", func(t *testing.T) {
		gen := newReportTestService(t)
		gen.Shutdown()

		var calls atomic.Int32
		svc := NewReportService(gen, staticLoader(&calls), ReportServiceConfig{Interval: time.Hour}, zerolog.Nop())

		err := svc.Serve(context.Background())
		if !errors.Is(err, suture.ErrDoNotRestart) {
			t.Errorf("Serve() = %v, want ErrDoNotRestart", err)
		}
		if !errors.Is(err, recommend.ErrEngineShutdown) {
			t.Errorf("Serve() = %v, want ErrEngineShutdown", err)
		}
	})
}
