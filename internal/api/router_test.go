// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookreco/internal/recommend"
)

type staticReports struct {
	report *recommend.BatchReport
}

func (s staticReports) LastReport() *recommend.BatchReport {
	return s.report
}

func testLoader(context.Context) (recommend.BatchRequest, error) {
	return recommend.BatchRequest{
		Ratings: []recommend.Rating{{UserID: "u1", BookID: "1", Value: 5}},
		Catalog: []recommend.Book{
			{ID: "1", Title: "A", Author: "Smith", Genre: "Sci-Fi", Year: 2020, Rating: 4.5},
			{ID: "2", Title: "B", Author: "Jones", Genre: "Fantasy", Year: 2019, Rating: 4.0},
			{ID: "3", Title: "C", Author: "Smith", Genre: "Sci-Fi", Year: 2021, Rating: 3.0},
		},
	}, nil
}

func newTestRouter(t *testing.T, reports ReportSource, load RequestLoader) (http.Handler, *recommend.Engine) {
	t.Helper()
	engine, err := recommend.NewEngine(nil, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(engine.Shutdown)

	if load == nil {
		load = testLoader
	}
	return NewRouter(RouterConfig{
		Engine:         engine,
		Reports:        reports,
		Load:           load,
		MetricsEnabled: true,
		Logger:         zerolog.Nop(),
	}), engine
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	router, engine := newTestRouter(t, nil, nil)

	rec := get(t, router, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var health recommend.Health
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", health.Status)
	}

	engine.Shutdown()
	if rec := get(t, router, "/healthz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status after shutdown = %d, want 503", rec.Code)
	}
}

func TestRecommendations(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	rec := get(t, router, "/recommendations/u1?k=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body UserRecommendations
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.UserID != "u1" || body.K != 1 || len(body.Recommendations) != 1 {
		t.Fatalf("body = %+v", body)
	}
	// Smith and Sci-Fi are preferred, so book 3 outranks book 2.
	if body.Recommendations[0].BookID != "3" {
		t.Errorf("top book = %s, want 3", body.Recommendations[0].BookID)
	}

	// Unknown users get popularity-only rankings.
	rec = get(t, router, "/recommendations/nobody")
	if rec.Code != http.StatusOK {
		t.Errorf("unknown user status = %d", rec.Code)
	}
}

func TestRecommendations_Errors(t *testing.T) {
	t.Run("bad k", func(t *testing.T) {
		router, _ := newTestRouter(t, nil, nil)
		for _, k := range []string{"0", "-1", "abc", "101"} {
			if rec := get(t, router, "/recommendations/u1?k="+k); rec.Code != http.StatusBadRequest {
				t.Errorf("k=%s: status = %d, want 400", k, rec.Code)
			}
		}
	})

	t.Run("dataset unavailable", func(t *testing.T) {
		failing := func(context.Context) (recommend.BatchRequest, error) {
			return recommend.BatchRequest{}, errors.New("disk gone")
		}
		router, _ := newTestRouter(t, nil, failing)
		rec := get(t, router, "/recommendations/u1")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "disk gone") {
			t.Error("internal error leaked to client")
		}
	})

	t.Run("engine shut down", func(t *testing.T) {
		router, engine := newTestRouter(t, nil, nil)
		engine.Shutdown()
		if rec := get(t, router, "/recommendations/u1"); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})
}

func TestStats(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	get(t, router, "/recommendations/u1")
	get(t, router, "/recommendations/u1")

	rec := get(t, router, "/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var pm recommend.PerformanceMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &pm); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pm.CacheHits != 1 || pm.CacheMisses != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", pm.CacheHits, pm.CacheMisses)
	}
}

func TestLatestReport(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		router, _ := newTestRouter(t, nil, nil)
		if rec := get(t, router, "/report/latest"); rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("none yet", func(t *testing.T) {
		router, _ := newTestRouter(t, staticReports{}, nil)
		if rec := get(t, router, "/report/latest"); rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("available", func(t *testing.T) {
		router, _ := newTestRouter(t, staticReports{report: &recommend.BatchReport{BatchID: "abc12345", UsersProcessed: 7}}, nil)
		rec := get(t, router, "/report/latest")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"batch_id":"abc12345"`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)
	get(t, router, "/recommendations/u1")

	rec := get(t, router, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "bookreco_") {
		t.Error("metrics output has no bookreco_ series")
	}

	disabled := NewRouter(RouterConfig{Engine: nil, Load: testLoader, Logger: zerolog.Nop()})
	if rec := get(t, disabled, "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("disabled metrics status = %d, want 404", rec.Code)
	}
}
