// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookreco/internal/logging"
	"github.com/tomtom215/bookreco/internal/metrics"
)

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Use(AccessLog)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	})
	return r
}

func TestPrometheusMetrics(t *testing.T) {
	router := newTestRouter()

	t.Run("labels by route pattern", func(t *testing.T) {
		counter := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/items/{id}", "200")
		before := testutil.ToFloat64(counter)

		for _, id := range []string{"a", "b", "c"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
		}

		if got := testutil.ToFloat64(counter) - before; got != 3 {
			t.Errorf("requests recorded = %v, want 3", got)
		}
	})

	t.Run("captures error status", func(t *testing.T) {
		counter := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/items/{id}", "500")
		before := testutil.ToFloat64(counter)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/boom", nil))

		if got := testutil.ToFloat64(counter) - before; got != 1 {
			t.Errorf("500 requests recorded = %v, want 1", got)
		}
	})

	t.Run("in-flight gauge returns to baseline", func(t *testing.T) {
		before := testutil.ToFloat64(metrics.HTTPActiveRequests)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/x", nil))
		if got := testutil.ToFloat64(metrics.HTTPActiveRequests); got != before {
			t.Errorf("active requests = %v, want %v", got, before)
		}
	})
}

func TestStatusRecorder_FirstWriteWins(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, statusCode: http.StatusOK}

	sr.WriteHeader(http.StatusNotFound)
	sr.WriteHeader(http.StatusInternalServerError)

	if sr.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want 404", sr.statusCode)
	}
	if sr.Unwrap() != rec {
		t.Error("Unwrap() should return the wrapped writer")
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	handler := AccessLog(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req = req.WithContext(logging.ContextWithLogger(req.Context(), logger))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"status":503`, `"route":"unmatched"`, `"message":"request handled"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %s missing %s", out, want)
		}
	}
}
