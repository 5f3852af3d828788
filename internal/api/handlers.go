// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/bookreco/internal/logging"
	"github.com/tomtom215/bookreco/internal/recommend"
)

// maxK caps the k query parameter.
const maxK = 100

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// UserRecommendations is the body of GET /recommendations/{userID}.
type UserRecommendations struct {
	UserID          string                     `json:"user_id"`
	K               int                        `json:"k,omitempty"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// writeJSON writes a JSON response with proper headers.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // HTTP response write errors are not recoverable
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// Health reports engine health: 200 while running, 503 after shutdown.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	health := h.engine.HealthCheck()
	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// Stats returns cache and engine counters.
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.PerformanceMetrics())
}

// LatestReport returns the most recent scheduled report.
func (h *Handler) LatestReport(w http.ResponseWriter, _ *http.Request) {
	if h.reports == nil {
		writeError(w, http.StatusNotFound, "reports are not enabled")
		return
	}
	report := h.reports.LastReport()
	if report == nil {
		writeError(w, http.StatusNotFound, "no report generated yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Recommendations computes one user's recommendations over the current dataset.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.LoggerFromContext(ctx)
	userID := chi.URLParam(r, "userID")

	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxK {
			writeError(w, http.StatusBadRequest, "k must be an integer between 1 and "+strconv.Itoa(maxK))
			return
		}
		k = parsed
	}

	req, err := h.load(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load dataset")
		writeError(w, http.StatusServiceUnavailable, "dataset unavailable")
		return
	}
	req.UserIDs = []string{userID}
	req.K = k

	recs, err := h.engine.RecommendBatch(ctx, req)
	switch {
	case errors.Is(err, recommend.ErrEngineShutdown):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, recommend.ErrTimeoutExceeded):
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	case err != nil:
		logger.Error().Err(err).Str("user_id", userID).Msg("recommendation request failed")
		writeError(w, http.StatusInternalServerError, "recommendation failed")
		return
	}

	writeJSON(w, http.StatusOK, UserRecommendations{
		UserID:          userID,
		K:               k,
		Recommendations: recs[userID],
	})
}
