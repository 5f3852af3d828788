// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultShutdownTimeout bounds graceful HTTP shutdown when none is given.
const DefaultShutdownTimeout = 10 * time.Second

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs an HTTPServer under supervision. Canceling the
// Serve context shuts the server down, waiting at most shutdownTimeout for
// in-flight requests.
type HTTPServerService struct {
	server          HTTPServer
	addr            string
	shutdownTimeout time.Duration
	logger          zerolog.Logger
}

// NewHTTPServerService wraps server. A non-positive shutdownTimeout uses
// DefaultShutdownTimeout. addr is used for logging only.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPServerService(server HTTPServer, addr string, shutdownTimeout time.Duration, logger zerolog.Logger) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	return &HTTPServerService{
		server:          server,
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
		logger:          logger.With().Str("service", "http").Logger(),
	}
}

// Serve implements suture.Service. http.ErrServerClosed is not an error.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	h.logger.Info().Str("addr", h.addr).Msg("ops http server listening")

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already canceled; shutdown needs its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh

		h.logger.Info().Msg("ops http server stopped")
		return ctx.Err()
	}
}

// String implements fmt.Stringer; suture uses it in log messages.
func (h *HTTPServerService) String() string {
	return "http-server"
}
