// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	// Default: 5
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay in seconds.
	// Default: 30
	FailureDecay float64

	// FailureBackoff is the duration to wait when threshold is exceeded.
	// Default: 15s
	FailureBackoff time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's built-in defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree is the two-layer supervisor hierarchy: engine services and API services.
type Tree struct {
	root   *suture.Supervisor
	engine *suture.Supervisor
	api    *suture.Supervisor
	logger *slog.Logger
	config TreeConfig
}

// NewTree creates a supervisor tree. Zero config fields take their defaults.
func NewTree(logger *slog.Logger, config TreeConfig) (*Tree, error) {
	defaults := DefaultTreeConfig()
	if config.FailureThreshold == 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.FailureDecay == 0 {
		config.FailureDecay = defaults.FailureDecay
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = defaults.FailureBackoff
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}

	// MustHook has a pointer receiver.
	handler := &sutureslog.Handler{Logger: logger}

	rootSpec := suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	// Children inherit the root's EventHook when added.
	childSpec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	root := suture.New("bookreco", rootSpec)
	engine := suture.New("engine-layer", childSpec)
	api := suture.New("api-layer", childSpec)

	root.Add(engine)
	root.Add(api)

	return &Tree{
		root:   root,
		engine: engine,
		api:    api,
		logger: logger,
		config: config,
	}, nil
}

// Root returns the root supervisor.
func (t *Tree) Root() *suture.Supervisor {
	return t.root
}

// AddEngineService adds a service to the engine layer, e.g. the report loop.
func (t *Tree) AddEngineService(svc suture.Service) suture.ServiceToken {
	return t.engine.Add(svc)
}

// AddAPIService adds a service to the API layer, e.g. the ops HTTP server.
func (t *Tree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

// Serve starts the tree and blocks until ctx is canceled.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground starts the tree in a goroutine. The channel receives the
// result when the tree stops.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that did not stop within the
// shutdown timeout.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
