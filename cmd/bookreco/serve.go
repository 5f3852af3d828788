// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookreco/internal/api"
	"github.com/tomtom215/bookreco/internal/config"
	"github.com/tomtom215/bookreco/internal/logging"
	"github.com/tomtom215/bookreco/internal/recommend"
	"github.com/tomtom215/bookreco/internal/supervisor"
	"github.com/tomtom215/bookreco/internal/supervisor/services"
)

// runServe runs the supervisor tree until ctx is canceled, then shuts the
// engine down.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func runServe(ctx context.Context, cfg *config.Config, load func(context.Context) (recommend.BatchRequest, error), logger zerolog.Logger) error {
	engine, err := recommend.NewEngine(cfg.ToEngineConfig(), nil, logger)
	if err != nil {
		return err
	}
	svc := recommend.NewService(engine, logger)
	defer svc.Shutdown()

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout + 5*time.Second
	tree, err := supervisor.NewTree(logging.NewSlogLogger(logger.With().Str("component", "supervisor").Logger()), treeCfg)
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	reports := services.NewReportService(svc, load, services.ReportServiceConfig{
		Interval: cfg.Server.ReportInterval,
	}, logger)
	tree.AddEngineService(reports)

	router := api.NewRouter(api.RouterConfig{
		Engine:         engine,
		Reports:        reports,
		Load:           load,
		MetricsEnabled: cfg.Server.MetricsEnabled,
		Logger:         logger,
	})
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout, logger))

	logger.Info().
		Str("addr", server.Addr).
		Dur("report_interval", cfg.Server.ReportInterval).
		Bool("metrics", cfg.Server.MetricsEnabled).
		Msg("starting supervisor tree")

	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logger.Warn().Int("count", len(unstopped)).Msg("services failed to stop within timeout")
		for _, u := range unstopped {
			logger.Warn().Str("service", u.Name).Msg("service failed to stop")
		}
	}

	logger.Info().Msg("bookreco stopped")
	return nil
}
