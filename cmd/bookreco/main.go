// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

// Package main is the entry point for the bookreco command.
//
// bookreco scores every user in a ratings dataset against a book catalog
// and either prints a batch report, benchmarks serial against parallel
// scoring, or runs as a daemon that regenerates the report on a schedule
// and serves ops endpoints.
//
// # Modes
//
//	bookreco -mode report                  # print the batch report as JSON
//	bookreco -mode benchmark -workers 8    # print serial vs parallel timings
//	bookreco -mode serve                   # supervisor tree + HTTP until SIGINT/SIGTERM
//
// -users restricts the batch to a comma-separated subset and -k overrides
// the configured number of recommendations per user.
//
// # Configuration
//
// Settings are loaded via Koanf v2 (highest priority wins):
//   - Environment variables (DATASET_PATH, RECOMMEND_WORKERS, ...)
//   - Config file (CONFIG_PATH, ./config.yaml or /etc/bookreco/config.yaml)
//   - Built-in defaults
//
// DATASET_PATH (or dataset.path) must point at a .json or .yaml dataset.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookreco/internal/config"
	"github.com/tomtom215/bookreco/internal/dataset"
	"github.com/tomtom215/bookreco/internal/logging"
	"github.com/tomtom215/bookreco/internal/metrics"
	"github.com/tomtom215/bookreco/internal/recommend"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	modeReport    = "report"
	modeBenchmark = "benchmark"
	modeServe     = "serve"
)

type options struct {
	mode    string
	users   []string
	k       int
	workers int
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("bookreco", flag.ContinueOnError)
	mode := fs.String("mode", modeReport, "report, benchmark or serve")
	users := fs.String("users", "", "comma-separated user ids (default: every user in the dataset)")
	k := fs.Int("k", 0, "recommendations per user (default: RECOMMEND_DEFAULT_K)")
	workers := fs.Int("workers", 0, "worker count for benchmark mode (default: RECOMMEND_WORKERS)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts := &options{mode: *mode, users: splitUsers(*users), k: *k, workers: *workers}
	switch opts.mode {
	case modeReport, modeBenchmark, modeServe:
	default:
		return nil, fmt.Errorf("unknown mode %q", opts.mode)
	}
	if opts.k < 0 {
		return nil, fmt.Errorf("-k must not be negative, got %d", opts.k)
	}
	if opts.workers < 0 {
		return nil, fmt.Errorf("-workers must not be negative, got %d", opts.workers)
	}
	return opts, nil
}

func splitUsers(raw string) []string {
	var out []string
	for _, u := range strings.Split(raw, ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(cfg.ToLoggingConfig())
	metrics.SetAppInfo(version, runtime.Version())

	logger := logging.Logger()
	logger.Info().
		Str("version", version).
		Str("mode", opts.mode).
		Str("dataset", cfg.Dataset.Path).
		Msg("starting bookreco")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger, os.Stdout); err != nil {
		stop()
		logger.Fatal().Err(err).Str("mode", opts.mode).Msg("bookreco failed")
	}
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func run(ctx context.Context, cfg *config.Config, opts *options, logger zerolog.Logger, out io.Writer) error {
	loader, err := newLoader(cfg, opts)
	if err != nil {
		return err
	}

	switch opts.mode {
	case modeBenchmark:
		return runBenchmark(ctx, cfg, opts, loader, logger, out)
	case modeServe:
		return runServe(ctx, cfg, loader, logger)
	default:
		return runReport(ctx, cfg, loader, logger, out)
	}
}

// newLoader returns a function that reads the dataset and builds the batch
// request with the configured filters attached. The dataset is re-read on
// every call.
func newLoader(cfg *config.Config, opts *options) (func(context.Context) (recommend.BatchRequest, error), error) {
	if cfg.Dataset.Path == "" {
		return nil, errors.New("no dataset configured: set DATASET_PATH or dataset.path")
	}
	filters, err := recommend.CompileFilters(cfg.Recommend.Filters)
	if err != nil {
		return nil, fmt.Errorf("compile filters: %w", err)
	}

	return func(context.Context) (recommend.BatchRequest, error) {
		ds, err := dataset.Load(cfg.Dataset.Path)
		if err != nil {
			return recommend.BatchRequest{}, err
		}
		req := ds.Request(opts.users, opts.k)
		req.Filters = filters
		return req, nil
	}, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func runReport(ctx context.Context, cfg *config.Config, load func(context.Context) (recommend.BatchRequest, error), logger zerolog.Logger, out io.Writer) error {
	req, err := load(ctx)
	if err != nil {
		return err
	}

	engine, err := recommend.NewEngine(cfg.ToEngineConfig(), nil, logger)
	if err != nil {
		return err
	}
	svc := recommend.NewService(engine, logger)
	defer svc.Shutdown()

	report, err := svc.GenerateReport(logging.ContextWithNewBatchID(ctx), req)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	return writeJSON(out, report)
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func runBenchmark(ctx context.Context, cfg *config.Config, opts *options, load func(context.Context) (recommend.BatchRequest, error), logger zerolog.Logger, out io.Writer) error {
	req, err := load(ctx)
	if err != nil {
		return err
	}

	result, err := recommend.Benchmark(ctx, req, recommend.BenchmarkOptions{
		Config:  cfg.ToEngineConfig(),
		Workers: opts.workers,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("benchmark: %w", err)
	}
	return writeJSON(out, result)
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(data, '\n')
	_, err = out.Write(data)
	return err
}
