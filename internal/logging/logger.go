// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

// Package logging provides centralized zerolog-based logging for bookreco.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Msg("service starting")
//	logging.Error().Err(err).Msg("report generation failed")
//
//	// With context (batch ID)
//	logging.Ctx(ctx).Info().Int("users", n).Msg("batch complete")
//
// Components that are constructed with a logger (the recommendation engine,
// supervisor services) take a zerolog.Logger by value; use WithComponent to
// derive one from the global logger.
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send(), and prefer structured
// fields over formatted messages:
//
//	logging.Info().Str("user", u).Int("count", n).Msg("processed")  // Correct
//	logging.Info().Msgf("processed %d items for %s", n, u)          // Avoid
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level: trace, debug, info, warn, error, fatal, panic.
	// Default: info
	Level string

	// Format is the output format: json or console.
	// Default: json
	Format string

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool

	// Timestamp enables timestamps in log output.
	// Default: true
	Timestamp bool

	// Output is the writer for log output.
	// Default: os.Stderr
	Output io.Writer
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Caller:    false,
		Timestamp: true,
		Output:    os.Stderr,
	}
}

var (
	// log is the global logger instance.
	log zerolog.Logger

	// mu protects concurrent initialization.
	mu sync.RWMutex
)

//nolint:gochecknoinits // init ensures logging works before explicit Init() call
func init() {
	initLogger(DefaultConfig())
}

// Init initializes the global logger with the given configuration.
// It is safe to call multiple times; subsequent calls reconfigure the logger.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	initLogger(cfg)
}

// initLogger configures the global logger (must be called with mu held).
func initLogger(cfg Config) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "message"
	zerolog.ErrorFieldName = "error"

	output := cfg.Output
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: "15:04:05",
		}
	}

	logger := zerolog.New(output)
	if cfg.Timestamp {
		logger = logger.With().Timestamp().Logger()
	}
	if cfg.Caller {
		logger = logger.With().Caller().Logger()
	}

	log = logger
}

// parseLevel converts a string level to zerolog.Level.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns the global logger instance.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// SetLogger replaces the global logger instance.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// With creates a child logger context with additional fields.
func With() zerolog.Context {
	mu.RLock()
	defer mu.RUnlock()
	return log.With()
}

// WithComponent creates a child logger with a component field.
//
//	engineLogger := logging.WithComponent("recommend")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}

// Debug starts a new message with debug level.
func Debug() *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	return log.Debug()
}

// Info starts a new message with info level.
func Info() *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	return log.Info()
}

// Warn starts a new message with warning level.
func Warn() *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	return log.Warn()
}

// Error starts a new message with error level.
func Error() *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	return log.Error()
}

// Fatal starts a new message with fatal level.
// The os.Exit(1) function is called after the message is logged.
func Fatal() *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	return log.Fatal()
}

// Err starts a new message with error level and adds the error.
func Err(err error) *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	return log.Err(err)
}

// NewTestLogger creates a logger that writes JSON to w.
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
