// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
)

// SlogHandler implements slog.Handler using zerolog as the backend.
// It lets libraries that require *slog.Logger (sutureslog) write to zerolog.
type SlogHandler struct {
	logger zerolog.Logger
	attrs  []slog.Attr
	groups []string
}

// NewSlogHandler creates a slog.Handler that wraps the given zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSlogHandler(logger zerolog.Logger) *SlogHandler {
	return &SlogHandler{logger: logger}
}

// NewSlogLogger creates an slog.Logger backed by logger.
//
//	tree, err := supervisor.NewTree(logging.NewSlogLogger(logger), cfg)
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSlogLogger(logger zerolog.Logger) *slog.Logger {
	return slog.New(NewSlogHandler(logger))
}

// Enabled reports whether the handler handles records at the given level.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	zl := slogToZerologLevel(level)
	return zl >= h.logger.GetLevel() && zl >= zerolog.GlobalLevel()
}

// Handle writes the record through zerolog.
//
//nolint:gocritic // slog.Record is passed by value per slog.Handler interface
func (h *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	event := h.logger.WithLevel(slogToZerologLevel(record.Level))

	for _, attr := range h.attrs {
		event = addAttr(event, attr, h.groups)
	}
	record.Attrs(func(attr slog.Attr) bool {
		event = addAttr(event, attr, h.groups)
		return true
	})

	event.Msg(record.Message)
	return nil
}

// WithAttrs returns a new Handler with the given attributes.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)

	return &SlogHandler{logger: h.logger, attrs: newAttrs, groups: h.groups}
}

// WithGroup returns a new Handler with the given group name.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	newGroups := make([]string, len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups[len(h.groups)] = name

	return &SlogHandler{logger: h.logger, attrs: h.attrs, groups: newGroups}
}

// addAttr adds a slog attribute to a zerolog event, prefixing group names.
func addAttr(event *zerolog.Event, attr slog.Attr, groups []string) *zerolog.Event {
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}

	switch attr.Value.Kind() {
	case slog.KindString:
		return event.Str(key, attr.Value.String())
	case slog.KindInt64:
		return event.Int64(key, attr.Value.Int64())
	case slog.KindUint64:
		return event.Uint64(key, attr.Value.Uint64())
	case slog.KindFloat64:
		return event.Float64(key, attr.Value.Float64())
	case slog.KindBool:
		return event.Bool(key, attr.Value.Bool())
	case slog.KindDuration:
		return event.Dur(key, attr.Value.Duration())
	case slog.KindTime:
		return event.Time(key, attr.Value.Time())
	case slog.KindGroup:
		nested := make([]string, len(groups)+1)
		copy(nested, groups)
		nested[len(groups)] = attr.Key
		for _, ga := range attr.Value.Group() {
			event = addAttr(event, ga, nested)
		}
		return event
	default:
		return event.Interface(key, attr.Value.Any())
	}
}

// slogToZerologLevel converts slog.Level to zerolog.Level.
func slogToZerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level < slog.LevelDebug:
		return zerolog.TraceLevel
	case level < slog.LevelInfo:
		return zerolog.DebugLevel
	case level < slog.LevelWarn:
		return zerolog.InfoLevel
	case level < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
