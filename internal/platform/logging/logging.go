// Package logging builds the slog loggers used by the todo server and the
// terminal client, and carries a request-scoped logger through contexts.
//
// The server logs to stderr:
//
//	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
//
// The terminal client owns the screen, so it logs to a file or nowhere:
//
//	logger, closeLog, err := logging.NewFile(cfg.Log.Level, cfg.Log.Format, cfg.Client.LogFile)
//
// Middleware stores a logger enriched with request_id and correlation_id;
// handlers and services pick it up again:
//
//	ctx = logging.WithLogger(ctx, logger)
//	logging.FromContext(ctx).ErrorContext(ctx, "failed to fetch todo",
//	    slog.String("operation", "GetTodo"),
//	    slog.String("id", id),
//	    slog.Any("error", err),
//	)
//
// Every handler built here passes attributes through masq, so credentials
// are replaced with [REDACTED] even when a call site forgets.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

type contextKey struct{}

// New returns a logger writing to w. level is one of debug, info, warn or
// error in any case, and anything else means info. format "text" selects
// logfmt-style output; everything else is JSON. Debug loggers also record
// the source location.
func New(level, format string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl <= slog.LevelDebug,
		ReplaceAttr: redactAttr(),
	}

	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// NewFile returns a logger appending to path, creating the file and its
// directory when missing. An empty path discards everything. closeLog
// releases the file.
func NewFile(level, format, path string) (logger *slog.Logger, closeLog func() error, err error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return New(level, format, f), f.Close, nil
}

// ParseLevel maps a configured level name to a slog.Level, falling back to
// info.
func ParseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// WithLogger returns ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored by WithLogger, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
