// Package logging builds the structured logger used across the tracker.
//
// This package wraps the standard library's log/slog package. It constructs
// a single *slog.Logger handle at startup which the daemon passes to each
// component; there is no package-level logger. Components attach a
// "component" attribute so log lines can be filtered per subsystem.
//
// Usage:
//
//	logger, closer, err := logging.New(logging.Options{Level: "debug"})
//	if err != nil { ... }
//	defer closer.Close()
//
//	log := logging.Component(logger, "tracker")
//	log.Info("tick complete", "elapsed_ms", 42)
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options configures logger construction.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// Format is "text" or "json". Empty means text.
	Format string

	// Path is the log file destination. Empty means stderr.
	// The parent directory is created if missing.
	Path string
}

// nopCloser satisfies io.Closer for the stderr destination.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New constructs a logger from the given options. The returned io.Closer
// owns the log file, if any, and must be closed during shutdown.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if opts.Path != "" {
		if dir := filepath.Dir(opts.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closer = f
	}

	hopts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(w, hopts)
	} else {
		handler = slog.NewTextHandler(w, hopts)
	}

	return slog.New(handler), closer, nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// Component returns a logger for a specific component.
// The component name is added as an attribute to all log entries.
//
// Example:
//
//	log := logging.Component(logger, "storage")
//	log.Info("opened") // Output: time=... level=INFO component=storage msg=opened
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return logger.With("component", name)
}
