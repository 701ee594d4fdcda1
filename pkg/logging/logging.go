// Package logging configures the process-wide slog logger for a pipeline run.
//
// A run logs to two sinks at once: a plain-text run log file (truncated at the
// start of every run) and the console. Both sinks share one level. The console
// can switch to JSON for machine consumption; the file always uses the line
// format so it stays easy to grep.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options configures Setup.
type Options struct {
	// Name and Version are attached to JSON console records.
	Name    string
	Version string

	// FilePath is the run log. Empty disables the file sink.
	FilePath string

	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// JSON switches the console sink to JSON.
	JSON bool

	// Console overrides the console writer. Defaults to os.Stderr.
	Console io.Writer
}

// ParseLevel converts a level name into a slog.Level.
// It accepts the Python-style "warning" spelling as an alias of "warn".
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q, valid levels are: debug, info, warn, error", s)
	}
}

// Setup builds the dual-sink logger, installs it as slog's default and returns
// it together with a function that closes the file sink.
func Setup(opts Options) (*slog.Logger, func() error, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var consoleHandler slog.Handler
	if opts.JSON {
		consoleHandler = slog.NewJSONHandler(console, &slog.HandlerOptions{Level: lvl}).
			WithAttrs([]slog.Attr{
				slog.String("name", opts.Name),
				slog.String("version", opts.Version),
			})
	} else {
		consoleHandler = NewLineHandler(console, lvl)
	}

	handlers := []slog.Handler{consoleHandler}
	closer := func() error { return nil }

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", opts.FilePath, err)
		}
		handlers = append(handlers, NewLineHandler(f, lvl))
		closer = f.Close
	}

	logger := slog.New(NewFanoutHandler(handlers...))
	slog.SetDefault(logger)

	return logger, closer, nil
}
