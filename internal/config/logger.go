package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// NewLogger builds a slog.Logger from the logging config.
//
// Output "stderr" (or empty) uses stderr, "stdout" uses stdout, anything
// else is a file path opened for appending. A non-nil w overrides Output.
// The returned closer releases the log file, if one was opened.
func NewLogger(cfg LoggingConfig, w io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var closer io.Closer = nopCloser{}
	if w == nil {
		switch cfg.Output {
		case "", "stderr":
			w = os.Stderr
		case "stdout":
			w = os.Stdout
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, nil, fmt.Errorf("open log file: %w", err)
			}
			w = f
			closer = f
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		closer.Close()
		return nil, nil, fmt.Errorf("invalid log format: %s (must be json or text)", cfg.Format)
	}

	return slog.New(handler), closer, nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", s)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
