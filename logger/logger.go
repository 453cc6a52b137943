// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Provides Init() plus a file sink so the TUI can log without touching the terminal.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Init configures the default slog logger based on environment variables.
// ORION_LOG_LEVEL: debug, info, warn, error (default: info)
// ORION_LOG_FORMAT: text, json (default: text)
// Output goes to stderr so command output on stdout stays parseable.
func Init() {
	slog.SetDefault(slog.New(newHandler(os.Stderr)))
}

// InitFile redirects logging to a file under dir (created if needed).
// Used while the TUI owns the terminal. An empty dir discards all logs.
func InitFile(dir string) error {
	if dir == "" {
		slog.SetDefault(slog.New(newHandler(io.Discard)))
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(newHandler(f)))
	return nil
}

func newHandler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("ORION_LOG_LEVEL")),
	}

	if strings.ToLower(os.Getenv("ORION_LOG_FORMAT")) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
