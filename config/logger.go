package config

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Production emits JSON to stdout;
// every other environment gets the text handler. LOG_LEVEL picks the
// minimum level (debug, info, warn, error), defaulting to info.
func NewLogger() *slog.Logger {
	var level slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if os.Getenv("GO_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
