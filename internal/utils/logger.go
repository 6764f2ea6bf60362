package utils

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide logger for the given environment.
// Production gets JSON at info level for log shipping; everything else gets
// human-readable text at debug level.
func NewLogger(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// NewLoggerWithComponent returns a logger tagged with the component name, so
// every line from a service identifies its origin.
func NewLoggerWithComponent(environment, component string) *slog.Logger {
	return NewLogger(environment).With("component", component)
}
