package logger

import (
	"log/slog"
	"os"
)

// New returns a structured JSON logger using slog at the given level.
func New(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler).With("service", "proofwall")
}
