package logging

import (
	"log/slog"
	"os"
)

// New creates the process logger with JSON output at the given level.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
