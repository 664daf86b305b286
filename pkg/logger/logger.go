package logger

import (
	"log/slog"
	"os"
)

// New creates a JSON structured logger that writes to stdout. debug lowers the
// level to capture per-update handler details.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}
