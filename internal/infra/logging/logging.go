package logging

import (
	"log/slog"
	"os"
)

// SetupJSON sets slog's default logger to write JSON to stdout at the
// given level. Call it once, early in main, before anything logs.
func SetupJSON(level slog.Level) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
