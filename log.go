package snapshot

import (
	"log/slog"
	"os"
)

// logger is the package-wide logger. The default level keeps the library
// silent unless something degrades; DEBUG_SNAPSHOT=1 turns on tracing of
// replacements and skip-path resolution.
var logger = newLogger()

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("DEBUG_SNAPSHOT") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
