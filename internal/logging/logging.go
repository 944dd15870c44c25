package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is shared by every logger built here so LOG_LEVEL applies process-wide.
var Level = new(slog.LevelVar)

var Default = NewLogger(os.Stdout)

func init() {
	Level.Set(ParseLevel(os.Getenv("LOG_LEVEL")))
}

// NewLogger returns a JSON logger writing to w at the shared Level.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: Level}))
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
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
