package logger

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// New constructs a logger with the desired log level.
// LOG_COLORED=true switches to a colored console handler for local runs.
func New(service string) *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	colored, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("LOG_COLORED")))
	return slog.New(newHandler(os.Stdout, level, colored)).With("service", service)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHandler(w io.Writer, level slog.Level, colored bool) slog.Handler {
	if colored {
		return tint.NewHandler(w, &tint.Options{Level: level, TimeFormat: time.Kitchen})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
