package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ServiceName is attached to every record
const ServiceName = "floor-api"

// New builds a JSON logger writing to w at the given level name
func New(w io.Writer, level string) *slog.Logger {
	hostname, _ := os.Hostname()

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})

	return slog.New(handler).With(
		slog.String("service", ServiceName),
		slog.String("hostname", hostname),
	)
}

// Setup installs a stdout JSON logger as the process default
func Setup(level string) *slog.Logger {
	l := New(os.Stdout, level)
	slog.SetDefault(l)
	return l
}

// ParseLevel maps LOG_LEVEL values to slog levels, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
