package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the structured logger shared by every component. Messages take
// alternating key/value pairs, or slog.Attr values.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger writing JSON to stdout at info level.
func NewLogger() *Logger {
	return NewWithLevel(os.Stdout, slog.LevelInfo)
}

// NewWithLevel creates a Logger writing JSON to w at the given level.
func NewWithLevel(w io.Writer, lvl slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: lvl,
	})
	return &Logger{
		Logger: slog.New(handler).With(slog.String("service", "swf-backend")),
	}
}

// Discard returns a Logger that drops everything
func Discard() *Logger {
	return NewWithLevel(io.Discard, slog.LevelError)
}

// ParseLevel maps a configured level name to a slog.Level, falling back to
// info for anything unrecognised
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// With returns a Logger that adds args to every record
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}
