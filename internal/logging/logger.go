package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

func InitLogger(level string, dev bool) {
	slog.SetDefault(NewLogger(os.Stdout, ParseLevel(level), dev))
}

// NewLogger builds a tint logger. Development loggers add source locations
// and color; others write plain text for log collectors.
func NewLogger(w io.Writer, level slog.Level, dev bool) *slog.Logger {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  dev,
		NoColor:    !dev,
	})

	return slog.New(handler)
}

// ParseLevel maps LOG_LEVEL values to slog levels. Unknown values fall back to info.
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
