// Package logging installs a colored tint handler as the slog default.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup logs to stderr at the named level (debug, info, warn, error; default info).
func Setup(level string) {
	SetupWriter(os.Stderr, level)
}

// SetupWriter logs to w. Colors are disabled unless w is stderr, so log
// files stay free of escape codes.
func SetupWriter(w io.Writer, level string) {
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      ParseLevel(level),
			TimeFormat: time.Kitchen,
			NoColor:    w != os.Stderr,
		}),
	))
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
