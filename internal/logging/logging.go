// Package logging configures the global slog logger for the pastey binary:
// a tinted human-readable handler when stderr is a terminal, JSON otherwise.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// ParseLevel converts a string to a slog.Level, defaulting to Info for
// empty or unknown values.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Setup configures the global slog logger. format is "auto", "text" or
// "json"; "auto" picks text on a TTY and JSON otherwise. Call once after
// flag/viper parsing.
func Setup(format string, level slog.Level) {
	w := os.Stderr

	useTint := false
	switch strings.ToLower(format) {
	case "text", "tint", "human":
		useTint = true
	case "json":
	default: // auto
		useTint = IsTTY(w)
	}

	var h slog.Handler
	if useTint {
		h = tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
		})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(h))
}
