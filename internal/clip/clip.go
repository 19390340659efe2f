// Package clip provides access to the system clipboard as a plain text
// value, backed by golang.design/x/clipboard. When no clipboard is available
// (headless server, no display) a stub adapter is returned whose operations
// fail with ErrUnavailable; callers treat that as a transient condition.
package clip

import (
	"errors"
	"log/slog"

	"golang.design/x/clipboard"
)

// ErrUnavailable is returned by the headless adapter for every operation.
var ErrUnavailable = errors.New("clipboard unavailable")

// Adapter reads and writes the external clipboard value. Implementations
// hold no state of their own; failures are transient and never fatal to the
// caller.
type Adapter interface {
	Read() (string, error)
	Write(text string) error
}

// System returns the platform clipboard adapter, or a headless stub when the
// clipboard cannot be initialised. clipboard.Init is called here rather than
// in init() so that sub-commands that never touch the clipboard don't log
// spurious warnings on headless systems.
func System() Adapter {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return headless{}
	}
	return system{}
}

type system struct{}

func (system) Read() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (system) Write(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

type headless struct{}

func (headless) Read() (string, error) { return "", ErrUnavailable }
func (headless) Write(string) error    { return ErrUnavailable }
