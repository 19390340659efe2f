// Package monitor implements the clipboard poller: a single background loop
// that reads the clipboard on a fixed cadence, filters out noise, and hands
// accepted changes to a callback. The monitor is the only producer of
// history insertions derived from the clipboard.
package monitor

import (
	"log/slog"
	"sync"
	"time"
	"unicode"

	"github.com/silasmendes/pastey/internal/clip"
)

const (
	// DefaultPollInterval is the cadence of clipboard reads.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultErrorBackoff is the delay before the next read after a
	// clipboard error.
	DefaultErrorBackoff = time.Second

	// DefaultMinLength is the minimum number of non-whitespace runes a
	// value needs to be recorded.
	DefaultMinLength = 2

	// stopGrace bounds how long Stop waits for the loop to exit before
	// abandoning it.
	stopGrace = 2 * time.Second
)

// Config tunes the monitor. Zero values fall back to the defaults above.
type Config struct {
	PollInterval time.Duration
	ErrorBackoff time.Duration
	MinLength    int
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = DefaultErrorBackoff
	}
	if c.MinLength <= 0 {
		c.MinLength = DefaultMinLength
	}
	return c
}

// Monitor polls the clipboard and emits accepted changes.
type Monitor struct {
	adapter  clip.Adapter
	onChange func(string)
	cfg      Config

	mu       sync.Mutex
	running  bool
	done     chan struct{}
	finished chan struct{}
	lastSeen string
}

// New creates a monitor that calls onChange with every accepted clipboard
// value. The monitor does not poll until Start is called.
func New(adapter clip.Adapter, onChange func(string), cfg Config) *Monitor {
	return &Monitor{
		adapter:  adapter,
		onChange: onChange,
		cfg:      cfg.withDefaults(),
	}
}

// Start launches the poll loop. Calling Start while the monitor is already
// running is a no-op: there is never more than one active loop.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}

	// Seed last-seen from the current clipboard so pre-existing content
	// is not recorded as a change. On failure start from empty.
	if value, err := m.adapter.Read(); err == nil {
		m.lastSeen = value
	} else {
		slog.Warn("initial clipboard read failed", "err", err)
		m.lastSeen = ""
	}

	m.running = true
	m.done = make(chan struct{})
	m.finished = make(chan struct{})
	go m.loop(m.done, m.finished)

	slog.Info("clipboard monitor started",
		"poll_interval", m.cfg.PollInterval,
		"error_backoff", m.cfg.ErrorBackoff,
	)
}

// Stop terminates the poll loop and waits for it to exit, bounded by a grace
// period after which the loop is abandoned. Stop is safe to call multiple
// times, from any goroutine, and before Start.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.done)
	finished := m.finished
	m.mu.Unlock()

	select {
	case <-finished:
		slog.Info("clipboard monitor stopped")
	case <-time.After(stopGrace):
		slog.Warn("clipboard monitor did not stop in time, abandoning")
	}
}

// MarkSeen records text as the last observed clipboard value, so that a
// value the application itself wrote back to the clipboard (re-paste) is not
// detected as a new change on the next tick. It returns the previous value;
// a caller whose clipboard write then fails can pass it back to undo the
// mark.
func (m *Monitor) MarkSeen(text string) (prev string) {
	m.mu.Lock()
	prev = m.lastSeen
	m.lastSeen = text
	m.mu.Unlock()
	return prev
}

func (m *Monitor) loop(done <-chan struct{}, finished chan<- struct{}) {
	defer close(finished)

	t := time.NewTimer(m.cfg.PollInterval)
	defer t.Stop()

	for {
		select {
		case <-done:
			return
		case <-t.C:
		}

		next := m.cfg.PollInterval
		value, err := m.adapter.Read()
		if err != nil {
			slog.Warn("clipboard read failed", "err", err)
			next = m.cfg.ErrorBackoff
		} else if m.accept(value) {
			m.MarkSeen(value)
			m.onChange(value)
		}
		t.Reset(next)
	}
}

// accept reports whether value is a genuine change worth recording:
// different from the last observed value and long enough once whitespace is
// discounted.
func (m *Monitor) accept(value string) bool {
	m.mu.Lock()
	unchanged := value == m.lastSeen
	m.mu.Unlock()
	if unchanged {
		return false
	}
	return visibleLen(value) >= m.cfg.MinLength
}

// visibleLen counts the non-whitespace runes in s.
func visibleLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
