// Package message defines the envelope exchanged between the pastey CLI and
// the daemon over the control socket. Each message is one JSON object per
// line: <json>\n
package message

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/silasmendes/pastey/internal/history"
)

// Type identifies the kind of message.
type Type string

// Requests. LIST, PASTE and STATUS are reads; the rest are mutations.
const (
	TypeList      Type = "LIST"
	TypePin       Type = "PIN"
	TypeSensitive Type = "SENSITIVE"
	TypeAlias     Type = "ALIAS"
	TypeDelete    Type = "DELETE"
	TypeClear     Type = "CLEAR"
	TypePaste     Type = "PASTE"
	TypeStatus    Type = "STATUS"
)

// Responses.
const (
	TypeOK    Type = "OK"
	TypeError Type = "ERROR"
)

// Status carries daemon metadata for the status command.
type Status struct {
	Version      string    `json:"version"`
	DBPath       string    `json:"db_path"`
	StartedAt    time.Time `json:"started_at"`
	Entries      int64     `json:"entries"`
	Pinned       int64     `json:"pinned"`
	MaxUnpinned  int       `json:"max_unpinned"`
	PollInterval string    `json:"poll_interval"`
}

// Message is the wire envelope. Request fields and response fields share the
// struct; which ones are meaningful depends on Type.
type Message struct {
	Type Type `json:"type"`

	// PIN / SENSITIVE / ALIAS / DELETE / PASTE — target entry.
	ID int64 `json:"id,omitempty"`

	// SENSITIVE (optional) / ALIAS — display label.
	Alias string `json:"alias,omitempty"`

	// PASTE — return the content without touching the clipboard.
	Peek bool `json:"peek,omitempty"`

	// OK responses.
	Found   bool            `json:"found,omitempty"`
	Count   int64           `json:"count,omitempty"`
	Content string          `json:"content,omitempty"`
	Entries []history.Entry `json:"entries,omitempty"`
	Status  *Status         `json:"status,omitempty"`

	// ERROR responses.
	Error string `json:"error,omitempty"`
}

// OK returns an empty success response, to be filled by the caller.
func OK() *Message { return &Message{Type: TypeOK} }

// Errorf returns an ERROR response with a formatted message.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}
