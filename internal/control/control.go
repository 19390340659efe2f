// Package control implements the daemon side of the pastey control socket:
// it accepts connections, decodes one request per connection, dispatches it
// against the history store, and writes one response.
package control

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/silasmendes/pastey/internal/clip"
	"github.com/silasmendes/pastey/internal/history"
	"github.com/silasmendes/pastey/internal/message"
	"github.com/silasmendes/pastey/internal/monitor"
	"github.com/silasmendes/pastey/internal/wire"
)

// Server dispatches control requests. All fields except Monitor and Key are
// required.
type Server struct {
	Store   *history.Store
	Adapter clip.Adapter
	Monitor *monitor.Monitor // may be nil; used to suppress re-paste echoes

	Version      string
	DBPath       string
	StartedAt    time.Time
	PollInterval time.Duration

	Key *[32]byte // nil = unencrypted socket
}

// Serve accepts connections on ln until the listener is closed. Call in a
// goroutine.
func (s *Server) Serve(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	wc := wire.New(conn, s.Key)

	req, err := wc.ReadMsg()
	if err != nil {
		slog.Debug("control: bad request", "err", err)
		return
	}

	resp := s.Handle(context.Background(), req)
	if err := wc.WriteMsg(resp); err != nil {
		slog.Debug("control: write response failed", "err", err)
	}
}

// Handle executes one request against the store and returns the response.
// Logical not-found outcomes are OK responses with Found=false; only
// storage and clipboard failures produce ERROR responses.
func (s *Server) Handle(ctx context.Context, req *message.Message) *message.Message {
	switch req.Type {
	case message.TypeList:
		entries, err := s.Store.List(ctx)
		if err != nil {
			return message.Errorf("list: %v", err)
		}
		resp := message.OK()
		resp.Entries = entries
		return resp

	case message.TypePin:
		found, err := s.Store.TogglePin(ctx, req.ID)
		if err != nil {
			return message.Errorf("pin: %v", err)
		}
		resp := message.OK()
		resp.Found = found
		return resp

	case message.TypeSensitive:
		found, err := s.Store.ToggleSensitive(ctx, req.ID, req.Alias)
		if err != nil {
			return message.Errorf("sensitive: %v", err)
		}
		resp := message.OK()
		resp.Found = found
		return resp

	case message.TypeAlias:
		found, err := s.Store.UpdateAlias(ctx, req.ID, req.Alias)
		if err != nil {
			return message.Errorf("alias: %v", err)
		}
		resp := message.OK()
		resp.Found = found
		return resp

	case message.TypeDelete:
		found, err := s.Store.Delete(ctx, req.ID)
		if err != nil {
			return message.Errorf("delete: %v", err)
		}
		resp := message.OK()
		resp.Found = found
		return resp

	case message.TypeClear:
		n, err := s.Store.ClearUnpinned(ctx)
		if err != nil {
			return message.Errorf("clear: %v", err)
		}
		resp := message.OK()
		resp.Count = n
		return resp

	case message.TypePaste:
		return s.paste(ctx, req.ID, req.Peek)

	case message.TypeStatus:
		return s.status(ctx)

	default:
		return message.Errorf("unknown request type %q", req.Type)
	}
}

// paste looks up an entry and writes its content back to the system
// clipboard. The monitor is told about the write first so the next poll tick
// does not record it as a new change.
func (s *Server) paste(ctx context.Context, id int64, peek bool) *message.Message {
	content, found, err := s.Store.Content(ctx, id)
	if err != nil {
		return message.Errorf("paste: %v", err)
	}
	resp := message.OK()
	resp.Found = found
	if !found {
		return resp
	}
	resp.Content = content
	if peek {
		return resp
	}

	// Mark before writing so a poll tick between the write and the mark
	// cannot record our own write as a change. If the write fails the mark
	// is undone: lastSeen must not point at content that never reached the
	// clipboard.
	var prev string
	if s.Monitor != nil {
		prev = s.Monitor.MarkSeen(content)
	}
	if err := s.Adapter.Write(content); err != nil {
		if s.Monitor != nil {
			s.Monitor.MarkSeen(prev)
		}
		return message.Errorf("paste: clipboard write: %v", err)
	}
	slog.Debug("entry pasted to clipboard", "id", id)
	return resp
}

func (s *Server) status(ctx context.Context) *message.Message {
	total, pinned, err := s.Store.Counts(ctx)
	if err != nil {
		return message.Errorf("status: %v", err)
	}
	resp := message.OK()
	resp.Status = &message.Status{
		Version:      s.Version,
		DBPath:       s.DBPath,
		StartedAt:    s.StartedAt,
		Entries:      total,
		Pinned:       pinned,
		MaxUnpinned:  s.Store.MaxUnpinned(),
		PollInterval: s.PollInterval.String(),
	}
	return resp
}
