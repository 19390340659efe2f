package control

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silasmendes/pastey/internal/crypto"
	"github.com/silasmendes/pastey/internal/history"
	"github.com/silasmendes/pastey/internal/message"
	"github.com/silasmendes/pastey/internal/monitor"
	"github.com/silasmendes/pastey/internal/wire"
)

type memClipboard struct {
	value    string
	writeErr error
}

func (m *memClipboard) Read() (string, error) { return m.value, nil }

func (m *memClipboard) Write(text string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.value = text
	return nil
}

func newTestServer(t *testing.T) (*Server, *memClipboard) {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"), 100)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cb := &memClipboard{}
	srv := &Server{
		Store:        store,
		Adapter:      cb,
		Version:      "test",
		DBPath:       "test.db",
		StartedAt:    time.Now(),
		PollInterval: 500 * time.Millisecond,
	}
	return srv, cb
}

func insert(t *testing.T, srv *Server, content string) int64 {
	t.Helper()
	id, created, err := srv.Store.Insert(context.Background(), content)
	require.NoError(t, err)
	require.True(t, created)
	return id
}

func TestHandle_ListAndMutations(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	id := insert(t, srv, "hello world")

	resp := srv.Handle(ctx, &message.Message{Type: message.TypeList})
	require.Equal(t, message.TypeOK, resp.Type)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "hello world", resp.Entries[0].Content)

	resp = srv.Handle(ctx, &message.Message{Type: message.TypePin, ID: id})
	require.Equal(t, message.TypeOK, resp.Type)
	assert.True(t, resp.Found)

	resp = srv.Handle(ctx, &message.Message{Type: message.TypeSensitive, ID: id})
	require.Equal(t, message.TypeOK, resp.Type)
	assert.True(t, resp.Found)

	resp = srv.Handle(ctx, &message.Message{Type: message.TypeList})
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, history.DefaultAlias, resp.Entries[0].Alias)

	resp = srv.Handle(ctx, &message.Message{Type: message.TypeAlias, ID: id, Alias: "work note"})
	assert.True(t, resp.Found)

	resp = srv.Handle(ctx, &message.Message{Type: message.TypeDelete, ID: id})
	assert.True(t, resp.Found)

	resp = srv.Handle(ctx, &message.Message{Type: message.TypeDelete, ID: id})
	require.Equal(t, message.TypeOK, resp.Type, "missing id is not an error")
	assert.False(t, resp.Found)
}

func TestHandle_Clear(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	insert(t, srv, "one")
	insert(t, srv, "two")
	pinned := insert(t, srv, "three")
	srv.Handle(ctx, &message.Message{Type: message.TypePin, ID: pinned})

	resp := srv.Handle(ctx, &message.Message{Type: message.TypeClear})
	require.Equal(t, message.TypeOK, resp.Type)
	assert.Equal(t, int64(2), resp.Count)
}

func TestHandle_PasteWritesClipboard(t *testing.T) {
	srv, cb := newTestServer(t)
	ctx := context.Background()

	id := insert(t, srv, "paste me")

	resp := srv.Handle(ctx, &message.Message{Type: message.TypePaste, ID: id})
	require.Equal(t, message.TypeOK, resp.Type)
	require.True(t, resp.Found)
	assert.Equal(t, "paste me", resp.Content)
	assert.Equal(t, "paste me", cb.value)

	resp = srv.Handle(ctx, &message.Message{Type: message.TypePaste, ID: 999})
	require.Equal(t, message.TypeOK, resp.Type)
	assert.False(t, resp.Found)
}

func TestHandle_PasteWriteFailureRestoresLastSeen(t *testing.T) {
	srv, cb := newTestServer(t)
	ctx := context.Background()

	id := insert(t, srv, "will not land")

	mon := monitor.New(cb, func(string) {}, monitor.Config{})
	mon.MarkSeen("genuine user copy")
	srv.Monitor = mon
	cb.writeErr = errors.New("clipboard busy")

	resp := srv.Handle(ctx, &message.Message{Type: message.TypePaste, ID: id})
	require.Equal(t, message.TypeError, resp.Type)

	// MarkSeen returns the previous value: the failed paste must not have
	// displaced what the monitor last observed.
	assert.Equal(t, "genuine user copy", mon.MarkSeen(""))
}

func TestHandle_PastePeekLeavesClipboardAlone(t *testing.T) {
	srv, cb := newTestServer(t)
	ctx := context.Background()

	id := insert(t, srv, "read only")
	cb.value = "untouched"

	resp := srv.Handle(ctx, &message.Message{Type: message.TypePaste, ID: id, Peek: true})
	require.Equal(t, message.TypeOK, resp.Type)
	require.True(t, resp.Found)
	assert.Equal(t, "read only", resp.Content)
	assert.Equal(t, "untouched", cb.value)
}

func TestHandle_Status(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	insert(t, srv, "alpha")
	id := insert(t, srv, "beta")
	srv.Handle(ctx, &message.Message{Type: message.TypePin, ID: id})

	resp := srv.Handle(ctx, &message.Message{Type: message.TypeStatus})
	require.Equal(t, message.TypeOK, resp.Type)
	require.NotNil(t, resp.Status)
	assert.Equal(t, int64(2), resp.Status.Entries)
	assert.Equal(t, int64(1), resp.Status.Pinned)
	assert.Equal(t, 100, resp.Status.MaxUnpinned)
	assert.Equal(t, "test", resp.Status.Version)
}

func TestHandle_UnknownType(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := srv.Handle(context.Background(), &message.Message{Type: "BOGUS"})
	assert.Equal(t, message.TypeError, resp.Type)
}

func TestServe_SocketRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	insert(t, srv, "over the wire")

	key, err := crypto.DeriveKey("shared secret")
	require.NoError(t, err)
	srv.Key = key

	sock := filepath.Join(t.TempDir(), "pastey.sock")
	ln, err := net.Listen("unix", sock)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	go srv.Serve(ln)

	conn, err := net.Dial("unix", sock)
	require.NoError(t, err)
	defer conn.Close()

	wc := wire.New(conn, key)
	require.NoError(t, wc.WriteMsg(&message.Message{Type: message.TypeList}))

	resp, err := wc.ReadMsg()
	require.NoError(t, err)
	require.Equal(t, message.TypeOK, resp.Type)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "over the wire", resp.Entries[0].Content)
}
