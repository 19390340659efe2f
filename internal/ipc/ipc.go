// Package ipc provides the local control socket the pastey CLI uses to talk
// to a running daemon. The socket carries newline-delimited JSON messages
// (see internal/wire); CLI sub-commands probe for it and fail with a clear
// error when no daemon is running.
package ipc

import (
	"net"
	"os"
	"path/filepath"
)

// SocketPath returns the path of the control socket.
//
// $PASTEY_SOCKET overrides; otherwise $XDG_RUNTIME_DIR/pastey.sock when set,
// falling back to $TMPDIR/pastey.sock.
func SocketPath() string {
	if s := os.Getenv("PASTEY_SOCKET"); s != "" {
		return s
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "pastey.sock")
	}
	return filepath.Join(os.TempDir(), "pastey.sock")
}

// IsRunning reports whether a pastey daemon appears to be listening on the
// control socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := net.Dial("unix", SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates and returns a net.Listener on the control socket path,
// removing any stale socket file from a previous (crashed) run first.
func Listen() (net.Listener, error) {
	path := SocketPath()
	_ = os.Remove(path)
	return net.Listen("unix", path)
}

// Dial connects to the control socket.
func Dial() (net.Conn, error) {
	return net.Dial("unix", SocketPath())
}
