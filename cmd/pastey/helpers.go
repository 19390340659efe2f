package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/silasmendes/pastey/internal/crypto"
	"github.com/silasmendes/pastey/internal/ipc"
	"github.com/silasmendes/pastey/internal/message"
	"github.com/silasmendes/pastey/internal/wire"
)

// roundTrip sends one request to the daemon's control socket and returns the
// response. ERROR responses come back as Go errors so commands can just
// return them.
func roundTrip(v *viper.Viper, req *message.Message) (*message.Message, error) {
	if !ipc.IsRunning() {
		return nil, fmt.Errorf("no pastey daemon on %s (start one with \"pastey serve\")", ipc.SocketPath())
	}

	var key *[32]byte
	if token := v.GetString("token"); token != "" {
		var err error
		key, err = crypto.DeriveKey(token)
		if err != nil {
			return nil, fmt.Errorf("key derivation: %w", err)
		}
	}

	conn, err := ipc.Dial()
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", ipc.SocketPath(), err)
	}
	defer conn.Close()

	wc := wire.New(conn, key)
	if err := wc.WriteMsg(req); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	resp, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	if resp.Type == message.TypeError {
		return nil, fmt.Errorf("daemon: %s", resp.Error)
	}
	return resp, nil
}

// parseID converts a sub-command's entry-id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid entry id %q", arg)
	}
	return id, nil
}

// preview renders entry text for a listing: newlines collapsed, truncated.
// Widths below 2 (including zero from an unset config key) are clamped so
// truncation always leaves room for at least one rune plus the ellipsis.
func preview(s string, max int) string {
	if max < 2 {
		max = 2
	}
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}

// fmtAge renders how long ago t was, coarsely.
func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return t.Format("2006-01-02")
	}
}
