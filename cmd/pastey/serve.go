package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/silasmendes/pastey/internal/clip"
	"github.com/silasmendes/pastey/internal/control"
	"github.com/silasmendes/pastey/internal/crypto"
	"github.com/silasmendes/pastey/internal/history"
	"github.com/silasmendes/pastey/internal/ipc"
	"github.com/silasmendes/pastey/internal/monitor"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the clipboard watcher daemon",
		Long: `Starts the pastey daemon: polls the system clipboard, records accepted
changes in the history database, and serves the control socket the other
sub-commands talk to.

Config file search order:
  /etc/pastey/pastey.toml
  $HOME/.config/pastey/pastey.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → PASTEY_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runServe(v) },
	}

	f := cmd.Flags()
	f.String("db", defaultDBPath(), "path to the history database")
	f.Int("max-items", history.DefaultMaxUnpinned, "retention ceiling for unpinned entries")
	f.Duration("poll-interval", monitor.DefaultPollInterval, "clipboard poll cadence")
	f.Duration("error-backoff", monitor.DefaultErrorBackoff, "delay before retrying after a clipboard error")
	f.Int("min-length", monitor.DefaultMinLength, "minimum non-whitespace characters to record")
	addTokenFlag(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runServe(v *viper.Viper) error {
	setupLogging(v)

	dbPath := v.GetString("db")
	pollInterval := v.GetDuration("poll-interval")
	token := v.GetString("token")

	var key *[32]byte
	if token != "" {
		var err error
		key, err = crypto.DeriveKey(token)
		if err != nil {
			return fmt.Errorf("key derivation: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	store, err := history.Open(dbPath, v.GetInt("max-items"))
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	slog.Info("pastey daemon starting",
		"version", Version,
		"db", dbPath,
		"max_items", store.MaxUnpinned(),
		"poll_interval", pollInterval,
		"encrypted", key != nil,
	)

	adapter := clip.System()

	mon := monitor.New(adapter, func(content string) {
		id, created, err := store.Insert(context.Background(), content)
		switch {
		case err != nil:
			// Insert failures are transient like clipboard errors: log
			// and keep polling.
			slog.Error("recording clipboard change failed", "err", err)
		case created:
			slog.Debug("clipboard change recorded", "id", id, "chars", len(content))
		}
	}, monitor.Config{
		PollInterval: pollInterval,
		ErrorBackoff: v.GetDuration("error-backoff"),
		MinLength:    v.GetInt("min-length"),
	})
	mon.Start()
	defer mon.Stop()

	ln, err := ipc.Listen()
	if err != nil {
		return fmt.Errorf("control socket: %w", err)
	}
	defer ln.Close()
	slog.Info("control socket listening", "path", ipc.SocketPath())

	srv := &control.Server{
		Store:        store,
		Adapter:      adapter,
		Monitor:      mon,
		Version:      Version,
		DBPath:       dbPath,
		StartedAt:    time.Now(),
		PollInterval: pollInterval,
		Key:          key,
	}
	go srv.Serve(ln)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	slog.Info("shutting down", "signal", s.String())
	return nil
}

// defaultDBPath places the history database under the user state directory.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "pastey.db"
	}
	return filepath.Join(home, ".local", "share", "pastey", "history.db")
}
