// pastey: clipboard history with pinning and sensitive entries.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "pastey",
		Short: "Clipboard history manager",
		Long: `pastey watches the system clipboard and keeps a bounded history of what
you copy. Entries can be pinned (exempt from eviction), marked sensitive
(listed under an alias instead of their content), and pasted back.

Run "pastey serve" to start the watcher daemon. The other sub-commands talk
to the daemon over a local socket.

Config file search order (first found wins):
  /etc/pastey/pastey.toml
  $HOME/.config/pastey/pastey.toml
  path supplied via --config

All flags can be set via PASTEY_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newListCmd(),
		newPinCmd(),
		newSensitiveCmd(),
		newAliasCmd(),
		newRmCmd(),
		newClearCmd(),
		newPasteCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("pastey %s\n", Version)
		},
	}
}
