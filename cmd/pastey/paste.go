package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/silasmendes/pastey/internal/message"
)

func newPasteCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "paste <id>",
		Short: "Put an entry back on the system clipboard",
		Long: `Looks up one entry and writes its raw content to the system clipboard, so
the next paste in any application inserts it. The daemon suppresses its own
write, so re-pasting never creates a duplicate history entry.

With --stdout the content is written to standard output instead (like
pbpaste), leaving the clipboard alone.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			resp, err := roundTrip(v, &message.Message{
				Type: message.TypePaste,
				ID:   id,
				Peek: v.GetBool("stdout"),
			})
			if err != nil {
				return err
			}
			if !resp.Found {
				return fmt.Errorf("entry %d not found", id)
			}
			if v.GetBool("stdout") {
				_, err = os.Stdout.WriteString(resp.Content)
				return err
			}
			fmt.Printf("entry %d copied to clipboard\n", id)
			return nil
		},
	}

	cmd.Flags().Bool("stdout", false, "print the content instead of reporting success")
	addTokenFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}
