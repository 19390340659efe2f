package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/silasmendes/pastey/internal/message"
)

func newPinCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "pin <id>",
		Short: "Toggle the pin on an entry",
		Long: `Flips the pin flag of one entry. Pinned entries sort first in listings and
are never evicted by the retention ceiling.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			resp, err := roundTrip(v, &message.Message{Type: message.TypePin, ID: id})
			if err != nil {
				return err
			}
			if !resp.Found {
				return fmt.Errorf("entry %d not found", id)
			}
			fmt.Printf("toggled pin on entry %d\n", id)
			return nil
		},
	}

	addTokenFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}
