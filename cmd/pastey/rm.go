package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/silasmendes/pastey/internal/message"
)

func newRmCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Short:   "Delete one entry",
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			resp, err := roundTrip(v, &message.Message{Type: message.TypeDelete, ID: id})
			if err != nil {
				return err
			}
			if !resp.Found {
				return fmt.Errorf("entry %d not found", id)
			}
			fmt.Printf("entry %d deleted\n", id)
			return nil
		},
	}

	addTokenFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

func newClearCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "clear",
		Short:   "Delete every unpinned entry",
		Long:    `Deletes all entries that are not pinned. Pinned entries are untouched.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, _ []string) error {
			resp, err := roundTrip(v, &message.Message{Type: message.TypeClear})
			if err != nil {
				return err
			}
			fmt.Printf("%d entries removed\n", resp.Count)
			return nil
		},
	}

	addTokenFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}
