package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/silasmendes/pastey/internal/message"
)

func newSensitiveCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "sensitive <id>",
		Short: "Toggle sensitivity on an entry",
		Long: `Flips the sensitive flag of one entry. Two distinct outcomes:

  entry was plain      → it becomes sensitive; listings show --alias (or a
                         placeholder when --alias is not given) instead of
                         the content
  entry was sensitive  → sensitivity is cleared and the alias removed;
                         --alias is ignored`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			resp, err := roundTrip(v, &message.Message{
				Type:  message.TypeSensitive,
				ID:    id,
				Alias: v.GetString("alias"),
			})
			if err != nil {
				return err
			}
			if !resp.Found {
				return fmt.Errorf("entry %d not found", id)
			}
			fmt.Printf("toggled sensitivity on entry %d\n", id)
			return nil
		},
	}

	cmd.Flags().String("alias", "", "display label when marking sensitive")
	addTokenFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

func newAliasCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "alias <id> <label>",
		Short: "Rename the alias of a sensitive entry",
		Long: `Replaces the display label of an entry that is already sensitive. Fails on
plain entries; use "pastey sensitive" first.`,
		Args:    cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			resp, err := roundTrip(v, &message.Message{
				Type:  message.TypeAlias,
				ID:    id,
				Alias: args[1],
			})
			if err != nil {
				return err
			}
			if !resp.Found {
				return fmt.Errorf("entry %d not found or not sensitive", id)
			}
			fmt.Printf("alias of entry %d updated\n", id)
			return nil
		},
	}

	addTokenFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}
