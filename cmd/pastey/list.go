package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/silasmendes/pastey/internal/message"
)

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clipboard history",
		Long: `Lists every stored entry, pinned entries first, newest first within each
group. Sensitive entries show their alias instead of their content.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runList(v) },
	}

	f := cmd.Flags()
	f.Bool("json", false, "output raw JSON")
	f.Int("width", 60, "max preview width per entry")
	addTokenFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runList(v *viper.Viper) error {
	resp, err := roundTrip(v, &message.Message{Type: message.TypeList})
	if err != nil {
		return err
	}

	if v.GetBool("json") {
		enc, _ := json.MarshalIndent(resp.Entries, "", "  ")
		fmt.Println(string(enc))
		return nil
	}

	if len(resp.Entries) == 0 {
		fmt.Println("History is empty.")
		return nil
	}

	width := v.GetInt("width")
	tw := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t\tAGE\tCONTENT\n")
	for _, e := range resp.Entries {
		marker := ""
		if e.Pinned {
			marker = "pin"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.ID, marker, fmtAge(e.CreatedAt), preview(e.Display(), width))
	}
	return tw.Flush()
}
