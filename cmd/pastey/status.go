package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/silasmendes/pastey/internal/ipc"
	"github.com/silasmendes/pastey/internal/message"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Show daemon status",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runStatus(v) },
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addTokenFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

func runStatus(v *viper.Viper) error {
	resp, err := roundTrip(v, &message.Message{Type: message.TypeStatus})
	if err != nil {
		return err
	}
	st := resp.Status
	if st == nil {
		return fmt.Errorf("malformed status response")
	}

	if v.GetBool("json") {
		enc, _ := json.MarshalIndent(st, "", "  ")
		fmt.Println(string(enc))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Version:\t%s\n", st.Version)
	fmt.Fprintf(w, "Socket:\t%s\n", ipc.SocketPath())
	fmt.Fprintf(w, "Database:\t%s\n", st.DBPath)
	fmt.Fprintf(w, "Up since:\t%s (%s)\n", st.StartedAt.Format(time.RFC3339), fmtAge(st.StartedAt))
	fmt.Fprintf(w, "Entries:\t%d (%d pinned)\n", st.Entries, st.Pinned)
	fmt.Fprintf(w, "Retention:\t%d unpinned\n", st.MaxUnpinned)
	fmt.Fprintf(w, "Poll interval:\t%s\n", st.PollInterval)
	return w.Flush()
}
