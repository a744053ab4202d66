package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/iksnae/knowledge-console/internal"
	"github.com/spf13/cobra"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Inspect and re-send conversations that failed to save",
	Long: `Conversations are saved in the background after every answer and a
failed save is not retried. With --journal (or KCONSOLE_JOURNAL=true) each
failure is recorded locally; these commands list and re-send them.`,
}

var syncPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List recorded save failures",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		j, err := a.openJournal()
		if err != nil {
			return err
		}
		records, err := j.Pending(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			internal.PrintInfo(out, "Nothing pending.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", sectionStyle.Render("ID"), sectionStyle.Render("Recorded"), sectionStyle.Render("Messages"), sectionStyle.Render("Error"))
		for _, rec := range records {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
				indexStyle.Render(rec.ID[:8]),
				rec.RecordedAt.Local().Format(time.DateTime),
				countStyle.Render(strconv.Itoa(len(rec.Entries))),
				rec.Error)
		}
		return w.Flush()
	},
}

var syncFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Re-send recorded conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if !a.auth.Authenticated() {
			return errNotLoggedIn
		}
		j, err := a.openJournal()
		if err != nil {
			return err
		}

		delivered, err := j.Flush(cmd.Context(), a.client, a.auth.Token())
		out := cmd.OutOrStdout()
		if delivered > 0 {
			internal.PrintSuccess(out, fmt.Sprintf("Re-sent %d conversation(s).", delivered))
		}
		if err != nil {
			return err
		}
		if delivered == 0 {
			internal.PrintInfo(out, "Nothing pending.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncPendingCmd)
	syncCmd.AddCommand(syncFlushCmd)
}
