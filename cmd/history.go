package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/iksnae/knowledge-console/internal"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in (run kconsole login)")

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse stored conversations",
	Long:  `List and view the conversations the backend has stored for your account.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summaries, err := loadHistory(cmd)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), summaries, true)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <N>",
	Short: "Show stored conversation N",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := historyItem(cmd, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		renderHeader(out, summary.Title(), fmt.Sprintf("Messages: %d", summary.Count))
		renderConversation(out, summary.Entries)
		return nil
	},
}

// loadHistory fetches the list for the saved credential.
func loadHistory(cmd *cobra.Command) ([]internal.HistorySummary, error) {
	a, err := newApp()
	if err != nil {
		return nil, err
	}
	defer a.close()

	if !a.auth.Authenticated() {
		return nil, errNotLoggedIn
	}
	dir := internal.NewDirectory(a.client)
	dir.Load(cmd.Context(), a.auth.Token())
	return dir.Summaries(), nil
}

// historyItem resolves a 1-based conversation number.
func historyItem(cmd *cobra.Command, arg string) (internal.HistorySummary, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return internal.HistorySummary{}, fmt.Errorf("not a conversation number: %s", arg)
	}
	summaries, err := loadHistory(cmd)
	if err != nil {
		return internal.HistorySummary{}, err
	}
	if n < 1 || n > len(summaries) {
		return internal.HistorySummary{}, fmt.Errorf("%w: %d (have %d)", internal.ErrNoSuchConversation, n, len(summaries))
	}
	return summaries[n-1], nil
}

func printHistory(out io.Writer, summaries []internal.HistorySummary, authenticated bool) {
	if !authenticated {
		internal.PrintWarning(out, "Log in to see stored conversations.")
		return
	}
	if len(summaries) == 0 {
		internal.PrintInfo(out, "No stored conversations.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t\n", sectionStyle.Render("Chat"), sectionStyle.Render("Messages"), sectionStyle.Render("First question"))
	for _, s := range summaries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t\n", s.Title(), countStyle.Render(strconv.Itoa(s.Count)), previewOf(s.Entries, 50))
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}
