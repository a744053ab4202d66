package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/knowledge-console/internal"
	"github.com/spf13/cobra"
)

var askRaw bool

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question",
	Long: `Send one question and print the answer.

The exchange is a new two-entry conversation, saved to your history when
you are logged in.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		if strings.TrimSpace(question) == "" {
			return fmt.Errorf("question is empty")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		cs := internal.NewChatSession(a.client, a.auth, a.agentOptions()...)
		cs.Sync.Attach(cs.Store)
		// wait for the save before exiting
		defer cs.Sync.Wait()

		out := cmd.OutOrStdout()
		var outcome internal.Outcome
		internal.ShowProgress(cmd.Context(), cmd.ErrOrStderr(), "Assistant is typing...", func() {
			outcome = cs.Submit(cmd.Context(), question)
		})

		last, ok := cs.Store.Last()
		if !ok {
			return fmt.Errorf("no answer recorded")
		}
		if askRaw {
			_, _ = fmt.Fprintln(out, last.Content.Render())
		} else {
			renderEntry(out, 0, 0, last)
		}

		if outcome == internal.OutcomeFailed {
			return fmt.Errorf("could not reach %s", cfg.APIURL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askRaw, "raw", false, "Print the answer without styling")
}
