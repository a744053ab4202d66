package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/knowledge-console/internal"
	"github.com/spf13/cobra"
)

// nl2sqlCmd represents the nl2sql command
var nl2sqlCmd = &cobra.Command{
	Use:   "nl2sql <question>",
	Short: "Translate a question into SQL",
	Long: `Ask the backend to translate a natural-language question into SQL and
print the generated statement with the result it reports.

NL2SQL answers are not part of any conversation and are never saved.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		d := internal.NewSQLDispatcher(a.client, a.auth)
		var outcome internal.Outcome
		internal.ShowProgress(cmd.Context(), cmd.ErrOrStderr(), "Generating SQL...", func() {
			outcome = d.Submit(cmd.Context(), strings.Join(args, " "))
		})
		if outcome == internal.OutcomeRejectedEmpty {
			return fmt.Errorf("question is empty")
		}

		answer := d.Answer()
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, sectionStyle.Render("Generated SQL"))
		_, _ = fmt.Fprintln(out, structuredContentStyle.Render(answer.SQL.Render()))
		if answer.Result != nil {
			_, _ = fmt.Fprintln(out, sectionStyle.Render("Result"))
			_, _ = fmt.Fprintln(out, messageContentStyle.Render(answer.Result.Render()))
		}

		if outcome == internal.OutcomeFailed {
			return fmt.Errorf("could not reach %s", cfg.APIURL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nl2sqlCmd)
}
