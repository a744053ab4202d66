package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/knowledge-console/internal"
	"github.com/spf13/cobra"
)

var healthcheckVerbose bool

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the console can reach and use the backend",
	Long: `Check the health of the console by verifying:
  • Backend reachability
  • Stored credential and its expiry
  • History access for the credential
  • Conversations waiting in the local journal

This command is useful for debugging connection and login problems.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, sectionStyle.Render("Knowledge Console Health Check"))
		_, _ = fmt.Fprintln(out)

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		// Step 1: Backend
		_, _ = fmt.Fprintln(out, infoLine("Step 1: Contacting backend..."))
		start := time.Now()
		status, err := a.client.Health(cmd.Context())
		if err != nil {
			internal.PrintError(out, fmt.Sprintf("Backend unreachable at %s", cfg.APIURL))
			if healthcheckVerbose {
				_, _ = fmt.Fprintf(out, "   %v\n", err)
			}
			return fmt.Errorf("health check failed: backend unreachable")
		}
		internal.PrintSuccess(out, fmt.Sprintf("Backend reachable (HTTP %d)", status))
		if healthcheckVerbose {
			_, _ = fmt.Fprintf(out, "   URL: %s\n", cfg.APIURL)
			_, _ = fmt.Fprintf(out, "   Round trip: %s\n", time.Since(start).Round(time.Millisecond))
		}
		_, _ = fmt.Fprintln(out)

		// Step 2: Credential
		_, _ = fmt.Fprintln(out, infoLine("Step 2: Checking credential..."))
		authenticated := checkCredential(out, a.auth)
		_, _ = fmt.Fprintln(out)

		// Step 3: History
		_, _ = fmt.Fprintln(out, infoLine("Step 3: Loading history..."))
		stored := -1
		if authenticated {
			resp, err := a.client.FetchHistory(cmd.Context(), a.auth.Token())
			if err != nil {
				internal.PrintError(out, "History unavailable")
				if healthcheckVerbose {
					_, _ = fmt.Fprintf(out, "   %v\n", err)
				}
			} else {
				stored = len(resp.Chats)
				internal.PrintSuccess(out, fmt.Sprintf("Found %d stored conversation(s)", stored))
			}
		} else {
			internal.PrintWarning(out, "Skipped: not logged in")
		}
		_, _ = fmt.Fprintln(out)

		// Step 4: Journal
		_, _ = fmt.Fprintln(out, infoLine("Step 4: Checking save journal..."))
		pending := checkJournal(cmd, out, a)
		_, _ = fmt.Fprintln(out)

		// Summary
		_, _ = fmt.Fprintln(out, sectionStyle.Render("Summary"))
		_, _ = fmt.Fprintln(out)
		switch {
		case authenticated && stored >= 0:
			internal.PrintSuccess(out, "Health check passed!")
			_, _ = fmt.Fprintf(out, "   • Conversations: %d stored\n", stored)
		case authenticated:
			internal.PrintError(out, "Health check failed")
			_, _ = fmt.Fprintln(out, "   • Credential present but history could not be loaded")
			return errors.New("health check failed: history unavailable")
		default:
			internal.PrintWarning(out, "Backend reachable, but conversations will not be saved until you log in")
		}
		if pending > 0 {
			_, _ = fmt.Fprintf(out, "   • %d conversation(s) waiting in the journal (kconsole sync flush)\n", pending)
		}
		return nil
	},
}

func infoLine(s string) string {
	return metaStyle.Render(s)
}

func checkCredential(out io.Writer, auth *internal.AuthContext) bool {
	if !auth.Authenticated() {
		internal.PrintWarning(out, "No credential stored")
		return false
	}

	claims, err := auth.Claims()
	if err != nil {
		internal.PrintSuccess(out, "Credential present (opaque token)")
		return true
	}
	if claims.Expired(time.Now()) {
		internal.PrintWarning(out, fmt.Sprintf("Credential expired at %s", claims.ExpiresAt.Local().Format(time.RFC1123)))
		return true
	}
	internal.PrintSuccess(out, "Credential present")
	if healthcheckVerbose {
		if claims.Subject != "" {
			_, _ = fmt.Fprintf(out, "   Subject: %s\n", claims.Subject)
		}
		if !claims.ExpiresAt.IsZero() {
			_, _ = fmt.Fprintf(out, "   Expires: %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
		}
	}
	return true
}

func checkJournal(cmd *cobra.Command, out io.Writer, a *app) int {
	if !cfg.Journal {
		internal.PrintInfo(out, "Journal disabled")
		return 0
	}
	j, err := a.openJournal()
	if err != nil {
		internal.PrintError(out, fmt.Sprintf("Journal unreadable: %v", err))
		return 0
	}
	records, err := j.Pending(cmd.Context())
	if err != nil {
		internal.PrintError(out, fmt.Sprintf("Journal unreadable: %v", err))
		return 0
	}
	if len(records) == 0 {
		internal.PrintSuccess(out, "No failed saves recorded")
		return 0
	}
	internal.PrintWarning(out, fmt.Sprintf("%d failed save(s) recorded", len(records)))
	return len(records)
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckVerbose, "details", false, "Show detailed diagnostic information")
}
