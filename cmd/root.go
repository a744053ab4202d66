package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iksnae/knowledge-console/internal"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	apiURL  string
	homeDir string
	journal bool
	logFile string
	envFile string
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"

	cfg *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kconsole",
	Short: "Terminal console for the knowledge assistant",
	Long: `A terminal client for the knowledge-assistant backend.

Ask questions against ingested documents, translate questions to SQL,
and browse the conversations the backend has stored for your account.
Every answered exchange is saved to your history while you are logged in.

Quick Start:
  kconsole login --username alice       # Store a credential
  kconsole chat                         # Interactive conversation
  kconsole ask "What is our Q3 revenue?" # One-shot question
  kconsole history list                 # Stored conversations

Settings come from KCONSOLE_* environment variables or a .env file;
flags override both.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)

		loaded, err := internal.LoadConfig(envFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("api-url") {
			loaded.APIURL = apiURL
		}
		if cmd.Flags().Changed("home") {
			loaded.Home = homeDir
		}
		if cmd.Flags().Changed("journal") {
			loaded.Journal = journal
		}
		if cmd.Flags().Changed("log-file") {
			loaded.LogFile = logFile
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		if loaded.LogFile != "" {
			internal.SetLogFile(loaded.LogFile)
		}

		cfg = loaded
		internal.LogDebug("api=%s home=%s journal=%t", cfg.APIURL, cfg.Home, cfg.Journal)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		internal.SyncLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", internal.DefaultAPIURL, "Backend base URL (env KCONSOLE_API_URL)")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "Directory for the credential and journal (env KCONSOLE_HOME)")
	rootCmd.PersistentFlags().BoolVar(&journal, "journal", false, "Record conversations that fail to save (env KCONSOLE_JOURNAL)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this rotating file (env KCONSOLE_LOG_FILE)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load settings from this file instead of ./.env")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
