package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iksnae/knowledge-console/internal"
	"github.com/iksnae/knowledge-console/internal/stub"
	"github.com/spf13/cobra"
)

var (
	stubAddr   string
	stubUsers  []string
	stubSecret string
)

// serveStubCmd represents the serve-stub command
var serveStubCmd = &cobra.Command{
	Use:   "serve-stub",
	Short: "Run an in-memory backend for local testing",
	Long: `Serve the backend endpoints from memory: login, save_chat, get_chats,
query, nl2sql and ingest. Queries are echoed back and SQL is mocked.

Users can be created with --user name:password or through /signup.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := stub.New(stub.WithSecret(stubSecret))
		for _, u := range stubUsers {
			name, password, ok := strings.Cut(u, ":")
			if !ok || name == "" {
				return fmt.Errorf("invalid --user %q (want name:password)", u)
			}
			if err := s.AddUser(name, password); err != nil {
				return err
			}
		}

		srv := &http.Server{
			Addr:              stubAddr,
			Handler:           s.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()
		internal.PrintInfo(cmd.OutOrStdout(), fmt.Sprintf("Stub backend listening on %s", stubAddr))

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		internal.LogInfo("shutting down stub backend")
		return srv.Shutdown(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveStubCmd)
	serveStubCmd.Flags().StringVar(&stubAddr, "addr", ":8000", "Listen address")
	serveStubCmd.Flags().StringArrayVar(&stubUsers, "user", nil, "Pre-register name:password (repeatable)")
	serveStubCmd.Flags().StringVar(&stubSecret, "secret", "stub-secret", "Token signing key")
}
