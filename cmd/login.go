package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iksnae/knowledge-console/internal"
	"github.com/spf13/cobra"
)

var (
	loginToken    string
	loginUsername string
	loginPassword string
	loginStatus   bool
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a credential for the backend",
	Long: `Log in with a username and password, or install an existing token.

The token is kept in the console home directory and sent as a bearer
credential with every request until you log out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if loginStatus {
			if !a.auth.Authenticated() {
				internal.PrintInfo(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			internal.PrintInfo(cmd.OutOrStdout(), describeCredential(a.auth, "Logged in"))
			return nil
		}

		token := strings.TrimSpace(loginToken)
		if token == "" {
			if loginUsername == "" {
				return errors.New("either --token or --username is required")
			}
			password := loginPassword
			if password == "" {
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			resp, err := a.client.Login(cmd.Context(), loginUsername, password)
			if err != nil {
				var apiErr *internal.APIError
				if errors.As(err, &apiErr) {
					return errors.New(apiErr.Detail)
				}
				return err
			}
			token = resp.AccessToken
		}

		if err := a.auth.Login(token); err != nil {
			return err
		}

		internal.PrintSuccess(cmd.OutOrStdout(), describeCredential(a.auth, "Logged in"))
		return nil
	},
}

// describeCredential names the token subject and expiry when the token
// carries them. Opaque tokens get the bare prefix.
func describeCredential(auth *internal.AuthContext, prefix string) string {
	claims, err := auth.Claims()
	if err != nil || claims.Subject == "" {
		return prefix + "."
	}
	msg := fmt.Sprintf("%s as %s.", prefix, claims.Subject)
	if claims.ExpiresAt.IsZero() {
		return msg
	}
	if claims.Expired(time.Now()) {
		return msg + fmt.Sprintf(" Token expired %s.", claims.ExpiresAt.Local().Format(time.RFC1123))
	}
	return msg + fmt.Sprintf(" Token expires %s.", claims.ExpiresAt.Local().Format(time.RFC1123))
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.auth.Logout(); err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Install this token instead of logging in")
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Account name")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginStatus, "status", false, "Show the stored credential and exit")
}
