// ABOUTME: Login command: authenticates and persists the session locally

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/orion-forum/orion-cli/internal/client"
	"github.com/orion-forum/orion-cli/internal/session"
)

var (
	loginIdentifier string
	loginPassword   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the Orion forum",
	Long:  `Authenticate against the Orion service and store the session locally. Missing credentials are prompted for interactively.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runLogin(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginIdentifier, "identifier", "i", "", "Username or email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

// runLogin executes the login flow and returns an exit code
func runLogin(ctx context.Context, w io.Writer) int {
	e, err := newEnv(w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	identifier, password := loginIdentifier, loginPassword
	if identifier == "" || password == "" {
		if err := promptCredentials(&identifier, &password); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}

	resp, err := e.client.Login(ctx, client.LoginRequest{
		Identifier: identifier,
		Password:   password,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	err = e.store.Persist(session.Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		UserID:       resp.UserID,
		Username:     resp.Username,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: could not save the session: %v\n", err)
		return 2
	}

	fmt.Fprintf(w, "Signed in as %s\n", resp.Username)
	return 0
}

// promptCredentials asks for whichever credential is still missing
func promptCredentials(identifier, password *string) error {
	var fields []huh.Field
	if *identifier == "" {
		fields = append(fields, huh.NewInput().
			Title("Username or email").
			Value(identifier))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password))
	}

	form := huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeBase())
	return form.Run()
}
