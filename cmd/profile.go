// ABOUTME: Profile commands: show and update the authenticated user's profile

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
	profileUsername    string
	profileEmail       string
	profileNewPassword string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the authenticated user's profile",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runProfileShow(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update username, email, or password",
	Long:  `Update profile fields. The current password is always required and prompted for. When the server rotates the tokens, the stored session is updated in place.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runProfileUpdate(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileUsername, "username", "", "New username")
	profileUpdateCmd.Flags().StringVar(&profileEmail, "email", "", "New email address")
	profileUpdateCmd.Flags().StringVar(&profileNewPassword, "new-password", "", "New password")
	profileCmd.AddCommand(profileUpdateCmd)
	rootCmd.AddCommand(profileCmd)
}

// runProfileShow fetches and prints the profile
func runProfileShow(ctx context.Context, w io.Writer) int {
	e, err := newEnv(w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if !requireSession(e, w) {
		return 1
	}

	me, err := e.client.GetMe(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		printJSON(w, me)
		return 0
	}

	fmt.Fprintf(w, "Username: %s\nEmail:    %s\nUser ID:  %d\n", me.Username, me.Email, me.ID)
	return 0
}

// runProfileUpdate applies the requested changes
func runProfileUpdate(ctx context.Context, w io.Writer) int {
	e, err := newEnv(w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if !requireSession(e, w) {
		return 1
	}

	if profileUsername == "" && profileEmail == "" && profileNewPassword == "" {
		fmt.Fprintln(w, "Nothing to update. Pass --username, --email, or --new-password.")
		return 1
	}

	var password string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Current password").
			EchoMode(huh.EchoModePassword).
			Value(&password),
	)).WithTheme(huh.ThemeBase())
	if err := form.Run(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	resp, err := e.client.UpdateProfile(ctx, client.UpdateProfileRequest{
		Password:    password,
		Username:    profileUsername,
		Email:       profileEmail,
		NewPassword: profileNewPassword,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	// A username or password change rotates the tokens; re-persist the
	// whole session so the stored identity follows the change.
	if resp.AccessToken != "" {
		refresh := resp.RefreshToken
		if refresh == "" {
			refresh = e.store.RefreshToken()
		}
		err := e.store.Persist(session.Credentials{
			AccessToken:  resp.AccessToken,
			RefreshToken: refresh,
			UserID:       resp.User.ID,
			Username:     resp.User.Username,
		})
		if err != nil {
			fmt.Fprintf(w, "Warning: could not update the stored session: %v\n", err)
		}
	}

	fmt.Fprintf(w, "Profile updated. Username: %s, email: %s\n", resp.User.Username, resp.User.Email)
	return 0
}
