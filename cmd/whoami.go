// ABOUTME: Whoami command: shows the locally stored session state
// ABOUTME: Reads only local state; the server remains the judge of validity

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/orion-forum/orion-cli/internal/session"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Run: func(cmd *cobra.Command, args []string) {
		if exitCode := runWhoami(os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// whoamiOutput is the JSON shape for --json output
type whoamiOutput struct {
	Authenticated  bool   `json:"authenticated"`
	Username       string `json:"username,omitempty"`
	UserID         int64  `json:"userId,omitempty"`
	TokenExpiresAt string `json:"tokenExpiresAt,omitempty"`
	ExpiresSoon    bool   `json:"expiresSoon,omitempty"`
}

// expirySoonWindow is how close to expiry the access token may get
// before whoami points it out.
const expirySoonWindow = 5 * time.Minute

// runWhoami prints the session view and returns an exit code
func runWhoami(w io.Writer) int {
	e, err := newEnv(w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	view := session.NewReader(e.store).Read()
	out := whoamiOutput{Authenticated: view.Authenticated}

	if view.Authenticated {
		out.Username = view.Username
		if creds := e.store.Read(); creds != nil {
			out.UserID = creds.UserID
			if expiry, ok := session.TokenExpiry(creds.AccessToken); ok {
				out.TokenExpiresAt = expiry.Format(time.RFC3339)
				out.ExpiresSoon = session.TokenExpiresWithin(creds.AccessToken, expirySoonWindow)
			}
		}
	}

	if IsJSONOutput() {
		printJSON(w, out)
		if !out.Authenticated {
			return 1
		}
		return 0
	}

	if !out.Authenticated {
		fmt.Fprintln(w, "Not signed in.")
		return 1
	}

	fmt.Fprintf(w, "Signed in as %s (user %d)\n", out.Username, out.UserID)
	if out.TokenExpiresAt != "" {
		fmt.Fprintf(w, "Access token expires at %s\n", out.TokenExpiresAt)
	}
	if out.ExpiresSoon {
		fmt.Fprintln(w, "The access token expires soon; it is refreshed automatically on the next request.")
	}
	return 0
}
