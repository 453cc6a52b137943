// ABOUTME: Root command for the orion CLI
// ABOUTME: Handles global flags and builds the shared client/session wiring

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/orion-forum/orion-cli/config"
	"github.com/orion-forum/orion-cli/internal/client"
	"github.com/orion-forum/orion-cli/internal/session"
)

var (
	apiURL     string
	jsonOutput bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "orion",
	Short: "CLI for the Orion forum",
	Long: `orion is a command-line interface for the Orion forum service.

Sign in once with 'orion login'; the session is stored locally and
refreshed automatically when the access token expires.

Environment Variables:
  ORION_API_URL          Service URL (default: http://localhost:8080)
  ORION_CONFIG_DIR       Session and log directory (default: ~/.config/orion)
  ORION_TIMEOUT          Per-request timeout in seconds (default: 30)
  ORION_REFRESH_TIMEOUT  Token refresh timeout in seconds (default: 15)`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Service URL (overrides ORION_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// env bundles the configuration, credential store, and API client that
// every subcommand needs.
type env struct {
	cfg    *config.Config
	store  *session.Store
	client *client.Client
}

// newEnv loads configuration and wires the client. The --api-url flag
// takes priority over the environment.
func newEnv(w io.Writer) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	store := session.NewStore(session.DefaultPath(cfg.ConfigDir))
	c := client.New(cfg.APIURL, store, client.Options{
		Timeout:        cfg.RequestTimeout,
		RefreshTimeout: cfg.RefreshTimeout,
	})
	c.OnSessionExpired(func() {
		fmt.Fprintln(w, "Your session has expired. Run 'orion login' to sign in again.")
	})

	return &env{cfg: cfg, store: store, client: c}, nil
}

// requireSession reports whether a local session exists, printing a
// hint when it does not. The server still has the final word.
func requireSession(e *env, w io.Writer) bool {
	if session.NewReader(e.store).CanEnter() {
		return true
	}
	fmt.Fprintln(w, "You are signed out. Run 'orion login' first.")
	return false
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}
