// ABOUTME: TUI command: launches the interactive terminal interface

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orion-forum/orion-cli/internal/tui"
	"github.com/orion-forum/orion-cli/logger"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal interface",
	Long:  `Browse posts, topics, and subscriptions interactively. Logs move to a file under the config directory so they do not corrupt the display.`,
	Run: func(cmd *cobra.Command, args []string) {
		if exitCode := runTUI(); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI starts the TUI and returns an exit code
func runTUI() int {
	e, err := newEnv(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	// The alternate screen owns stderr now; log to a file instead.
	if err := logger.InitFile(e.cfg.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open the log file: %v\n", err)
	}

	if err := tui.Run(e.client, e.store); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}
