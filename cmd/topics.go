// ABOUTME: Topics command: lists the available topics

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List topics",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runTopics(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}

// runTopics fetches and prints the topic list
func runTopics(ctx context.Context, w io.Writer) int {
	e, err := newEnv(w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if !requireSession(e, w) {
		return 1
	}

	topics, err := e.client.Topics(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		printJSON(w, topics)
		return 0
	}

	if len(topics) == 0 {
		fmt.Fprintln(w, "No topics found.")
		return 0
	}
	for _, topic := range topics {
		fmt.Fprintf(w, "%6d  %-24s  %s\n", topic.ID, topic.Name, topic.Description)
	}
	return 0
}
