// ABOUTME: Subscription commands: list, add, and remove topic subscriptions

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

var subscriptionsCmd = &cobra.Command{
	Use:     "subscriptions",
	Aliases: []string{"subs"},
	Short:   "Manage topic subscriptions",
}

var subscriptionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your subscriptions",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runSubscriptionsList(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var subscriptionsAddCmd = &cobra.Command{
	Use:   "add <topicID>",
	Short: "Subscribe to a topic",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runSubscriptionsAdd(ctx, os.Stdout, args[0]); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var subscriptionsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a subscription",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runSubscriptionsRemove(ctx, os.Stdout, args[0]); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	subscriptionsCmd.AddCommand(subscriptionsListCmd, subscriptionsAddCmd, subscriptionsRemoveCmd)
	rootCmd.AddCommand(subscriptionsCmd)
}

// runSubscriptionsList fetches and prints the user's subscriptions
func runSubscriptionsList(ctx context.Context, w io.Writer) int {
	e, err := newEnv(w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if !requireSession(e, w) {
		return 1
	}

	subs, err := e.client.MySubscriptions(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		printJSON(w, subs)
		return 0
	}

	if len(subs) == 0 {
		fmt.Fprintln(w, "You are not subscribed to any topics.")
		return 0
	}
	for _, sub := range subs {
		fmt.Fprintf(w, "%6d  topic %d  %s\n", sub.ID, sub.TopicID, sub.TopicName)
	}
	return 0
}

// runSubscriptionsAdd subscribes to a topic
func runSubscriptionsAdd(ctx context.Context, w io.Writer, arg string) int {
	e, err := newEnv(w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if !requireSession(e, w) {
		return 1
	}

	topicID, err := parseID(arg)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	sub, err := e.client.Subscribe(ctx, topicID)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	fmt.Fprintf(w, "Subscribed to %s (subscription %d)\n", sub.TopicName, sub.ID)
	return 0
}

// runSubscriptionsRemove removes a subscription
func runSubscriptionsRemove(ctx context.Context, w io.Writer, arg string) int {
	e, err := newEnv(w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if !requireSession(e, w) {
		return 1
	}

	id, err := parseID(arg)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if err := e.client.Unsubscribe(ctx, id); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	fmt.Fprintf(w, "Removed subscription %d\n", id)
	return 0
}
