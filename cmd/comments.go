// ABOUTME: Comment commands: list a post's comments, add a new one

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/orion-forum/orion-cli/internal/client"
)

var commentContent string

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Browse and add comments",
}

var commentsListCmd = &cobra.Command{
	Use:   "list <postID>",
	Short: "List a post's comments",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runCommentsList(ctx, os.Stdout, args[0]); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var commentsCreateCmd = &cobra.Command{
	Use:   "create <postID>",
	Short: "Add a comment to a post",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runCommentsCreate(ctx, os.Stdout, args[0]); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	commentsCreateCmd.Flags().StringVar(&commentContent, "content", "", "Comment text")
	commentsCmd.AddCommand(commentsListCmd, commentsCreateCmd)
	rootCmd.AddCommand(commentsCmd)
}

// runCommentsList fetches a post's comments and returns an exit code
func runCommentsList(ctx context.Context, w io.Writer, arg string) int {
	e, err := newEnv(w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if !requireSession(e, w) {
		return 1
	}

	postID, err := parseID(arg)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	comments, err := e.client.CommentsByPost(ctx, postID)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		printJSON(w, comments)
		return 0
	}

	if len(comments) == 0 {
		fmt.Fprintln(w, "No comments yet.")
		return 0
	}
	for _, comment := range comments {
		fmt.Fprintf(w, "[%d] %s: %s\n", comment.ID, comment.AuthorUsername, comment.Content)
	}
	return 0
}

// runCommentsCreate adds a comment and returns an exit code
func runCommentsCreate(ctx context.Context, w io.Writer, arg string) int {
	e, err := newEnv(w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if !requireSession(e, w) {
		return 1
	}

	postID, err := parseID(arg)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if commentContent == "" {
		fmt.Fprintln(w, "Error: --content is required")
		return 2
	}

	comment, err := e.client.CreateComment(ctx, client.CommentPayload{
		PostID:  postID,
		Content: commentContent,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	fmt.Fprintf(w, "Added comment %d to post %d\n", comment.ID, postID)
	return 0
}
