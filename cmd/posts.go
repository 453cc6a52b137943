// ABOUTME: Post commands: list, show, create, update, delete

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/orion-forum/orion-cli/internal/client"
)

var (
	postsTopicID int64
	postsMine    bool
	postsSort    string
	postsOrder   string

	postTitle   string
	postContent string
	postTopicID int64
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Browse and manage posts",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts",
	Long: `List posts. With --mine the listing is scoped to your own posts and
may be sorted server-side with --sort and --order.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runPostsList(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var postsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a post with its comments",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runPostsShow(ctx, os.Stdout, args[0]); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runPostsCreate(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var postsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a post's title, content, and topic",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runPostsUpdate(ctx, os.Stdout, args[0]); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var postsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runPostsDelete(ctx, os.Stdout, args[0]); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	postsListCmd.Flags().Int64Var(&postsTopicID, "topic", 0, "List posts in a topic")
	postsListCmd.Flags().BoolVar(&postsMine, "mine", false, "List your own posts")
	postsListCmd.Flags().StringVar(&postsSort, "sort", "", "Sort field for --mine: createdAt or title")
	postsListCmd.Flags().StringVar(&postsOrder, "order", "", "Sort order for --mine: asc or desc")

	postsCreateCmd.Flags().StringVar(&postTitle, "title", "", "Post title")
	postsCreateCmd.Flags().StringVar(&postContent, "content", "", "Post content")
	postsCreateCmd.Flags().Int64Var(&postTopicID, "topic", 0, "Topic ID")

	postsUpdateCmd.Flags().StringVar(&postTitle, "title", "", "Post title")
	postsUpdateCmd.Flags().StringVar(&postContent, "content", "", "Post content")
	postsUpdateCmd.Flags().Int64Var(&postTopicID, "topic", 0, "Topic ID")

	postsCmd.AddCommand(postsListCmd, postsShowCmd, postsCreateCmd, postsUpdateCmd, postsDeleteCmd)
	rootCmd.AddCommand(postsCmd)
}

// parseID converts a positional argument to a numeric id
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// runPostsList fetches the requested listing and returns an exit code
func runPostsList(ctx context.Context, w io.Writer) int {
	e, err := newEnv(w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if !requireSession(e, w) {
		return 1
	}

	var posts []client.Post
	switch {
	case postsMine:
		creds := e.store.Read()
		if creds == nil {
			fmt.Fprintln(w, "You are signed out. Run 'orion login' first.")
			return 1
		}
		posts, err = e.client.PostsByAuthor(ctx, creds.UserID, client.PostQuery{
			Sort:  postsSort,
			Order: postsOrder,
		})
	case postsTopicID > 0:
		posts, err = e.client.PostsByTopic(ctx, postsTopicID)
	default:
		posts, err = e.client.Posts(ctx)
	}
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		printJSON(w, posts)
		return 0
	}

	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts found.")
		return 0
	}
	for _, post := range posts {
		fmt.Fprintf(w, "%6d  %-40s  %s  %s\n",
			post.ID, post.Title, post.AuthorUsername, post.CreatedAt.Format("2006-01-02"))
	}
	return 0
}

// runPostsShow fetches one post and returns an exit code
func runPostsShow(ctx context.Context, w io.Writer, arg string) int {
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

	post, err := e.client.Post(ctx, id)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		printJSON(w, post)
		return 0
	}

	fmt.Fprintf(w, "%s\nby %s in %s on %s\n\n%s\n",
		post.Title, post.AuthorUsername, post.TopicName,
		post.CreatedAt.Format("2006-01-02 15:04"), post.Content)
	if len(post.Comments) > 0 {
		fmt.Fprintf(w, "\nComments (%d):\n", len(post.Comments))
		for _, comment := range post.Comments {
			fmt.Fprintf(w, "  [%d] %s: %s\n", comment.ID, comment.AuthorUsername, comment.Content)
		}
	}
	return 0
}

// runPostsCreate creates a post and returns an exit code
func runPostsCreate(ctx context.Context, w io.Writer) int {
	e, err := newEnv(w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if !requireSession(e, w) {
		return 1
	}

	if postTitle == "" || postContent == "" || postTopicID <= 0 {
		fmt.Fprintln(w, "Error: --title, --content, and --topic are required")
		return 2
	}

	post, err := e.client.CreatePost(ctx, client.PostPayload{
		Title:   postTitle,
		Content: postContent,
		TopicID: postTopicID,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	fmt.Fprintf(w, "Created post %d: %s\n", post.ID, post.Title)
	return 0
}

// runPostsUpdate replaces a post and returns an exit code
func runPostsUpdate(ctx context.Context, w io.Writer, arg string) int {
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
	if postTitle == "" || postContent == "" || postTopicID <= 0 {
		fmt.Fprintln(w, "Error: --title, --content, and --topic are required")
		return 2
	}

	post, err := e.client.UpdatePost(ctx, id, client.PostPayload{
		Title:   postTitle,
		Content: postContent,
		TopicID: postTopicID,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	fmt.Fprintf(w, "Updated post %d: %s\n", post.ID, post.Title)
	return 0
}

// runPostsDelete deletes a post and returns an exit code
func runPostsDelete(ctx context.Context, w io.Writer, arg string) int {
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

	if err := e.client.DeletePost(ctx, id); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	fmt.Fprintf(w, "Deleted post %d\n", id)
	return 0
}
