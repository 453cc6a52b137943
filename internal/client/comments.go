// ABOUTME: Comment operations: create under a post, list per post

package client

import (
	"context"
	"fmt"
	"net/http"
)

// CommentPayload attaches a new comment to a post.
type CommentPayload struct {
	PostID  int64  `json:"postId"`
	Content string `json:"content"`
}

// CreateComment calls POST /comments.
func (c *Client) CreateComment(ctx context.Context, payload CommentPayload) (*Comment, error) {
	var comment Comment
	if err := c.send(ctx, http.MethodPost, "/comments", payload, &comment, "an error occurred while posting the comment"); err != nil {
		return nil, err
	}
	return &comment, nil
}

// CommentsByPost calls GET /comments/post/{postId}.
func (c *Client) CommentsByPost(ctx context.Context, postID int64) ([]Comment, error) {
	var comments []Comment
	path := fmt.Sprintf("/comments/post/%d", postID)
	if err := c.get(ctx, path, &comments, "an error occurred while loading comments"); err != nil {
		return nil, err
	}
	return comments, nil
}
