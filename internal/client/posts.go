// ABOUTME: Post operations: listing, filtering, CRUD
// ABOUTME: Sort and order travel as query parameters on the author listing

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Comment is a reader comment attached to a post.
type Comment struct {
	ID             int64     `json:"id"`
	Content        string    `json:"content"`
	AuthorUsername string    `json:"authorUsername"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Post is a forum post as returned by the service. Comments are only
// populated on the single-post endpoint.
type Post struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	TopicID        int64     `json:"topicId"`
	TopicName      string    `json:"topicName"`
	AuthorUsername string    `json:"authorUsername"`
	Comments       []Comment `json:"comments"`
}

// PostPayload creates or replaces a post.
type PostPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	TopicID int64  `json:"topicId"`
}

// Sort fields accepted by the author listing.
const (
	SortCreatedAt = "createdAt"
	SortTitle     = "title"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// PostQuery narrows and orders the author listing. Empty fields are
// omitted and the server applies its defaults.
type PostQuery struct {
	Sort  string
	Order string
}

func (q PostQuery) encode() string {
	v := url.Values{}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// Posts calls GET /posts.
func (c *Client) Posts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := c.get(ctx, "/posts", &posts, "an error occurred while loading posts"); err != nil {
		return nil, err
	}
	return posts, nil
}

// PostsByAuthor calls GET /posts/user/{id} with optional sort/order.
func (c *Client) PostsByAuthor(ctx context.Context, userID int64, query PostQuery) ([]Post, error) {
	var posts []Post
	path := fmt.Sprintf("/posts/user/%d%s", userID, query.encode())
	if err := c.get(ctx, path, &posts, "an error occurred while loading posts"); err != nil {
		return nil, err
	}
	return posts, nil
}

// PostsByTopic calls GET /posts/topic/{id}.
func (c *Client) PostsByTopic(ctx context.Context, topicID int64) ([]Post, error) {
	var posts []Post
	path := fmt.Sprintf("/posts/topic/%d", topicID)
	if err := c.get(ctx, path, &posts, "an error occurred while loading posts"); err != nil {
		return nil, err
	}
	return posts, nil
}

// Post calls GET /posts/{id}.
func (c *Client) Post(ctx context.Context, id int64) (*Post, error) {
	var post Post
	path := fmt.Sprintf("/posts/%d", id)
	if err := c.get(ctx, path, &post, "an error occurred while loading the post"); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost calls POST /posts.
func (c *Client) CreatePost(ctx context.Context, payload PostPayload) (*Post, error) {
	var post Post
	if err := c.send(ctx, http.MethodPost, "/posts", payload, &post, "an error occurred while creating the post"); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost calls PUT /posts/{id}.
func (c *Client) UpdatePost(ctx context.Context, id int64, payload PostPayload) (*Post, error) {
	var post Post
	path := fmt.Sprintf("/posts/%d", id)
	if err := c.send(ctx, http.MethodPut, path, payload, &post, "an error occurred while updating the post"); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost calls DELETE /posts/{id}.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/posts/%d", id), "an error occurred while deleting the post")
}
