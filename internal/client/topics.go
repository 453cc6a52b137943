// ABOUTME: Topic listing

package client

import "context"

// Topic groups posts under a named subject.
type Topic struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Topics calls GET /topics.
func (c *Client) Topics(ctx context.Context) ([]Topic, error) {
	var topics []Topic
	if err := c.get(ctx, "/topics", &topics, "an error occurred while loading topics"); err != nil {
		return nil, err
	}
	return topics, nil
}
