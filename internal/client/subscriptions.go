// ABOUTME: Topic subscription operations for the signed-in user

package client

import (
	"context"
	"fmt"
	"net/http"
)

// Subscription links the signed-in user to a topic.
type Subscription struct {
	ID        int64  `json:"id"`
	TopicID   int64  `json:"topicId"`
	TopicName string `json:"topicName"`
}

type subscribeRequest struct {
	TopicID int64 `json:"topicId"`
}

// Subscribe calls POST /subscriptions.
func (c *Client) Subscribe(ctx context.Context, topicID int64) (*Subscription, error) {
	var sub Subscription
	if err := c.send(ctx, http.MethodPost, "/subscriptions", subscribeRequest{TopicID: topicID}, &sub, "an error occurred while subscribing to the topic"); err != nil {
		return nil, err
	}
	return &sub, nil
}

// MySubscriptions calls GET /subscriptions/me.
func (c *Client) MySubscriptions(ctx context.Context) ([]Subscription, error) {
	var subs []Subscription
	if err := c.get(ctx, "/subscriptions/me", &subs, "an error occurred while loading subscriptions"); err != nil {
		return nil, err
	}
	return subs, nil
}

// Unsubscribe calls DELETE /subscriptions/{id}.
func (c *Client) Unsubscribe(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/subscriptions/%d", id), "an error occurred while unsubscribing from the topic")
}
