// ABOUTME: API error type and the uniform error-message resolution cascade
// ABOUTME: Every non-2xx body goes through the same fallback chain

package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const maxErrorBody = 1 << 20

// APIError carries the HTTP status and a user-displayable message
// already resolved through the cascade.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is an APIError with status 401.
// Reaching this point means the refresh path already gave up.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusUnauthorized
}

// errorFromResponse builds an APIError from a failed response using
// the operation's fallback message.
func errorFromResponse(resp *http.Response, fallback string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Status:  resp.StatusCode,
		Message: resolveErrorMessage(body, fallback),
	}
}

// resolveErrorMessage applies the message cascade shared by every
// operation: first entry of a non-empty errors array, then an error
// field, then a message field, then the operation's own fallback.
func resolveErrorMessage(body []byte, fallback string) string {
	if v := gjson.GetBytes(body, "errors.0"); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
		return v.String()
	}
	if v := gjson.GetBytes(body, "error"); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
		return v.String()
	}
	if v := gjson.GetBytes(body, "message"); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
		return v.String()
	}
	return fallback
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return fmt.Errorf("request canceled")
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot reach the Orion service at %s: %w", c.baseURL, err)
}
