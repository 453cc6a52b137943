// ABOUTME: HTTP client for the Orion forum API
// ABOUTME: Wires the authorizing transport and shares request/decode plumbing

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/orion-forum/orion-cli/internal/session"
	"github.com/orion-forum/orion-cli/internal/transport"
)

// Options tunes the client; zero values pick sensible defaults.
type Options struct {
	Timeout        time.Duration // per-request, default 30s
	RefreshTimeout time.Duration // token refresh bound, default 15s
}

// Client is the API client for the Orion forum service. All requests
// go through the authorizing transport, so callers never deal with
// tokens or 401 recovery themselves.
type Client struct {
	baseURL    string
	httpClient *http.Client
	transport  *transport.Transport
}

// New creates a client for the service at baseURL (without the /api
// suffix), authorized from the given credential store.
func New(baseURL string, store *session.Store, opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	apiURL := baseURL + "/api"
	tr := transport.New(store, apiURL+"/auth/refresh")
	tr.RefreshTimeout = opts.RefreshTimeout

	return &Client{
		baseURL: apiURL,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: tr,
		},
		transport: tr,
	}
}

// OnSessionExpired installs a hook that runs when the session is torn
// down after a terminal auth failure. Install before issuing requests.
func (c *Client) OnSessionExpired(fn func()) {
	c.transport.OnSessionExpired = fn
}

// get issues a GET and decodes the response into out.
func (c *Client) get(ctx context.Context, path string, out any, fallback string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(ctx, req, out, fallback)
}

// send issues a request with a JSON body and optionally decodes the
// response into out (nil means the body is discarded).
func (c *Client) send(ctx context.Context, method, path string, in, out any, fallback string) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(ctx, req, out, fallback)
}

// delete issues a DELETE with no body.
func (c *Client) delete(ctx context.Context, path string, fallback string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(ctx, req, nil, fallback)
}

func (c *Client) do(ctx context.Context, req *http.Request, out any, fallback string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp, fallback)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from the Orion service: %w", err)
	}
	return nil
}
