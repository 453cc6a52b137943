// ABOUTME: HTTP transport that attaches the stored bearer token to outgoing requests
// ABOUTME: Auth endpoints are exempt so a stale credential can never mask an auth error

package transport

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orion-forum/orion-cli/internal/session"
	"golang.org/x/sync/singleflight"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"

	// headerRetry marks a request already replayed after a token
	// refresh; a 401 on a marked request is terminal for that request.
	headerRetry = "X-Retry"
)

const defaultRefreshTimeout = 15 * time.Second

// authEndpoints never receive a bearer header and never trigger a
// refresh; their 401s mean exactly what they say.
var authEndpoints = []string{"/auth/login", "/auth/register", "/auth/refresh"}

func isAuthEndpoint(path string) bool {
	for _, p := range authEndpoints {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// Transport is an http.RoundTripper that authorizes outgoing requests
// from the credential store and recovers 401s by refreshing the token
// once per failure burst. Concurrent failures share one refresh call.
type Transport struct {
	// Base is the underlying round tripper; nil means http.DefaultTransport.
	Base http.RoundTripper

	// Store is the single source of credential truth.
	Store *session.Store

	// RefreshURL is the absolute URL of the token refresh endpoint.
	RefreshURL string

	// RefreshTimeout bounds a refresh call so a hung refresh cannot
	// stall every waiting request forever. Zero means the default.
	RefreshTimeout time.Duration

	// OnSessionExpired runs after the session is cleared on a terminal
	// auth failure, e.g. to steer the UI to the login surface.
	OnSessionExpired func()

	group singleflight.Group
}

// New creates a transport over http.DefaultTransport.
func New(store *session.Store, refreshURL string) *Transport {
	return &Transport{
		Store:      store,
		RefreshURL: refreshURL,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Set(headerRequestID, uuid.NewString())

	if isAuthEndpoint(req.URL.Path) {
		return t.base().RoundTrip(out)
	}

	if token := t.Store.AccessToken(); token != "" {
		out.Header.Set(headerAuthorization, "Bearer "+token)
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || req.Header.Get(headerRetry) != "" {
		return resp, nil
	}

	return t.recover(req, resp)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) refreshTimeout() time.Duration {
	if t.RefreshTimeout > 0 {
		return t.RefreshTimeout
	}
	return defaultRefreshTimeout
}
