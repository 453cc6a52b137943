// ABOUTME: Single-flight token refresh and one-shot request replay on 401
// ABOUTME: Refresh failure is terminal: the session is cleared and the original error propagates

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// refreshResponse mirrors the login payload returned by the refresh
// endpoint. Only the tokens matter here; identity was stored at login.
type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       int64  `json:"userId"`
	Username     string `json:"username"`
}

// recover handles a 401 on an eligible request: join or start the
// shared refresh, then replay the request exactly once with the fresh
// token. When refresh is not possible or fails, the original response
// is returned untouched.
func (t *Transport) recover(req *http.Request, resp *http.Response) (*http.Response, error) {
	if t.Store.RefreshToken() == "" {
		t.expireSession()
		return resp, nil
	}

	// All concurrent 401s within the window share this one call. The
	// group forgets the key once the call settles, on success and
	// failure alike, so the next burst starts a fresh attempt.
	token, _, _ := t.group.Do("refresh", func() (any, error) {
		return t.refresh(), nil
	})

	newToken, _ := token.(string)
	if newToken == "" {
		return resp, nil
	}

	retry, ok := t.cloneForRetry(req, newToken)
	if !ok {
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return t.base().RoundTrip(retry)
}

// refresh performs the token refresh call and returns the new access
// token, or "" on any failure. It deliberately never returns an error:
// each waiter propagates its own original response instead, and a
// transport error, a non-2xx status, and a malformed body are all the
// same terminal outcome.
func (t *Transport) refresh() string {
	refreshToken := t.Store.RefreshToken()
	if refreshToken == "" {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.refreshTimeout())
	defer cancel()

	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.RefreshURL, bytes.NewReader(body))
	if err != nil {
		slog.Error("Failed to create refresh request", "error", err)
		t.expireSession()
		return ""
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		slog.Warn("Token refresh request failed", "error", err)
		t.expireSession()
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("Token refresh rejected", "status", resp.StatusCode)
		t.expireSession()
		return ""
	}

	var tokens refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil || tokens.AccessToken == "" {
		slog.Warn("Token refresh returned malformed response", "error", err)
		t.expireSession()
		return ""
	}

	if err := t.Store.UpdateTokens(tokens.AccessToken, tokens.RefreshToken); err != nil {
		slog.Error("Failed to store refreshed tokens", "error", err)
	}

	return tokens.AccessToken
}

// cloneForRetry rebuilds the original request with the fresh token and
// the retry marker. Requests whose body cannot be re-produced are not
// replayed.
func (t *Transport) cloneForRetry(req *http.Request, token string) (*http.Request, bool) {
	if req.Body != nil && req.GetBody == nil {
		slog.Debug("Cannot replay request without a reproducible body", "url", req.URL.Path)
		return nil, false
	}

	retry := req.Clone(req.Context())
	retry.Header.Set(headerAuthorization, "Bearer "+token)
	retry.Header.Set(headerRetry, "true")
	retry.Header.Set(headerRequestID, uuid.NewString())

	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, false
		}
		retry.Body = body
	}

	return retry, true
}

// expireSession destroys the stored credentials and informs the UI.
func (t *Transport) expireSession() {
	if err := t.Store.Clear(); err != nil {
		slog.Error("Failed to clear session", "error", err)
	}
	if t.OnSessionExpired != nil {
		t.OnSessionExpired()
	}
}
