// ABOUTME: Tests for bearer injection and auth-endpoint exemption
// ABOUTME: Uses httptest servers to observe exactly what goes on the wire

package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/orion-forum/orion-cli/internal/session"
)

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(filepath.Join(t.TempDir(), "session.json"))
}

func seedSession(t *testing.T, s *session.Store) {
	t.Helper()
	err := s.Persist(session.Credentials{
		AccessToken:  "t1",
		RefreshToken: "r1",
		UserID:       7,
		Username:     "ana",
	})
	if err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
}

func newTestClient(store *session.Store, serverURL string) *http.Client {
	return &http.Client{
		Transport: New(store, serverURL+"/auth/refresh"),
	}
}

func TestTransport_AttachesBearer(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store)

	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
	}))
	defer server.Close()

	client := newTestClient(store, server.URL)
	resp, err := client.Get(server.URL + "/api/posts")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer t1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer t1")
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestTransport_NoTokenForwardsUnmodified(t *testing.T) {
	store := newTestStore(t)

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	client := newTestClient(store, server.URL)
	resp, err := client.Get(server.URL + "/api/topics")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "" {
		t.Errorf("Authorization = %q, want none without a stored token", gotAuth)
	}
}

func TestTransport_AuthEndpointsExempt(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store)

	paths := []string{
		"/api/auth/login",
		"/api/auth/register",
		"/api/auth/refresh",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			var gotAuth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
			}))
			defer server.Close()

			client := newTestClient(store, server.URL)
			resp, err := client.Post(server.URL+path, "application/json", nil)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()

			if gotAuth != "" {
				t.Errorf("Authorization = %q on auth endpoint, want none", gotAuth)
			}
		})
	}
}

func TestTransport_CorruptIdentityStillSendsToken(t *testing.T) {
	// The authorizer reads the raw token; a corrupt identity only
	// affects the session view, and the server remains the judge.
	path := filepath.Join(t.TempDir(), "session.json")
	entries := map[string]string{
		"auth.accessToken":  "t1",
		"auth.refreshToken": "r1",
		"auth.user":         "{not json",
	}
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	store := session.NewStore(path)
	if store.Read() != nil {
		t.Fatal("expected no usable session with a corrupt identity")
	}

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	client := newTestClient(store, server.URL)
	resp, err := client.Get(server.URL + "/api/posts/1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer t1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer t1")
	}
}

func TestIsAuthEndpoint(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/auth/login", true},
		{"/api/auth/register", true},
		{"/api/auth/refresh", true},
		{"/api/auth/me", false},
		{"/api/posts", false},
		{"/api/posts/auth", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := isAuthEndpoint(tt.path); got != tt.want {
				t.Errorf("isAuthEndpoint(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
