// ABOUTME: Tests for the single-flight refresh coordinator
// ABOUTME: Covers dedup, retry-once, terminal failures, and session teardown

package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// authServer simulates the Orion API: /api/data accepts only the
// current token, /api/auth/refresh rotates it after an optional delay.
type authServer struct {
	*httptest.Server

	mu           sync.Mutex
	validToken   string
	nextToken    string
	nextRefresh  string
	refreshDelay time.Duration
	refreshFails bool

	refreshCalls atomic.Int64
	dataCalls    atomic.Int64
}

func newAuthServer(validToken string) *authServer {
	as := &authServer{
		validToken:  validToken,
		nextToken:   "t2",
		nextRefresh: "r2",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", as.handleRefresh)
	mux.HandleFunc("/api/data", as.handleData)
	as.Server = httptest.NewServer(mux)
	return as
}

func (as *authServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	as.refreshCalls.Add(1)

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	as.mu.Lock()
	delay := as.refreshDelay
	fails := as.refreshFails
	as.mu.Unlock()

	time.Sleep(delay)

	if fails {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	as.mu.Lock()
	as.validToken = as.nextToken
	resp := map[string]any{
		"accessToken":  as.nextToken,
		"refreshToken": as.nextRefresh,
		"userId":       7,
		"username":     "ana",
	}
	as.mu.Unlock()

	json.NewEncoder(w).Encode(resp)
}

func (as *authServer) handleData(w http.ResponseWriter, r *http.Request) {
	as.dataCalls.Add(1)

	as.mu.Lock()
	valid := "Bearer " + as.validToken
	as.mu.Unlock()

	if r.Header.Get("Authorization") != valid {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"expired token"}`)
		return
	}
	io.WriteString(w, `{"ok":true}`)
}

func TestRefresh_SingleFlight(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store)

	server := newAuthServer("t2") // stored t1 is already stale
	defer server.Close()
	server.mu.Lock()
	server.validToken = "t-stale-rejects-t1"
	server.refreshDelay = 200 * time.Millisecond
	server.mu.Unlock()

	client := newTestClient(store, server.URL+"/api")

	const n = 5
	var wg sync.WaitGroup
	statuses := make([]int, n)
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			resp, err := client.Get(server.URL + "/api/data")
			if err != nil {
				t.Errorf("request %d failed: %v", i, err)
				return
			}
			defer resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}

	close(start)
	wg.Wait()

	if got := server.refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want exactly 1", got)
	}
	for i, status := range statuses {
		if status != http.StatusOK {
			t.Errorf("request %d status = %d, want 200 after shared refresh", i, status)
		}
	}

	creds := store.Read()
	if creds == nil {
		t.Fatal("session gone after successful refresh")
	}
	if creds.AccessToken != "t2" || creds.RefreshToken != "r2" {
		t.Errorf("stored tokens = %q/%q, want t2/r2", creds.AccessToken, creds.RefreshToken)
	}
	if creds.Username != "ana" || creds.UserID != 7 {
		t.Errorf("identity changed across refresh: %+v", creds)
	}
}

func TestRefresh_RetryCarriesMarkerAndNewToken(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store)

	var retried atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"accessToken": "t2", "refreshToken": "r2", "userId": 7, "username": "ana",
		})
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("X-Retry") == "" {
			t.Error("replayed request missing X-Retry marker")
		}
		retried.Store(true)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(store, server.URL+"/api")
	resp, err := client.Get(server.URL + "/api/data")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if !retried.Load() {
		t.Error("request was never replayed with the fresh token")
	}
}

func TestRefresh_PostBodyReplayed(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store)

	var lastBody atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"accessToken": "t2", "refreshToken": "r2", "userId": 7, "username": "ana",
		})
	})
	mux.HandleFunc("/api/comments", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		lastBody.Store(string(body))
		if r.Header.Get("Authorization") != "Bearer t2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(store, server.URL+"/api")
	resp, err := client.Post(server.URL+"/api/comments", "application/json",
		strings.NewReader(`{"postId":1,"content":"hi"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want 201", resp.StatusCode)
	}
	if got := lastBody.Load(); got != `{"postId":1,"content":"hi"}` {
		t.Errorf("replayed body = %v, want original payload", got)
	}
}

func TestRefresh_NoRefreshToken(t *testing.T) {
	store := newTestStore(t)
	// Access token only: no refresh is possible
	if err := store.UpdateTokens("t1", ""); err != nil {
		t.Fatal(err)
	}

	var refreshCalled atomic.Bool
	var expired atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalled.Store(true)
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tr := New(store, server.URL+"/api/auth/refresh")
	tr.OnSessionExpired = func() { expired.Store(true) }
	client := &http.Client{Transport: tr}

	resp, err := client.Get(server.URL + "/api/data")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want the original 401", resp.StatusCode)
	}
	if refreshCalled.Load() {
		t.Error("refresh endpoint called without a stored refresh token")
	}
	if !expired.Load() {
		t.Error("session-expired hook did not fire")
	}
	if store.AccessToken() != "" {
		t.Error("session not cleared")
	}
}

func TestRefresh_RefreshRejected(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store)

	server := newAuthServer("t-stale")
	defer server.Close()
	server.mu.Lock()
	server.refreshFails = true
	server.mu.Unlock()

	var expired atomic.Bool
	tr := New(store, server.URL+"/api/auth/refresh")
	tr.OnSessionExpired = func() { expired.Store(true) }
	client := &http.Client{Transport: tr}

	resp, err := client.Get(server.URL + "/api/data")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	// The original error surfaces, not the refresh error
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want original 401", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "expired token") {
		t.Errorf("body = %q, want the original error body", body)
	}
	if !expired.Load() {
		t.Error("session-expired hook did not fire")
	}
	if store.Read() != nil {
		t.Error("session survived a rejected refresh")
	}
	if got := server.refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
}

func TestRefresh_MalformedRefreshBody(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"accessToken":`)
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(store, server.URL+"/api")
	resp, err := client.Get(server.URL + "/api/data")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want original 401", resp.StatusCode)
	}
	if store.Read() != nil {
		t.Error("malformed refresh response must destroy the session")
	}
}

func TestRefresh_NoSecondRefreshForRetriedRequest(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store)

	var refreshCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		// Refresh "succeeds" but hands out a token the API still rejects
		json.NewEncoder(w).Encode(map[string]any{
			"accessToken": "t-still-bad", "refreshToken": "r2", "userId": 7, "username": "ana",
		})
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(store, server.URL+"/api")
	resp, err := client.Get(server.URL + "/api/data")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want exactly 1 (no loop)", got)
	}
}

func TestRefresh_SlotClearedBetweenBursts(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store)

	var refreshCalls atomic.Int64
	tokens := []string{"t2", "t3"}
	validToken := atomic.Value{}
	validToken.Store("t-stale")

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		n := refreshCalls.Add(1)
		token := tokens[n-1]
		validToken.Store(token)
		json.NewEncoder(w).Encode(map[string]any{
			"accessToken": token, "refreshToken": "r2", "userId": 7, "username": "ana",
		})
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+validToken.Load().(string) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(store, server.URL+"/api")

	// First burst refreshes to t2
	resp, err := client.Get(server.URL + "/api/data")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first burst status = %d", resp.StatusCode)
	}

	// Server invalidates t2; a later failure must start a fresh attempt
	validToken.Store("t-stale-again")

	resp, err = client.Get(server.URL + "/api/data")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second burst status = %d", resp.StatusCode)
	}

	if got := refreshCalls.Load(); got != 2 {
		t.Errorf("refresh calls = %d, want 2 (one per burst)", got)
	}
}
