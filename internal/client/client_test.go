// ABOUTME: Tests for the API client against httptest servers
// ABOUTME: Covers the login path, query encoding, and error surfacing

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/orion-forum/orion-cli/internal/session"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	return New(server.URL, store, Options{}), store
}

func TestClient_Login(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/api/auth/login")
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding login request: %v", err)
		}
		if req.Identifier != "ana" || req.Password != "hunter2" {
			t.Errorf("login request = %+v", req)
		}

		json.NewEncoder(w).Encode(LoginResponse{
			AccessToken:  "t1",
			RefreshToken: "r1",
			UserID:       7,
			Username:     "ana",
		})
	}))

	resp, err := client.Login(context.Background(), LoginRequest{Identifier: "ana", Password: "hunter2"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.AccessToken != "t1" || resp.Username != "ana" || resp.UserID != 7 {
		t.Errorf("login response = %+v", resp)
	}
}

func TestClient_LoginFailureSurfacesServerMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad credentials"}`))
	}))

	_, err := client.Login(context.Background(), LoginRequest{Identifier: "ana", Password: "wrong"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Error() != "bad credentials" {
		t.Errorf("error = %q, want %q", err.Error(), "bad credentials")
	}
	if !IsUnauthorized(err) {
		t.Error("expected IsUnauthorized to report true")
	}
}

func TestClient_PostsByAuthorEncodesQuery(t *testing.T) {
	var gotPath, gotSort, gotOrder string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSort = r.URL.Query().Get("sort")
		gotOrder = r.URL.Query().Get("order")
		w.Write([]byte(`[]`))
	}))

	_, err := client.PostsByAuthor(context.Background(), 7, PostQuery{Sort: SortTitle, Order: OrderAsc})
	if err != nil {
		t.Fatalf("PostsByAuthor failed: %v", err)
	}

	if gotPath != "/api/posts/user/7" {
		t.Errorf("path = %q, want %q", gotPath, "/api/posts/user/7")
	}
	if gotSort != "title" || gotOrder != "asc" {
		t.Errorf("query = sort=%q order=%q, want sort=title order=asc", gotSort, gotOrder)
	}
}

func TestClient_PostsByAuthorOmitsEmptyQuery(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))

	if _, err := client.PostsByAuthor(context.Background(), 7, PostQuery{}); err != nil {
		t.Fatalf("PostsByAuthor failed: %v", err)
	}
	if gotQuery != "" {
		t.Errorf("query = %q, want empty", gotQuery)
	}
}

func TestClient_DeletePost(t *testing.T) {
	var gotMethod, gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.DeletePost(context.Background(), 42); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/posts/42" {
		t.Errorf("request = %s %s, want DELETE /api/posts/42", gotMethod, gotPath)
	}
}

func TestClient_SubscribeSendsTopicID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TopicID int64 `json:"topicId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding subscribe request: %v", err)
		}
		if req.TopicID != 3 {
			t.Errorf("topicId = %d, want 3", req.TopicID)
		}
		json.NewEncoder(w).Encode(Subscription{ID: 11, TopicID: 3, TopicName: "go"})
	}))

	sub, err := client.Subscribe(context.Background(), 3)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if sub.ID != 11 || sub.TopicName != "go" {
		t.Errorf("subscription = %+v", sub)
	}
}

func TestClient_RequestsCarryBearer(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	})
	client, store := newTestClient(t, handler)

	err := store.Persist(session.Credentials{
		AccessToken:  "t1",
		RefreshToken: "r1",
		UserID:       7,
		Username:     "ana",
	})
	if err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	if _, err := client.Topics(context.Background()); err != nil {
		t.Fatalf("Topics failed: %v", err)
	}
	if gotAuth != "Bearer t1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer t1")
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Posts(ctx)
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Error() != "request canceled" {
		t.Errorf("error = %q, want %q", err.Error(), "request canceled")
	}
}
