// ABOUTME: File-backed credential store for the Orion session
// ABOUTME: Persists tokens and identity atomically and notifies subscribers on every change

package session

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Logical keys inside the session file. The user entry holds a
// serialized JSON document of its own, so a torn or hand-edited value
// is detectable independently of the surrounding file.
const (
	keyAccessToken  = "auth.accessToken"
	keyRefreshToken = "auth.refreshToken"
	keyUser         = "auth.user"
)

const sessionFileName = "session.json"

// Credentials is the full persisted session payload.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	UserID       int64
	Username     string
}

// storedUser is the serialized identity inside the auth.user entry.
// Pointer fields distinguish an absent field from a zero value.
type storedUser struct {
	UserID   *int64  `json:"userId"`
	Username *string `json:"username"`
}

// Store persists credentials in a single JSON file and fans out a
// change notification to subscribers after every mutation. It is the
// only writer of the session file; readers always go back to disk so
// an update from another process is picked up on the next read.
type Store struct {
	mu     sync.Mutex
	path   string
	subs   map[int]func()
	nextID int
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		subs: make(map[int]func()),
	}
}

// DefaultPath returns the session file location under configDir.
func DefaultPath(configDir string) string {
	return filepath.Join(configDir, sessionFileName)
}

// Subscribe registers a change callback and returns its unsubscribe
// function. The callback runs after the mutation is fully applied, so
// re-reading from inside it always observes the new state.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Persist overwrites all session fields in one write and broadcasts a
// single change notification.
func (s *Store) Persist(c Credentials) error {
	user, err := json.Marshal(map[string]any{
		"userId":   c.UserID,
		"username": c.Username,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	err = s.write(map[string]string{
		keyAccessToken:  c.AccessToken,
		keyRefreshToken: c.RefreshToken,
		keyUser:         string(user),
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

// UpdateTokens rewrites the access token (and the refresh token when
// non-empty) without touching the stored identity.
func (s *Store) UpdateTokens(accessToken, refreshToken string) error {
	s.mu.Lock()
	entries := s.load()
	entries[keyAccessToken] = accessToken
	if refreshToken != "" {
		entries[keyRefreshToken] = refreshToken
	}
	err := s.write(entries)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

// Read returns the stored credentials, or nil when there is no usable
// session: a missing token, an unreadable file, or an identity entry
// that fails structural validation all count as "no session".
func (s *Store) Read() *Credentials {
	s.mu.Lock()
	entries := s.load()
	s.mu.Unlock()

	access := entries[keyAccessToken]
	refresh := entries[keyRefreshToken]
	if access == "" || refresh == "" {
		return nil
	}

	user, ok := parseStoredUser(entries[keyUser])
	if !ok {
		return nil
	}

	return &Credentials{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       *user.UserID,
		Username:     *user.Username,
	}
}

// AccessToken returns the raw stored access token, if any. The token
// may be present even when Read reports no session (corrupt identity).
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()[keyAccessToken]
}

// RefreshToken returns the raw stored refresh token, if any.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()[keyRefreshToken]
}

// Clear removes the session file and broadcasts a change notification.
func (s *Store) Clear() error {
	s.mu.Lock()
	err := os.Remove(s.path)
	s.mu.Unlock()
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	s.notify()
	return nil
}

// load reads the session file into a key/value map. Any read or parse
// failure yields an empty map; corruption is treated as absence.
// Callers must hold s.mu.
func (s *Store) load() map[string]string {
	entries := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		return entries
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Debug("Session file is not valid JSON, treating as empty", "path", s.path)
		return make(map[string]string)
	}

	return entries
}

// write persists the entries atomically: temp file in the same
// directory, then rename. No reader ever observes a partial session.
// Callers must hold s.mu.
func (s *Store) write(entries map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, sessionFileName+".*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), s.path)
}

// notify invokes every subscriber once, outside the store lock.
func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// parseStoredUser validates the serialized identity: it must be a JSON
// object with a numeric userId and a non-blank username.
func parseStoredUser(raw string) (*storedUser, bool) {
	if raw == "" {
		return nil, false
	}

	var user storedUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false
	}
	if user.UserID == nil || user.Username == nil {
		return nil, false
	}
	if strings.TrimSpace(*user.Username) == "" {
		return nil, false
	}

	return &user, true
}
