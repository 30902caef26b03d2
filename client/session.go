package client

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"talesoul-backend/models/users"
)

// SessionStatus is the session state machine:
// Unauthenticated -> Loading -> {Authenticated | Unauthenticated}.
// Authenticated drops back to Unauthenticated only on explicit logout or when
// the server rejects the credential.
type SessionStatus string

const (
	StatusUnauthenticated SessionStatus = "unauthenticated"
	StatusLoading         SessionStatus = "loading"
	StatusAuthenticated   SessionStatus = "authenticated"
)

// SessionStore owns the credential and cached identity. The token persists in
// a single well-known file across process restarts until it is explicitly
// cleared or rejected by the server.
type SessionStore struct {
	path string

	mu       sync.RWMutex
	token    string
	identity *users.User
	status   SessionStatus
}

// DefaultSessionPath is where the credential lives unless overridden.
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".talesoul", "token")
}

// NewSessionStore creates a store backed by the token file at path. Nothing
// is read from disk until Restore is called.
func NewSessionStore(path string) *SessionStore {
	if path == "" {
		path = DefaultSessionPath()
	}
	return &SessionStore{path: path, status: StatusUnauthenticated}
}

// Status returns the current session state.
func (s *SessionStore) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Token returns the stored credential, empty when unauthenticated.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentIdentity returns the cached identity without a network call, or nil
// when no identity has been resolved.
func (s *SessionStore) CurrentIdentity() *users.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Clear wipes the credential and identity and deletes the token file.
// Idempotent; this is the logout path and the demotion path.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.identity = nil
	s.status = StatusUnauthenticated
	os.Remove(s.path)
}

// reset drops the in-memory credential and identity but leaves the token file
// on disk, so a later Restore can try the persisted credential again.
func (s *SessionStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.identity = nil
	s.status = StatusUnauthenticated
}

func (s *SessionStore) setLoading(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.identity = nil
	s.status = StatusLoading
}

func (s *SessionStore) setAuthenticated(token string, identity *users.User) error {
	if err := s.writeTokenFile(token); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.identity = identity
	s.status = StatusAuthenticated
	return nil
}

// setIdentity refreshes the cached identity without touching the credential.
func (s *SessionStore) setIdentity(identity *users.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
}

func (s *SessionStore) writeTokenFile(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

// loadTokenFile returns the persisted credential, or empty when none exists.
func (s *SessionStore) loadTokenFile() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
