package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore persists the one artifact a session leaves behind: the bearer
// token string.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileStore keeps the token in a single file under the user config dir, the
// CLI analogue of a browser's localStorage key. It also implements
// api.TokenSource so the HTTP client can read the token synchronously.
type FileStore struct {
	path string

	mu     sync.RWMutex
	cached string
	loaded bool
}

// NewFileStore creates a token store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted token. A missing file means no session.
func (s *FileStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *FileStore) loadLocked() (string, error) {
	if s.loaded {
		return s.cached, nil
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.cached, s.loaded = "", true
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}

	s.cached, s.loaded = strings.TrimSpace(string(data)), true
	return s.cached, nil
}

// Save persists the token atomically with owner-only permissions.
func (s *FileStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write token: %w", err)
	}

	s.cached, s.loaded = token, true
	return nil
}

// Clear removes the persisted token.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached, s.loaded = "", true
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Token implements api.TokenSource: a pure synchronous read, no refresh, no
// expiry check.
func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.loadLocked()
	if err != nil {
		return ""
	}
	return token
}
