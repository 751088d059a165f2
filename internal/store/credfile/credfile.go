// Package credfile persists session credentials to a JSON file in the
// data directory.
package credfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/javiercm/gymdesk/internal/core/session"
)

// Store implements session.CredentialStore using a JSON file. Tokens are
// secrets, so the file and its temp sibling are written 0600.
type Store struct {
	path string
	mu   sync.RWMutex
}

// New creates a credential store at the given path.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted credentials. A missing or empty file yields
// zero credentials, not an error.
func (s *Store) Load() (session.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return session.Credentials{}, nil
		}
		return session.Credentials{}, err
	}

	if len(data) == 0 {
		return session.Credentials{}, nil
	}

	var creds session.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return session.Credentials{}, err
	}

	return creds, nil
}

// Save writes the credentials atomically. Last write wins.
func (s *Store) Save(creds session.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}

// Clear removes the credentials file. Clearing an absent file is a
// no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
