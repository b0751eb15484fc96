// Package session persists the enrolled user identifier across runs,
// the way the capture surface survives a page reload. One fixed key,
// one small file.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// userKey is the fixed storage key for the enrolled user id.
const userKey = "bio_userId"

// ErrNoDir indicates no usable state directory could be resolved.
var ErrNoDir = errors.New("session: no state directory")

// Store reads and writes the persisted session identifier.
type Store struct {
	dir string
}

// NewStore resolves the default state directory under the OS user
// config dir.
func NewStore() (*Store, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDir, err)
	}
	return &Store{dir: filepath.Join(base, "facegate")}, nil
}

// NewStoreAt uses an explicit directory (tests, FACEGATE_DATA override).
func NewStoreAt(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes the user id. Called after successful registration or login.
func (s *Store) Save(id string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}
	if err := os.WriteFile(s.path(), []byte(id), 0o600); err != nil {
		return fmt.Errorf("session: write: %w", err)
	}
	return nil
}

// Load returns the stored user id, if any. Read opportunistically before
// a verification attempt that lacks an in-memory identifier.
func (s *Store) Load() (string, bool) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return "", false
	}
	id := strings.TrimSpace(string(data))
	return id, id != ""
}

// Clear removes the stored identifier.
func (s *Store) Clear() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, userKey)
}
