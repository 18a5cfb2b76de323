package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hupe1980/chatmesh/core"
)

// FileStore persists one JSON record per user under a directory. Writes go
// through a temp file plus rename so a crash never leaves a torn record.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Load reads the user's record or returns core.ErrNotFound.
func (s *FileStore) Load(userID string) (*core.Profile, error) {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("profile %q: %w", userID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("read profile %q: %w", userID, err)
	}
	var p core.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile %q: %w", userID, err)
	}
	return &p, nil
}

// Save writes the record, replacing any previous one. Idempotent.
func (s *FileStore) Save(profile *core.Profile) error {
	if profile == nil || profile.UserID == "" {
		return fmt.Errorf("profile must have a user id")
	}
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", profile.UserID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp := s.path(profile.UserID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write profile %q: %w", profile.UserID, err)
	}
	if err := os.Rename(tmp, s.path(profile.UserID)); err != nil {
		return fmt.Errorf("commit profile %q: %w", profile.UserID, err)
	}
	return nil
}

// path maps a user id to its record file, sanitizing separators so ids can
// never escape the store directory.
func (s *FileStore) path(userID string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '.', ':':
			return '_'
		}
		return r
	}, userID)
	return filepath.Join(s.dir, safe+".json")
}
