package profile

import (
	"fmt"
	"sync"

	"github.com/hupe1980/chatmesh/core"
)

// InMemoryStore is a volatile core.ProfileStore backed by a mutex-guarded
// map. Profiles are cloned on both save and load so callers can never mutate
// shared state accidentally.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*core.Profile
}

// NewInMemoryStore constructs an empty in-memory profile store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[string]*core.Profile)}
}

// Load returns a clone of the user's profile or core.ErrNotFound.
func (s *InMemoryStore) Load(userID string) (*core.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %q: %w", userID, core.ErrNotFound)
	}
	return p.Clone(), nil
}

// Save stores a clone of the profile, replacing any previous record.
// Idempotent: saving the same profile twice is harmless.
func (s *InMemoryStore) Save(profile *core.Profile) error {
	if profile == nil || profile.UserID == "" {
		return fmt.Errorf("profile must have a user id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = profile.Clone()
	return nil
}
