package session

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/internal/util"
)

// Options configure an InMemoryStore.
type Options struct {
	// TTL is the idle duration after which a session expires. Zero disables
	// expiry.
	TTL time.Duration
	// MaxHistory caps stored turns per session, oldest evicted first.
	MaxHistory int
}

// InMemoryStore is a process-local core.SessionStore. The registry map is
// guarded by an RWMutex while each session carries its own lock, so turns for
// different sessions never contend with each other.
//
// Expiry is lazy: an expired session is evicted and reported as not found on
// next access; Sweep removes expired sessions eagerly for callers that want a
// background cleanup loop. No operation resurrects an expired session.
type InMemoryStore struct {
	mu         sync.RWMutex
	sessions   map[string]*core.Session
	ttl        time.Duration
	maxHistory int
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{
		TTL:        time.Hour,
		MaxHistory: 200,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{
		sessions:   make(map[string]*core.Session),
		ttl:        opts.TTL,
		maxHistory: opts.MaxHistory,
	}
}

// Create allocates a fresh session for the (possibly empty) user id.
func (s *InMemoryStore) Create(userID string) (*core.Session, error) {
	sess := core.NewSession(util.NewID(), userID, s.ttl, s.maxHistory)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess.Clone(), nil
}

// Get returns a clone of the session, or core.ErrNotFound when it is missing
// or has expired. An expired session is evicted on the spot.
func (s *InMemoryStore) Get(sessionID string) (*core.Session, error) {
	sess, err := s.live(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// AppendUser records a user utterance.
func (s *InMemoryStore) AppendUser(sessionID, text string) error {
	return s.append(sessionID, core.SpeakerUser, text)
}

// AppendBot records a bot reply.
func (s *InMemoryStore) AppendBot(sessionID, text string) error {
	return s.append(sessionID, core.SpeakerBot, text)
}

// Touch refreshes the session's last-active timestamp.
func (s *InMemoryStore) Touch(sessionID string) error {
	sess, err := s.live(sessionID)
	if err != nil {
		return err
	}
	sess.Touch()
	return nil
}

// Sweep evicts every expired session and returns how many were removed.
func (s *InMemoryStore) Sweep() int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live (possibly expired but unswept) sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *InMemoryStore) append(sessionID, speaker, text string) error {
	sess, err := s.live(sessionID)
	if err != nil {
		return err
	}
	sess.Append(speaker, text)
	return nil
}

// live resolves a session id to its live entry, evicting it when expired.
func (s *InMemoryStore) live(sessionID string) (*core.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", sessionID, core.ErrNotFound)
	}
	if sess.Expired(time.Now()) {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil, fmt.Errorf("session %q expired: %w", sessionID, core.ErrNotFound)
	}
	return sess, nil
}

// persistedStore is the JSON save/load shape.
type persistedStore struct {
	TTL        time.Duration   `json:"ttl"`
	MaxHistory int             `json:"max_history"`
	SavedAt    time.Time       `json:"saved_at"`
	Sessions   []*core.Session `json:"sessions"`
}

// SaveTo writes a JSON snapshot of all live sessions.
func (s *InMemoryStore) SaveTo(w io.Writer) error {
	s.mu.RLock()
	snap := persistedStore{TTL: s.ttl, MaxHistory: s.maxHistory, SavedAt: time.Now()}
	for _, sess := range s.sessions {
		snap.Sessions = append(snap.Sessions, sess.Clone())
	}
	s.mu.RUnlock()
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}

// LoadFrom rebuilds a store from a SaveTo snapshot.
func LoadFrom(r io.Reader) (*InMemoryStore, error) {
	var snap persistedStore
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	store := NewInMemoryStore(func(o *Options) {
		o.TTL = snap.TTL
		o.MaxHistory = snap.MaxHistory
	})
	for _, sess := range snap.Sessions {
		store.sessions[sess.ID] = sess
	}
	return store, nil
}
