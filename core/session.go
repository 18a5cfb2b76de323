package core

import (
	"sync"
	"time"
)

// Speaker labels for history turns.
const (
	SpeakerUser = "user"
	SpeakerBot  = "bot"
)

// Turn is a single (speaker, utterance) pair in a session history.
type Turn struct {
	Speaker string    `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// Session tracks one user's conversational history. It is owned exclusively
// by its SessionStore; the orchestrator mutates it through store methods only.
//
// Contract:
//   - History is insertion-ordered and FIFO-capped at MaxHistory
//   - Any append or touch refreshes LastActive
//   - A session past LastActive+TTL is expired and treated as not found
//   - Clone performs deep copies for safe external reads.
type Session struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id,omitempty"`
	History    []Turn        `json:"history"`
	Created    time.Time     `json:"created"`
	LastActive time.Time     `json:"last_active"`
	TTL        time.Duration `json:"ttl"`
	MaxHistory int           `json:"max_history"`
	mu         sync.Mutex
}

// NewSession creates a session with the given identity and limits.
func NewSession(id, userID string, ttl time.Duration, maxHistory int) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		UserID:     userID,
		History:    []Turn{},
		Created:    now,
		LastActive: now,
		TTL:        ttl,
		MaxHistory: maxHistory,
	}
}

// Append adds a turn, evicting the oldest entries once MaxHistory is reached,
// and refreshes LastActive.
func (s *Session) Append(speaker, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History = append(s.History, Turn{Speaker: speaker, Text: text, At: time.Now()})
	if s.MaxHistory > 0 && len(s.History) > s.MaxHistory {
		s.History = s.History[len(s.History)-s.MaxHistory:]
	}
	s.LastActive = time.Now()
}

// Touch refreshes LastActive without mutating history.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActive = time.Now()
}

// Expired reports whether the session TTL has elapsed at the given instant.
// A zero TTL disables expiry.
func (s *Session) Expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.TTL > 0 && now.After(s.LastActive.Add(s.TTL))
}

// Clone returns a deep copy safe for external reads while the original keeps
// being mutated by its store.
func (s *Session) Clone() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := &Session{
		ID:         s.ID,
		UserID:     s.UserID,
		History:    make([]Turn, len(s.History)),
		Created:    s.Created,
		LastActive: s.LastActive,
		TTL:        s.TTL,
		MaxHistory: s.MaxHistory,
	}
	copy(clone.History, s.History)
	return clone
}

// SessionStore persists sessions and their evolving history. Implementations
// must serialize access per session while letting turns for different
// sessions proceed independently, and must treat expired sessions as not
// found on next access (lazy expiry).
type SessionStore interface {
	// Create allocates a fresh session for the (possibly empty) user id.
	Create(userID string) (*Session, error)
	// Get returns a clone of the session or ErrNotFound if missing/expired.
	Get(sessionID string) (*Session, error)
	// AppendUser records a user utterance.
	AppendUser(sessionID, text string) error
	// AppendBot records a bot reply.
	AppendBot(sessionID, text string) error
	// Touch refreshes the session's last-active timestamp.
	Touch(sessionID string) error
}
