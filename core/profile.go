package core

import "time"

// Preference is one remembered key/value pair. Keys are unique per profile;
// the slice preserves insertion order for listing.
type Preference struct {
	Key     string    `json:"key"`
	Value   string    `json:"value"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// Profile holds a user's opt-in persisted preferences. Profiles are created
// on the first explicit "remember" command, mutated only by explicit user
// commands and survive session expiry.
type Profile struct {
	UserID      string       `json:"user_id"`
	Preferences []Preference `json:"preferences"`
	Updated     time.Time    `json:"updated"`
}

// NewProfile creates an empty profile for the user.
func NewProfile(userID string) *Profile {
	return &Profile{UserID: userID, Preferences: []Preference{}, Updated: time.Now()}
}

// Remember stores a preference, overwriting the value of an existing key in
// place so listing order stays stable.
func (p *Profile) Remember(key, value string) {
	now := time.Now()
	for i := range p.Preferences {
		if p.Preferences[i].Key == key {
			p.Preferences[i].Value = value
			p.Preferences[i].Updated = now
			p.Updated = now
			return
		}
	}
	p.Preferences = append(p.Preferences, Preference{Key: key, Value: value, Created: now, Updated: now})
	p.Updated = now
}

// Forget removes a key if present. Removing an absent key is a no-op; the
// return value reports whether anything was removed.
func (p *Profile) Forget(key string) bool {
	for i := range p.Preferences {
		if p.Preferences[i].Key == key {
			p.Preferences = append(p.Preferences[:i], p.Preferences[i+1:]...)
			p.Updated = time.Now()
			return true
		}
	}
	return false
}

// Recall returns the stored value for key, if any.
func (p *Profile) Recall(key string) (string, bool) {
	for i := range p.Preferences {
		if p.Preferences[i].Key == key {
			return p.Preferences[i].Value, true
		}
	}
	return "", false
}

// List returns preference keys in insertion order.
func (p *Profile) List() []string {
	keys := make([]string, 0, len(p.Preferences))
	for i := range p.Preferences {
		keys = append(keys, p.Preferences[i].Key)
	}
	return keys
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	clone := &Profile{UserID: p.UserID, Preferences: make([]Preference, len(p.Preferences)), Updated: p.Updated}
	copy(clone.Preferences, p.Preferences)
	return clone
}

// ProfileStore persists one profile record per user. Save and Load are
// idempotent.
type ProfileStore interface {
	// Load returns the user's profile or ErrNotFound if none was saved yet.
	Load(userID string) (*Profile, error)
	// Save persists the profile, replacing any previous record.
	Save(profile *Profile) error
}
