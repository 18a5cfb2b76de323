// Package util holds small internal helpers. Living under internal avoids
// committing to public API stability prematurely.
package util

import "github.com/google/uuid"

// NewID generates a new opaque unique identifier for sessions.
func NewID() string { return uuid.NewString() }
