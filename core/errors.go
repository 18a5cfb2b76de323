package core

import (
	"errors"
	"fmt"
)

// ErrNotFound signals a session or profile lookup miss. Callers treat it as
// "create fresh", never as a hard error surfaced to the end user.
var ErrNotFound = errors.New("not found")

// ErrUnavailable signals that an injected capability could not respond. It
// always triggers graceful degradation, never a user-visible failure.
var ErrUnavailable = errors.New("capability unavailable")

// MalformedCommandError marks user-correctable command syntax errors. The
// Hint is safe to surface verbatim as the reply.
type MalformedCommandError struct {
	Hint string
}

func (e *MalformedCommandError) Error() string {
	return fmt.Sprintf("malformed command: %s", e.Hint)
}

// IndexBuildError is fatal at build time only. An empty corpus or a document
// without text is a configuration error, not a runtime query error.
type IndexBuildError struct {
	DocID  string
	Reason string
}

func (e *IndexBuildError) Error() string {
	if e.DocID != "" {
		return fmt.Sprintf("index build failed for document %q: %s", e.DocID, e.Reason)
	}
	return fmt.Sprintf("index build failed: %s", e.Reason)
}
