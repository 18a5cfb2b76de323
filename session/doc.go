// Package session houses concrete implementations of the core.SessionStore.
// The interface itself (and the Session struct) live in the core package to
// centralize domain contracts. Keeping only implementations here prevents
// higher level packages (orchestrator, façade) from depending on concrete
// storage.
//
// Sessions are process-local and not required to survive a restart; the
// optional JSON save/load exists for demos and tests. Add durable backends
// (Redis, Postgres, etc.) in sub-packages without changing any calling code –
// only the wiring layer needs to decide which implementation to instantiate.
package session
