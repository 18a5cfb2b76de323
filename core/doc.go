// Package core provides the foundational domain types and interfaces used by
// ChatMesh. It defines the core abstractions for:
//
//   - Documents (immutable units of indexed content) and retrieval results
//   - Sessions (per-user conversational history with TTL expiry)
//   - Profiles (explicit, opt-in persisted user preferences)
//   - Intents (the closed set of utterance classifications)
//   - Pluggable capabilities for text generation and sentiment analysis
//   - The error taxonomy shared across packages
//
// The package intentionally keeps implementation concerns (index structures,
// scoring, concrete stores, provider adapters) out of scope, exposing small
// interfaces so backends and capabilities can be swapped at wiring time.
package core
