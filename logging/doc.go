// Package logging provides a minimal logging interface and adapters for ChatMesh.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the orchestrator, guardrail and stores use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	mesh := chatmesh.New(chatmesh.WithLogger(logger))
//
// The design intentionally keeps the interface minimal so users can plug any
// structured logger without vendor lock-in.
package logging
