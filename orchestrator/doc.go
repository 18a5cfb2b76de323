// Package orchestrator implements the turn state machine for ChatMesh.
//
// One call to HandleTurn runs the complete request/response cycle: guardrail
// screening and redaction, intent classification, command handling (memory,
// help, echo, summarize), retrieval-grounded answering with confidence-band
// phrasing, and graceful degradation through the injected generator down to a
// fixed fallback reply. Every path terminates in a user-facing reply; the
// orchestrator never surfaces collaborator failures to its caller.
//
// # Responsibilities (abridged)
//   - Pre-flight guardrails (denylist refusal, length cap, PII redaction)
//   - Intent routing with locally handled utility commands
//   - Band-phrased retrieval answers and capability fallback chains
//   - Session history persistence, appended only after the reply is final
//   - Per-session serialization of concurrent turns
//
// See orchestrator.go for the operational implementation details.
package orchestrator
