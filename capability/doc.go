// Package capability contains implementations of the injected capabilities
// the orchestrator consumes: text generation and sentiment analysis.
//
// Provider fan-out is modeled as an explicit ordered chain behind one
// interface: members are tried in order, the first success wins, and an
// all-failed chain maps to core.ErrUnavailable. This keeps provider-specific
// conditionals out of the orchestrator entirely.
//
// Concrete provider adapters live in sub-packages (anthropic, openai) so the
// root package stays SDK-free. The lexicon sentiment analyzer in this package
// is the local, never-failing tail of a sentiment chain.
package capability
