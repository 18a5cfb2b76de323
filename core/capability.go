package core

import "context"

// Generator is the injected text-generation capability. Implementations wrap
// external model providers and are tried behind a fallback chain; they return
// ErrUnavailable (possibly wrapped) when they cannot respond so the
// orchestrator can degrade gracefully.
type Generator interface {
	// Generate produces a completion for the prompt. Implementations must
	// honor ctx cancellation and deadlines.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the backend for diagnostics.
	Name() string
}

// SentimentAnalyzer is the injected sentiment capability. The local lexicon
// analyzer terminates every chain, so a composed analyzer never fails.
type SentimentAnalyzer interface {
	// Analyze classifies the text. Implementations must honor ctx
	// cancellation and deadlines.
	Analyze(ctx context.Context, text string) (Sentiment, error)

	// Name identifies the backend for diagnostics; it is surfaced in
	// Sentiment.Backend.
	Name() string
}
