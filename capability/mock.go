package capability

import (
	"context"
	"fmt"

	"github.com/hupe1980/chatmesh/core"
)

// MockGenerator is a lightweight in-memory Generator useful for tests and
// examples. Register canned completions per prompt; unregistered prompts get
// a deterministic fallback string, and Fail makes every call error.
type MockGenerator struct {
	name      string
	responses map[string]string
	fail      bool
}

// NewMockGenerator constructs a MockGenerator with the given backend name.
func NewMockGenerator(name string) *MockGenerator {
	return &MockGenerator{name: name, responses: map[string]string{}}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockGenerator) AddResponse(prompt, response string) { m.responses[prompt] = response }

// Fail switches the generator into always-erroring mode.
func (m *MockGenerator) Fail(fail bool) { m.fail = fail }

// Name implements core.Generator.
func (m *MockGenerator) Name() string { return m.name }

// Generate implements core.Generator.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.fail {
		return "", fmt.Errorf("%s: forced failure: %w", m.name, core.ErrUnavailable)
	}
	if resp, ok := m.responses[prompt]; ok {
		return resp, nil
	}
	return fmt.Sprintf("Mock response to: %s", prompt), nil
}

// MockSentiment is a canned SentimentAnalyzer for tests.
type MockSentiment struct {
	name   string
	result core.Sentiment
	fail   bool
}

// NewMockSentiment constructs a MockSentiment returning the given result.
func NewMockSentiment(name string, result core.Sentiment) *MockSentiment {
	result.Backend = name
	return &MockSentiment{name: name, result: result}
}

// Fail switches the analyzer into always-erroring mode.
func (m *MockSentiment) Fail(fail bool) { m.fail = fail }

// Name implements core.SentimentAnalyzer.
func (m *MockSentiment) Name() string { return m.name }

// Analyze implements core.SentimentAnalyzer.
func (m *MockSentiment) Analyze(ctx context.Context, _ string) (core.Sentiment, error) {
	if err := ctx.Err(); err != nil {
		return core.Sentiment{}, err
	}
	if m.fail {
		return core.Sentiment{}, fmt.Errorf("%s: forced failure: %w", m.name, core.ErrUnavailable)
	}
	return m.result, nil
}
