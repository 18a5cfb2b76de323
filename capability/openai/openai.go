// Package openai provides generation and sentiment capabilities backed by
// the OpenAI Chat Completions API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/hupe1980/chatmesh/core"
)

// Options configure the OpenAI adapters. Fields mirror a minimal subset of
// Chat Completion parameters; extend via functional options without breaking
// callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	System              string
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 1024,
		System:              "You are a concise helper.",
	}
}

// Generator wraps the OpenAI Chat Completions API behind core.Generator.
type Generator struct {
	client *openai.Client
	opts   Options
}

// NewGenerator creates a new OpenAI generator using the official client.
func NewGenerator(optFns ...func(o *Options)) *Generator {
	client := openai.NewClient()
	return NewGeneratorFromClient(&client, optFns...)
}

// NewGeneratorFromClient creates a new OpenAI generator from an existing client.
func NewGeneratorFromClient(client *openai.Client, optFns ...func(o *Options)) *Generator {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{client: client, opts: opts}
}

// Name implements core.Generator.
func (g *Generator) Name() string { return "openai" }

// Generate implements core.Generator with a single non-streaming completion.
// API failures are wrapped as core.ErrUnavailable so chains degrade cleanly.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if g.opts.System != "" {
		messages = append(messages, openai.SystemMessage(g.opts.System))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               g.opts.Model,
		Messages:            messages,
		Temperature:         openai.Float(g.opts.Temperature),
		MaxCompletionTokens: openai.Int(g.opts.MaxCompletionTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w: %w", err, core.ErrUnavailable)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai returned no text content: %w", core.ErrUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// sentimentPrompt instructs the model to answer with a strict JSON object so
// the reply can be parsed without provider-specific plumbing.
const sentimentPrompt = `Classify the sentiment of the user message. Respond with ONLY a JSON object of the shape {"label":"positive|neutral|negative","score":0.0}. The score is your confidence in [0,1].`

// Sentiment wraps the OpenAI Chat Completions API behind core.SentimentAnalyzer.
type Sentiment struct {
	client *openai.Client
	opts   Options
}

// NewSentiment creates a new OpenAI sentiment analyzer using the official client.
func NewSentiment(optFns ...func(o *Options)) *Sentiment {
	client := openai.NewClient()
	return NewSentimentFromClient(&client, optFns...)
}

// NewSentimentFromClient creates a new OpenAI sentiment analyzer from an existing client.
func NewSentimentFromClient(client *openai.Client, optFns ...func(o *Options)) *Sentiment {
	opts := defaultOptions()
	opts.Temperature = 0
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Sentiment{client: client, opts: opts}
}

// Name implements core.SentimentAnalyzer.
func (s *Sentiment) Name() string { return "openai" }

// Analyze implements core.SentimentAnalyzer. Malformed or unparseable model
// output counts as a failed member so chains fall through to local analysis.
func (s *Sentiment) Analyze(ctx context.Context, text string) (core.Sentiment, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(sentimentPrompt),
			openai.UserMessage(text),
		},
		Temperature:         openai.Float(s.opts.Temperature),
		MaxCompletionTokens: openai.Int(64),
	})
	if err != nil {
		return core.Sentiment{}, fmt.Errorf("openai api error: %w: %w", err, core.ErrUnavailable)
	}
	if len(resp.Choices) == 0 {
		return core.Sentiment{}, fmt.Errorf("openai returned no choices: %w", core.ErrUnavailable)
	}

	return parseSentiment(resp.Choices[0].Message.Content, s.Name())
}

func parseSentiment(content, backend string) (core.Sentiment, error) {
	var parsed struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	raw := strings.TrimSpace(content)
	// tolerate fenced or prefixed output by slicing the JSON object out
	if i := strings.Index(raw, "{"); i >= 0 {
		if j := strings.LastIndex(raw, "}"); j > i {
			raw = raw[i : j+1]
		}
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return core.Sentiment{}, fmt.Errorf("unparseable sentiment reply %q: %w", content, err)
	}

	switch parsed.Label {
	case core.SentimentPositive, core.SentimentNeutral, core.SentimentNegative:
	default:
		return core.Sentiment{}, fmt.Errorf("unknown sentiment label %q", parsed.Label)
	}
	if parsed.Score < 0 {
		parsed.Score = 0
	}
	if parsed.Score > 1 {
		parsed.Score = 1
	}
	return core.Sentiment{Label: parsed.Label, Score: parsed.Score, Backend: backend}, nil
}
