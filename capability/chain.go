package capability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/logging"
)

// ChainOptions configure capability chains.
type ChainOptions struct {
	// Logger receives a warning per failed member.
	Logger logging.Logger
	// MemberTimeout bounds each member call. Zero relies on the caller's
	// context alone.
	MemberTimeout time.Duration
}

// GeneratorChain tries each generator in order and returns the first
// success. All members failing (or the context expiring) maps to
// core.ErrUnavailable so the orchestrator can degrade gracefully.
type GeneratorChain struct {
	members []core.Generator
	opts    ChainOptions
}

// NewGeneratorChain builds a chain over the given members in priority order.
func NewGeneratorChain(members []core.Generator, optFns ...func(o *ChainOptions)) *GeneratorChain {
	opts := ChainOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &GeneratorChain{members: members, opts: opts}
}

// Name identifies the chain by its member names.
func (c *GeneratorChain) Name() string {
	names := make([]string, 0, len(c.members))
	for _, m := range c.members {
		names = append(names, m.Name())
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// Generate implements core.Generator.
func (c *GeneratorChain) Generate(ctx context.Context, prompt string) (string, error) {
	for _, m := range c.members {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("generator chain: %w", core.ErrUnavailable)
		}
		out, err := c.callGenerator(ctx, m, prompt)
		if err != nil {
			c.opts.Logger.Warn("generator failed, trying next", "backend", m.Name(), "error", err)
			continue
		}
		if strings.TrimSpace(out) == "" {
			c.opts.Logger.Warn("generator returned empty output, trying next", "backend", m.Name())
			continue
		}
		return out, nil
	}
	return "", fmt.Errorf("all generators failed: %w", core.ErrUnavailable)
}

func (c *GeneratorChain) callGenerator(ctx context.Context, m core.Generator, prompt string) (string, error) {
	if c.opts.MemberTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.MemberTimeout)
		defer cancel()
	}
	return m.Generate(ctx, prompt)
}

// SentimentChain tries each analyzer in order and returns the first success.
// Compose it with a Lexicon tail and Analyze never fails.
type SentimentChain struct {
	members []core.SentimentAnalyzer
	opts    ChainOptions
}

// NewSentimentChain builds a chain over the given members in priority order.
func NewSentimentChain(members []core.SentimentAnalyzer, optFns ...func(o *ChainOptions)) *SentimentChain {
	opts := ChainOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &SentimentChain{members: members, opts: opts}
}

// Name identifies the chain by its member names.
func (c *SentimentChain) Name() string {
	names := make([]string, 0, len(c.members))
	for _, m := range c.members {
		names = append(names, m.Name())
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// Analyze implements core.SentimentAnalyzer.
func (c *SentimentChain) Analyze(ctx context.Context, text string) (core.Sentiment, error) {
	for _, m := range c.members {
		if err := ctx.Err(); err != nil {
			return core.Sentiment{}, fmt.Errorf("sentiment chain: %w", core.ErrUnavailable)
		}
		res, err := c.callAnalyzer(ctx, m, text)
		if err != nil {
			c.opts.Logger.Warn("sentiment analyzer failed, trying next", "backend", m.Name(), "error", err)
			continue
		}
		return res, nil
	}
	return core.Sentiment{}, fmt.Errorf("all sentiment analyzers failed: %w", core.ErrUnavailable)
}

func (c *SentimentChain) callAnalyzer(ctx context.Context, m core.SentimentAnalyzer, text string) (core.Sentiment, error) {
	if c.opts.MemberTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.MemberTimeout)
		defer cancel()
	}
	return m.Analyze(ctx, text)
}
