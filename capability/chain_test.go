package capability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chatmesh/core"
)

// Interface compliance (compile-time assertions)
var (
	_ core.Generator         = (*GeneratorChain)(nil)
	_ core.Generator         = (*MockGenerator)(nil)
	_ core.SentimentAnalyzer = (*SentimentChain)(nil)
	_ core.SentimentAnalyzer = (*Lexicon)(nil)
)

func TestGeneratorChainFirstSuccessWins(t *testing.T) {
	first := NewMockGenerator("first")
	first.AddResponse("hi", "from first")
	second := NewMockGenerator("second")
	second.AddResponse("hi", "from second")

	chain := NewGeneratorChain([]core.Generator{first, second})
	out, err := chain.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "from first", out)
}

func TestGeneratorChainFallsThrough(t *testing.T) {
	broken := NewMockGenerator("broken")
	broken.Fail(true)
	working := NewMockGenerator("working")
	working.AddResponse("hi", "rescued")

	chain := NewGeneratorChain([]core.Generator{broken, working})
	out, err := chain.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "rescued", out)
}

func TestGeneratorChainAllFailedIsUnavailable(t *testing.T) {
	a := NewMockGenerator("a")
	a.Fail(true)
	b := NewMockGenerator("b")
	b.Fail(true)

	chain := NewGeneratorChain([]core.Generator{a, b})
	_, err := chain.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, core.ErrUnavailable)
}

func TestGeneratorChainEmptyIsUnavailable(t *testing.T) {
	chain := NewGeneratorChain(nil)
	_, err := chain.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, core.ErrUnavailable)
}

func TestGeneratorChainCancelledContext(t *testing.T) {
	g := NewMockGenerator("g")
	chain := NewGeneratorChain([]core.Generator{g})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := chain.Generate(ctx, "hi")
	assert.ErrorIs(t, err, core.ErrUnavailable)
}

func TestGeneratorChainMemberTimeout(t *testing.T) {
	slow := slowGenerator{delay: 50 * time.Millisecond}
	fast := NewMockGenerator("fast")
	fast.AddResponse("hi", "quick")

	chain := NewGeneratorChain(
		[]core.Generator{slow, fast},
		func(o *ChainOptions) { o.MemberTimeout = 5 * time.Millisecond },
	)
	out, err := chain.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "quick", out)
}

type slowGenerator struct{ delay time.Duration }

func (s slowGenerator) Name() string { return "slow" }

func (s slowGenerator) Generate(ctx context.Context, _ string) (string, error) {
	select {
	case <-time.After(s.delay):
		return "late", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestSentimentChainFallsThroughToLexicon(t *testing.T) {
	remote := NewMockSentiment("remote", core.Sentiment{Label: core.SentimentPositive, Score: 0.99})
	remote.Fail(true)

	chain := NewSentimentChain([]core.SentimentAnalyzer{remote, NewLexicon()})
	res, err := chain.Analyze(context.Background(), "I love this")
	require.NoError(t, err)
	assert.Equal(t, core.SentimentPositive, res.Label)
	assert.Equal(t, "lexicon", res.Backend)
}

func TestSentimentChainReportsWinningBackend(t *testing.T) {
	remote := NewMockSentiment("remote", core.Sentiment{Label: core.SentimentNegative, Score: 0.9})
	chain := NewSentimentChain([]core.SentimentAnalyzer{remote, NewLexicon()})

	res, err := chain.Analyze(context.Background(), "whatever")
	require.NoError(t, err)
	assert.Equal(t, "remote", res.Backend)
}

func TestLexicon(t *testing.T) {
	lex := NewLexicon()

	res, err := lex.Analyze(context.Background(), "I love this great product")
	require.NoError(t, err)
	assert.Equal(t, core.SentimentPositive, res.Label)
	assert.Equal(t, 0.8, res.Score)

	res, _ = lex.Analyze(context.Background(), "this is terrible and awful")
	assert.Equal(t, core.SentimentNegative, res.Label)

	// mixed signals stay neutral
	res, _ = lex.Analyze(context.Background(), "great but terrible")
	assert.Equal(t, core.SentimentNeutral, res.Label)
	assert.Equal(t, 0.5, res.Score)

	res, _ = lex.Analyze(context.Background(), "completely flat statement")
	assert.Equal(t, core.SentimentNeutral, res.Label)

	// word-boundary: "badge" must not read as "bad"
	res, _ = lex.Analyze(context.Background(), "the badge arrived")
	assert.Equal(t, core.SentimentNeutral, res.Label)
}
