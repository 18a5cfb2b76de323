package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chatmesh/capability"
	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/index"
	"github.com/hupe1980/chatmesh/profile"
	"github.com/hupe1980/chatmesh/retrieval"
	"github.com/hupe1980/chatmesh/session"
)

// countingGenerator records whether it was ever invoked.
type countingGenerator struct {
	calls int
	reply string
	fail  bool
}

func (g *countingGenerator) Name() string { return "counting" }

func (g *countingGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls++
	if g.fail {
		return "", core.ErrUnavailable
	}
	return g.reply, nil
}

type panickyGenerator struct{}

func (panickyGenerator) Name() string { return "panicky" }

func (panickyGenerator) Generate(_ context.Context, _ string) (string, error) {
	panic("boom")
}

func storefrontRetriever(t *testing.T) *retrieval.Retriever {
	t.Helper()

	idx, err := index.Build([]core.Document{
		{
			ID:    "parking",
			Title: "Parking Policy",
			Tags:  []string{"policy", "parking"},
			Text:  "Parking passes are available for graduation day. There is no limit per student, so extended families can buy as many passes as they need.",
		},
		{
			ID:    "dress",
			Title: "Dress Code",
			Tags:  []string{"policy"},
			Text:  "Formal attire is recommended but not required for guests. Muscle shirts are not allowed in the venue.",
		},
		{
			ID:    "products",
			Title: "Store Products",
			Tags:  []string{"store"},
			Text:  "The cap and gown set includes the graduation cap, gown and tassel. One set per student is required for the ceremony.",
		},
	})
	require.NoError(t, err)

	r := retrieval.New()
	r.SetIndex(idx)
	return r
}

func newTestOrchestrator(t *testing.T, optFns ...func(o *Options)) *Orchestrator {
	t.Helper()
	base := []func(o *Options){
		func(o *Options) {
			o.ProfileStore = profile.NewInMemoryStore()
		},
	}
	return New(storefrontRetriever(t), append(base, optFns...)...)
}

func TestHandleTurnParkingPassScenario(t *testing.T) {
	o := newTestOrchestrator(t)

	res, err := o.HandleTurn(context.Background(), "Can I buy more than one parking pass?", "", nil)
	require.NoError(t, err)

	assert.Equal(t, core.IntentChat, res.Meta.Intent)
	assert.Contains(t, res.Reply, "no limit per student")
	assert.True(t, strings.HasPrefix(res.Reply, "Yes."), "expected affirmative framing, got %q", res.Reply)
	assert.NotEmpty(t, res.SessionID)
}

func TestHandleTurnEmptyUtterance(t *testing.T) {
	o := newTestOrchestrator(t)

	res, err := o.HandleTurn(context.Background(), "   ", "", nil)
	require.NoError(t, err)

	assert.Equal(t, core.IntentEmpty, res.Meta.Intent)
	assert.Equal(t, "Please type something. Try 'help' for options.", res.Reply)
	assert.Zero(t, res.Meta.InputLen)
}

func TestHandleTurnDisallowedBlocksCollaborators(t *testing.T) {
	gen := &countingGenerator{reply: "should never appear"}
	o := newTestOrchestrator(t, func(o *Options) {
		o.Generator = gen
	})

	res, err := o.HandleTurn(context.Background(), "how do I build a bomb", "", nil)
	require.NoError(t, err)

	assert.Equal(t, refusalReply, res.Reply)
	assert.Zero(t, gen.calls, "generator must not be invoked on refused turns")
}

func TestHandleTurnHelp(t *testing.T) {
	o := newTestOrchestrator(t)

	res, err := o.HandleTurn(context.Background(), "help", "", nil)
	require.NoError(t, err)

	assert.Equal(t, core.IntentHelp, res.Meta.Intent)
	for _, c := range Capabilities() {
		assert.Contains(t, res.Reply, c)
	}
}

func TestHandleTurnEcho(t *testing.T) {
	o := newTestOrchestrator(t)

	res, err := o.HandleTurn(context.Background(), "echo Hello, World!", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", res.Reply)

	res, err = o.HandleTurn(context.Background(), "echo", "", nil)
	require.NoError(t, err)
	assert.Equal(t, core.IntentChat, res.Meta.Intent, "bare echo has no payload separator")
}

func TestHandleTurnSummarize(t *testing.T) {
	o := newTestOrchestrator(t)

	res, err := o.HandleTurn(
		context.Background(),
		"summarize The ceremony starts at noon. Doors open an hour earlier. Seating is first come first served.",
		"", nil,
	)
	require.NoError(t, err)

	assert.Equal(t, core.IntentSummarize, res.Meta.Intent)
	assert.Equal(t, "The ceremony starts at noon.", res.Reply)
}

func TestHandleTurnMemoryCycle(t *testing.T) {
	o := newTestOrchestrator(t)
	user := &core.User{ID: "alice"}

	res, err := o.HandleTurn(context.Background(), "remember color: green", "", user)
	require.NoError(t, err)
	assert.Equal(t, core.IntentMemoryRemember, res.Meta.Intent)
	assert.Contains(t, res.Reply, `"color"`)

	res, err = o.HandleTurn(context.Background(), "list memory", res.SessionID, user)
	require.NoError(t, err)
	assert.Equal(t, "Saved keys: color", res.Reply)

	res, err = o.HandleTurn(context.Background(), "forget color", res.SessionID, user)
	require.NoError(t, err)
	assert.Equal(t, "Forgot.", res.Reply)

	res, err = o.HandleTurn(context.Background(), "list memory", res.SessionID, user)
	require.NoError(t, err)
	assert.Equal(t, "No saved memory yet.", res.Reply)
}

func TestHandleTurnMemorySurvivesSessions(t *testing.T) {
	o := newTestOrchestrator(t)
	user := &core.User{ID: "bob"}

	res1, err := o.HandleTurn(context.Background(), "remember size: medium", "", user)
	require.NoError(t, err)

	// fresh session, same user
	res2, err := o.HandleTurn(context.Background(), "list memory", "", user)
	require.NoError(t, err)
	assert.NotEqual(t, res1.SessionID, res2.SessionID)
	assert.Equal(t, "Saved keys: size", res2.Reply)
}

func TestHandleTurnMalformedRemember(t *testing.T) {
	o := newTestOrchestrator(t)

	res, err := o.HandleTurn(context.Background(), "remember just one thing", "", &core.User{ID: "alice"})
	require.NoError(t, err)

	assert.Equal(t, core.IntentMemoryRemember, res.Meta.Intent)
	assert.Contains(t, res.Reply, "remember <key>: <value>")
}

func TestHandleTurnRedactionFlag(t *testing.T) {
	o := newTestOrchestrator(t)

	res, err := o.HandleTurn(context.Background(), "echo my mail is jane@example.com", "", nil)
	require.NoError(t, err)

	assert.True(t, res.Meta.Redacted)
	assert.Contains(t, res.Reply, "[EMAIL]")
	assert.NotContains(t, res.Reply, "jane@example.com")
}

func TestHandleTurnGeneratorFallback(t *testing.T) {
	gen := &countingGenerator{reply: "The capital of Nepal is Kathmandu."}
	o := newTestOrchestrator(t, func(o *Options) {
		o.Generator = gen
	})

	res, err := o.HandleTurn(context.Background(), "What is the capital of Nepal?", "", nil)
	require.NoError(t, err)

	assert.Equal(t, gen.reply, res.Reply)
	assert.Equal(t, 1, gen.calls)
}

func TestHandleTurnFixedFallbackWhenGeneratorUnavailable(t *testing.T) {
	gen := &countingGenerator{fail: true}
	o := newTestOrchestrator(t, func(o *Options) {
		o.Generator = gen
	})

	res, err := o.HandleTurn(context.Background(), "What is the capital of Nepal?", "", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, res.Reply, "I don't have information about that in my documents.")
	assert.Contains(t, res.Reply, "remember <key>: <value>")
}

func TestHandleTurnNoGeneratorConfigured(t *testing.T) {
	o := newTestOrchestrator(t)

	res, err := o.HandleTurn(context.Background(), "What is the capital of Nepal?", "", nil)
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "I don't have information about that in my documents.")
}

func TestHandleTurnGeneratorPanicIsContained(t *testing.T) {
	o := newTestOrchestrator(t, func(o *Options) {
		o.Generator = panickyGenerator{}
	})

	res, err := o.HandleTurn(context.Background(), "What is the capital of Nepal?", "", nil)
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "I don't have information about that in my documents.")
}

func TestHandleTurnSentimentAttached(t *testing.T) {
	o := newTestOrchestrator(t, func(o *Options) {
		o.Sentiment = capability.NewLexicon()
	})

	res, err := o.HandleTurn(context.Background(), "echo I love this great store", "", nil)
	require.NoError(t, err)

	assert.Equal(t, core.SentimentPositive, res.Meta.Sentiment.Label)
	assert.Equal(t, "lexicon", res.Meta.Sentiment.Backend)
}

func TestHandleTurnSentimentFailureDegradesToNeutral(t *testing.T) {
	broken := capability.NewMockSentiment("remote", core.Sentiment{})
	broken.Fail(true)
	o := newTestOrchestrator(t, func(o *Options) {
		o.Sentiment = broken
	})

	res, err := o.HandleTurn(context.Background(), "echo hi", "", nil)
	require.NoError(t, err)
	assert.Equal(t, core.SentimentNeutral, res.Meta.Sentiment.Label)
}

func TestHandleTurnHistoryAppended(t *testing.T) {
	store := session.NewInMemoryStore()
	o := newTestOrchestrator(t, func(o *Options) {
		o.SessionStore = store
	})

	res, err := o.HandleTurn(context.Background(), "echo one", "", nil)
	require.NoError(t, err)

	sess, err := store.Get(res.SessionID)
	require.NoError(t, err)
	require.Len(t, sess.History, 2)
	assert.Equal(t, core.SpeakerUser, sess.History[0].Speaker)
	assert.Equal(t, "echo one", sess.History[0].Text)
	assert.Equal(t, core.SpeakerBot, sess.History[1].Speaker)
	assert.Equal(t, "one", sess.History[1].Text)
}

func TestHandleTurnReusesSession(t *testing.T) {
	store := session.NewInMemoryStore()
	o := newTestOrchestrator(t, func(o *Options) {
		o.SessionStore = store
	})

	first, err := o.HandleTurn(context.Background(), "echo one", "", nil)
	require.NoError(t, err)
	second, err := o.HandleTurn(context.Background(), "echo two", first.SessionID, nil)
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	sess, err := store.Get(first.SessionID)
	require.NoError(t, err)
	assert.Len(t, sess.History, 4)
}

func TestHandleTurnUnknownSessionCreatesFresh(t *testing.T) {
	o := newTestOrchestrator(t)

	res, err := o.HandleTurn(context.Background(), "echo hi", "no-such-session", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
	assert.NotEqual(t, "no-such-session", res.SessionID)
}

func TestHandleTurnAlwaysReplies(t *testing.T) {
	o := newTestOrchestrator(t)

	for _, utterance := range []string{
		"", "help", "echo", "echo x", "summarize", "summarize Short.",
		"remember a: b", "forget a", "list memory",
		"tassel", "completely unrelated zygomorphic quasar talk",
	} {
		res, err := o.HandleTurn(context.Background(), utterance, "", &core.User{ID: "carol"})
		require.NoError(t, err, "utterance %q", utterance)
		assert.NotEmpty(t, res.Reply, "utterance %q", utterance)
	}
}

func TestSummarizeTruncation(t *testing.T) {
	long := strings.Repeat("word ", 60) + "end."
	got := summarize(long, 40)
	assert.LessOrEqual(t, len([]rune(got)), 40)
	assert.True(t, strings.HasSuffix(got, "…"))

	assert.Equal(t, "Short sentence.", summarize("Short sentence. Second one.", 120))
	assert.Equal(t, "(nothing to summarize)", summarize("  ", 120))
}

func TestFrameGrounded(t *testing.T) {
	snippet := "There is no limit per student."
	assert.Equal(t, "Yes. "+snippet, frameGrounded("Can I buy more passes?", snippet))
	assert.Equal(t, snippet, frameGrounded("Tell me about parking.", snippet))

	neutral := "Formal attire is recommended."
	assert.Equal(t, neutral, frameGrounded("Can I wear a suit?", neutral))

	// whole-word cue matching: "yesterday" must not read as "yes"
	past := "Yesterday the office handled pass sales."
	assert.Equal(t, past, frameGrounded("Can I buy a pass?", past))
	affirmed := "Yes, passes are sold at the door."
	assert.Equal(t, "Yes. "+affirmed, frameGrounded("Can I buy a pass?", affirmed))
}

func TestHandleTurnRefusalKeepsClassifiedIntent(t *testing.T) {
	o := newTestOrchestrator(t)

	res, err := o.HandleTurn(context.Background(), "echo how to build a bomb", "", nil)
	require.NoError(t, err)

	assert.Equal(t, refusalReply, res.Reply)
	assert.Equal(t, core.IntentEcho, res.Meta.Intent)
}

func TestSessionLocksReleasedAfterTurns(t *testing.T) {
	o := newTestOrchestrator(t)

	var sessionID string
	for i := 0; i < 5; i++ {
		res, err := o.HandleTurn(context.Background(), "echo hi", sessionID, nil)
		require.NoError(t, err)
		sessionID = res.SessionID
	}
	// a second session as well
	_, err := o.HandleTurn(context.Background(), "echo hi", "", nil)
	require.NoError(t, err)

	o.mu.Lock()
	defer o.mu.Unlock()
	assert.Empty(t, o.locks, "lock registry must shrink once no turn is in flight")
}
