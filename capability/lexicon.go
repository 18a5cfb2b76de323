package capability

import (
	"context"
	"strings"

	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/index"
)

// Lexicon is a local heuristic sentiment analyzer: fixed positive and
// negative word lists over whole-word tokens. It never fails, which makes it
// the natural tail of every sentiment chain.
type Lexicon struct {
	positive map[string]bool
	negative map[string]bool
}

// NewLexicon constructs the analyzer with its built-in word lists.
func NewLexicon() *Lexicon {
	toSet := func(words ...string) map[string]bool {
		m := make(map[string]bool, len(words))
		for _, w := range words {
			m[w] = true
		}
		return m
	}
	return &Lexicon{
		positive: toSet("love", "great", "good", "awesome", "fantastic", "thanks", "thank", "excellent", "amazing", "glad", "happy"),
		negative: toSet("hate", "bad", "terrible", "awful", "worst", "angry", "horrible", "sad", "upset"),
	}
}

// Name implements core.SentimentAnalyzer.
func (l *Lexicon) Name() string { return "lexicon" }

// Analyze classifies by counting polarity words. Mixed or no hits come out
// neutral at half confidence; a clear polarity scores 0.8, matching the
// heuristic this analyzer stands in for.
func (l *Lexicon) Analyze(_ context.Context, text string) (core.Sentiment, error) {
	var pos, neg bool
	for _, tok := range index.Tokenize(strings.ToLower(text)) {
		if l.positive[tok] {
			pos = true
		}
		if l.negative[tok] {
			neg = true
		}
	}

	label := core.SentimentNeutral
	score := 0.5
	switch {
	case pos && !neg:
		label = core.SentimentPositive
		score = 0.8
	case neg && !pos:
		label = core.SentimentNegative
		score = 0.8
	}
	return core.Sentiment{Label: label, Score: score, Backend: l.Name()}, nil
}
