package core

// Document is an immutable unit of indexed content. Documents are created at
// index-build time, never mutated, and replaced wholesale on re-index.
type Document struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Title  string   `json:"title"`
	Tags   []string `json:"tags,omitempty"`
	Text   string   `json:"text"`
}

// RetrievalResult represents a single ranked hit produced per query. Results
// are ephemeral and never persisted.
type RetrievalResult struct {
	DocumentID   string
	Score        float64
	Title        string
	Source       string
	Snippet      string
	MatchedTerms []string
}

// Filters narrow the retrieval candidate set before scoring. A zero Filters
// value matches every document.
type Filters struct {
	// TitleContains keeps documents whose title contains the substring
	// (case-insensitive).
	TitleContains string
	// Tags keeps documents whose tag set intersects the given tags.
	Tags []string
}

// Sentiment is the normalized output of a SentimentAnalyzer. Backend names the
// analyzer that produced the result so callers can tell remote from local.
type Sentiment struct {
	Label   string  `json:"label"` // "positive" | "neutral" | "negative"
	Score   float64 `json:"score"` // confidence in [0,1]
	Backend string  `json:"backend"`
}

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// User identifies the (optionally logged-in) end user of a turn.
type User struct {
	ID   string
	Name string
}

// TurnMeta carries per-turn diagnostics attached to every reply.
type TurnMeta struct {
	Intent    Intent    `json:"intent"`
	Redacted  bool      `json:"redacted"`
	InputLen  int       `json:"input_len"`
	Sentiment Sentiment `json:"sentiment"`
}

// TurnResult is the boundary output of one request/response cycle. Reply is
// never empty: every code path produces user-facing text.
type TurnResult struct {
	Reply     string   `json:"reply"`
	SessionID string   `json:"session_id"`
	Meta      TurnMeta `json:"meta"`
}
