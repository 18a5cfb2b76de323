package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/hupe1980/chatmesh/capability"
	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/guardrail"
	"github.com/hupe1980/chatmesh/intent"
	"github.com/hupe1980/chatmesh/logging"
	"github.com/hupe1980/chatmesh/retrieval"
	"github.com/hupe1980/chatmesh/session"
)

// Reply templates. Fixed strings so transcript assertions stay stable across
// releases.
const (
	refusalReply  = "I can't help with that topic. Please ask something safe and appropriate."
	emptyReply    = "Please type something. Try 'help' for options."
	nothingToEcho = "(nothing to echo)"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// SessionStore keeps per-session conversation history.
	SessionStore core.SessionStore
	// ProfileStore keeps durable user preferences.
	ProfileStore core.ProfileStore
	// Filter screens and redacts user input.
	Filter *guardrail.Filter
	// Generator answers questions the corpus cannot. May be nil.
	Generator core.Generator
	// Sentiment tags each turn. Defaults to the local lexicon.
	Sentiment core.SentimentAnalyzer
	// Logger receives structured events.
	Logger logging.Logger
	// MaxInputChars caps utterance length before classification.
	MaxInputChars int
	// TopK bounds the retrieval candidate list per turn.
	TopK int
	// SummaryLength caps summarize replies, in runes.
	SummaryLength int
}

// Orchestrator drives one request/response cycle: guardrail screening, intent
// routing, retrieval-grounded answering, and capability fallback. Public
// methods are safe for concurrent use; turns for the same session are
// serialized while different sessions proceed independently.
type Orchestrator struct {
	retriever *retrieval.Retriever

	sessions  core.SessionStore
	profiles  core.ProfileStore
	filter    *guardrail.Filter
	generator core.Generator
	sentiment core.SentimentAnalyzer
	logger    logging.Logger

	maxInputChars int
	topK          int
	summaryLength int

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock serializes turns for one session. Entries are reference-counted
// so the registry shrinks back once no turn is in flight; unlike the session
// store, it never accumulates expired sessions.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// New constructs an Orchestrator around a retriever with optional overrides.
func New(retriever *retrieval.Retriever, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		SessionStore:  session.NewInMemoryStore(),
		Sentiment:     capability.NewLexicon(),
		Logger:        logging.NoOpLogger{},
		MaxInputChars: 500,
		TopK:          2,
		SummaryLength: 120,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Filter == nil {
		opts.Filter = guardrail.New(func(o *guardrail.Options) {
			o.Logger = opts.Logger
		})
	}

	return &Orchestrator{
		retriever:     retriever,
		sessions:      opts.SessionStore,
		profiles:      opts.ProfileStore,
		filter:        opts.Filter,
		generator:     opts.Generator,
		sentiment:     opts.Sentiment,
		logger:        opts.Logger,
		maxInputChars: opts.MaxInputChars,
		topK:          opts.TopK,
		summaryLength: opts.SummaryLength,
		locks:         make(map[string]*sessionLock),
	}
}

// Capabilities lists the commands the orchestrator understands. The help
// intent and the final fallback reply both surface this list.
func Capabilities() []string {
	return []string{
		"help",
		"remember <key>: <value>",
		"forget <key>",
		"list memory",
		"echo <text>",
		"summarize <paragraph>",
		"questions about the indexed documents",
	}
}

// HandleTurn processes one user turn. It always produces a reply; an error is
// returned only for caller mistakes such as an unusable session store, never
// for collaborator failures, which degrade to the fallback reply.
func (o *Orchestrator) HandleTurn(ctx context.Context, utterance, sessionID string, user *core.User) (*core.TurnResult, error) {
	userID := "guest"
	if user != nil && user.ID != "" {
		userID = user.ID
	}

	sess, err := o.resolveSession(sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	lock := o.acquireSession(sess.ID)
	defer o.releaseSession(sess.ID, lock)

	text := o.filter.Normalize(utterance)
	text = o.filter.CapLength(text, o.maxInputChars)

	redactedText, redacted := o.filter.Redact(text)
	it := intent.Classify(redactedText)
	sentiment := o.analyzeSentiment(ctx, redactedText)

	if o.filter.IsDisallowed(redactedText) {
		o.logger.Warn("turn blocked by denylist", "session_id", sess.ID, "intent", string(it))
		return o.finishTurn(sess, it, refusalReply, redactedText, redacted, sentiment), nil
	}

	var reply string
	switch it {
	case core.IntentEmpty:
		reply = emptyReply
	case core.IntentHelp:
		reply = helpReply()
	case core.IntentEcho:
		reply = intent.EchoPayload(redactedText)
		if reply == "" {
			reply = nothingToEcho
		}
	case core.IntentSummarize:
		reply = summarize(intent.SummarizePayload(redactedText), o.summaryLength)
	case core.IntentMemoryRemember, core.IntentMemoryForget, core.IntentMemoryList:
		reply = o.handleMemory(it, userID, redactedText)
	default:
		reply = o.answerChat(ctx, redactedText)
	}

	return o.finishTurn(sess, it, reply, redactedText, redacted, sentiment), nil
}

// resolveSession loads an existing session or creates a fresh one. A missing
// or expired session ID is not an error; the caller simply gets a new session.
func (o *Orchestrator) resolveSession(sessionID, userID string) (*core.Session, error) {
	if sessionID != "" {
		sess, err := o.sessions.Get(sessionID)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
	}
	return o.sessions.Create(userID)
}

func (o *Orchestrator) acquireSession(sessionID string) *sessionLock {
	o.mu.Lock()
	lock, ok := o.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		o.locks[sessionID] = lock
	}
	lock.refs++
	o.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (o *Orchestrator) releaseSession(sessionID string, lock *sessionLock) {
	lock.mu.Unlock()

	o.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(o.locks, sessionID)
	}
	o.mu.Unlock()
}

// finishTurn appends history and assembles the result. History is written
// only here, after the reply is final, so a failed collaborator can never
// leave a session half updated.
func (o *Orchestrator) finishTurn(sess *core.Session, it core.Intent, reply, redactedText string, redacted bool, sentiment core.Sentiment) *core.TurnResult {
	if redactedText != "" {
		if err := o.sessions.AppendUser(sess.ID, redactedText); err != nil {
			o.logger.Warn("history append failed", "session_id", sess.ID, "error", err)
		}
	}
	if err := o.sessions.AppendBot(sess.ID, reply); err != nil {
		o.logger.Warn("history append failed", "session_id", sess.ID, "error", err)
	}

	return &core.TurnResult{
		Reply:     reply,
		SessionID: sess.ID,
		Meta: core.TurnMeta{
			Intent:    it,
			Redacted:  redacted,
			InputLen:  utf8.RuneCountInString(redactedText),
			Sentiment: sentiment,
		},
	}
}

// analyzeSentiment never fails: an analyzer error degrades to a neutral tag.
func (o *Orchestrator) analyzeSentiment(ctx context.Context, text string) (s core.Sentiment) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("sentiment analyzer panicked", "panic", r)
			s = neutralSentiment()
		}
	}()

	if o.sentiment == nil {
		return neutralSentiment()
	}
	res, err := o.sentiment.Analyze(ctx, text)
	if err != nil {
		o.logger.Warn("sentiment analysis failed", "backend", o.sentiment.Name(), "error", err)
		return neutralSentiment()
	}
	return res
}

func neutralSentiment() core.Sentiment {
	return core.Sentiment{Label: core.SentimentNeutral, Score: 0.5, Backend: "none"}
}

func helpReply() string {
	var b strings.Builder
	b.WriteString("I can:")
	for _, c := range Capabilities() {
		b.WriteString("\n- ")
		b.WriteString(c)
	}
	return b.String()
}

// handleMemory services the three profile commands against the profile store.
// Store failures degrade to an apologetic reply rather than an error.
func (o *Orchestrator) handleMemory(it core.Intent, userID, text string) string {
	if o.profiles == nil {
		return "I can't save memory right now."
	}

	prof, err := o.profiles.Load(userID)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			o.logger.Warn("profile load failed", "user_id", userID, "error", err)
			return "I can't access your saved memory right now."
		}
		prof = core.NewProfile(userID)
	}

	switch it {
	case core.IntentMemoryRemember:
		key, value, err := intent.ParseRemember(text)
		if err != nil {
			var malformed *core.MalformedCommandError
			if errors.As(err, &malformed) {
				return "Sorry, I didn't understand that memory command. " + upperFirst(malformed.Hint) + "."
			}
			return "Sorry, I didn't understand that memory command."
		}
		prof.Remember(key, value)
		if err := o.profiles.Save(prof); err != nil {
			o.logger.Warn("profile save failed", "user_id", userID, "error", err)
			return "I couldn't save that right now."
		}
		return fmt.Sprintf("Okay, I'll remember %q.", key)

	case core.IntentMemoryForget:
		key := intent.ForgetKey(text)
		if !prof.Forget(key) {
			return fmt.Sprintf("I had nothing stored as %q.", key)
		}
		if err := o.profiles.Save(prof); err != nil {
			o.logger.Warn("profile save failed", "user_id", userID, "error", err)
			return "I couldn't update your memory right now."
		}
		return "Forgot."

	default: // memory_list
		keys := prof.List()
		if len(keys) == 0 {
			return "No saved memory yet."
		}
		return "Saved keys: " + strings.Join(keys, ", ")
	}
}

// answerChat runs retrieval and phrases a reply by confidence band. Empty or
// low-confidence retrieval delegates to the generator; generator failure (or
// absence) yields the fixed capability-naming fallback.
func (o *Orchestrator) answerChat(ctx context.Context, query string) string {
	results := o.retriever.Retrieve(query, o.topK, nil)
	confidence := o.retriever.Confidence(results)

	switch o.retriever.Band(confidence) {
	case retrieval.BandHigh:
		return frameGrounded(query, results[0].Snippet)
	case retrieval.BandMedium:
		return "Based on the documents: " + results[0].Snippet
	}

	if reply, ok := o.generate(ctx, query); ok {
		return reply
	}
	return fallbackReply()
}

// generate calls the injected generator with a panic/error boundary. A false
// return means the caller should fall back.
func (o *Orchestrator) generate(ctx context.Context, query string) (reply string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("generator panicked", "panic", r)
			reply, ok = "", false
		}
	}()

	if o.generator == nil {
		return "", false
	}
	out, err := o.generator.Generate(ctx, "Answer this question concisely in 1-2 sentences: "+query)
	if err != nil {
		o.logger.Warn("generation failed", "backend", o.generator.Name(), "error", err)
		return "", false
	}
	return out, true
}

func fallbackReply() string {
	return "I don't have information about that in my documents. I can:\n- " +
		strings.Join(Capabilities(), "\n- ")
}

var yesNoRE = regexp.MustCompile(`^(?i)(?:can|could|may|will|would|should|is|are|do|does|did)\b`)

// affirmative cues that make a yes/no question answerable as "yes" from the
// snippet alone; single-word cues need whole-word matching so "yes" never
// fires inside "yesterday"
var (
	affirmativePhrases = []string{"no limit", "as many as"}
	affirmativeWords   = []string{"yes", "unlimited"}
)

// frameGrounded phrases a high-confidence snippet. Yes/no questions whose
// snippet carries an affirmative cue get an explicit "Yes" so the user is not
// left to infer the answer from policy text.
func frameGrounded(query, snippet string) string {
	if !yesNoRE.MatchString(strings.TrimSpace(query)) {
		return snippet
	}
	lower := strings.ToLower(snippet)
	for _, cue := range affirmativePhrases {
		if strings.Contains(lower, cue) {
			return "Yes. " + snippet
		}
	}
	for _, cue := range affirmativeWords {
		if intent.ContainsWord(snippet, cue) {
			return "Yes. " + snippet
		}
	}
	return snippet
}

var sentenceEndRE = regexp.MustCompile(`[.!?](?:\s|$)`)

// summarize keeps the first sentence, truncated to targetLen runes.
func summarize(text string, targetLen int) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return "(nothing to summarize)"
	}
	if loc := sentenceEndRE.FindStringIndex(s); loc != nil {
		s = strings.TrimSpace(s[:loc[0]+1])
	}
	if targetLen <= 0 || utf8.RuneCountInString(s) <= targetLen {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:targetLen-1]), " ") + "…"
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
