// Package chatmesh provides a high-level façade over the turn orchestrator
// and service abstractions (index, retrieval, guardrails, sessions, profiles
// & logging) enabling rapid construction of retrieval-grounded chat systems.
// Most applications interact with this package by:
//  1. Creating a ChatMesh via New() (optionally overriding default in-memory services)
//  2. Indexing a document corpus (IndexDocuments)
//  3. Handling user turns (HandleTurn) or querying the corpus directly (Retrieve)
//
// The façade delegates turn processing to orchestrator.Orchestrator while
// keeping setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply durable
// store implementations, remote capability chains and a structured logger.
package chatmesh

import (
	"context"

	"github.com/hupe1980/chatmesh/capability"
	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/guardrail"
	"github.com/hupe1980/chatmesh/index"
	"github.com/hupe1980/chatmesh/logging"
	"github.com/hupe1980/chatmesh/orchestrator"
	"github.com/hupe1980/chatmesh/profile"
	"github.com/hupe1980/chatmesh/retrieval"
	"github.com/hupe1980/chatmesh/session"
)

// Options configures the ChatMesh instance.
type Options struct {
	// RetrieverOptions tunes scoring thresholds, snippet extraction and
	// proximity reranking.
	RetrieverOptions func(o *retrieval.Options)

	// OrchestratorOptions tunes turn handling (input cap, topK, summary
	// length) beyond the wiring the façade performs itself.
	OrchestratorOptions func(o *orchestrator.Options)

	// Stores (default to in-memory implementations if not provided)
	SessionStore core.SessionStore
	ProfileStore core.ProfileStore

	// Generator answers questions the corpus cannot. Typically a
	// capability.GeneratorChain; nil disables the general-knowledge path.
	Generator core.Generator

	// Sentiment tags turns. Typically a capability.SentimentChain ending in
	// the local lexicon; defaults to the lexicon alone.
	Sentiment core.SentimentAnalyzer

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// ChatMesh is the high-level façade aggregating the orchestrator and services.
type ChatMesh struct {
	opts         Options
	retriever    *retrieval.Retriever
	orchestrator *orchestrator.Orchestrator
}

// New creates a new ChatMesh instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *ChatMesh {
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		ProfileStore: profile.NewInMemoryStore(),
		Sentiment:    capability.NewLexicon(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var retrieverFns []func(o *retrieval.Options)
	if opts.RetrieverOptions != nil {
		retrieverFns = append(retrieverFns, opts.RetrieverOptions)
	}
	retriever := retrieval.New(retrieverFns...)

	orchestratorFns := []func(o *orchestrator.Options){
		func(o *orchestrator.Options) {
			o.SessionStore = opts.SessionStore
			o.ProfileStore = opts.ProfileStore
			o.Generator = opts.Generator
			o.Sentiment = opts.Sentiment
			o.Logger = opts.Logger
			o.Filter = guardrail.New(func(g *guardrail.Options) {
				g.Logger = opts.Logger
			})
		},
	}
	if opts.OrchestratorOptions != nil {
		orchestratorFns = append(orchestratorFns, opts.OrchestratorOptions)
	}

	return &ChatMesh{
		opts:         opts,
		retriever:    retriever,
		orchestrator: orchestrator.New(retriever, orchestratorFns...),
	}
}

// IndexDocuments builds a fresh index from docs and atomically swaps it in.
// In-flight retrievals keep reading the previous generation; no reader ever
// observes a half-built index. An empty or text-less corpus fails with an
// IndexBuildError and leaves the current index untouched.
func (m *ChatMesh) IndexDocuments(docs []core.Document) error {
	idx, err := index.Build(docs)
	if err != nil {
		return err
	}
	m.retriever.SetIndex(idx)
	m.opts.Logger.Info("index swapped", "documents", idx.DocCount())
	return nil
}

// HandleTurn processes one user turn and always yields a reply. Pass an empty
// sessionID (or one that has expired) to start a fresh session; the returned
// TurnResult carries the session ID to use for the next turn. user may be nil
// for anonymous turns.
func (m *ChatMesh) HandleTurn(ctx context.Context, utterance, sessionID string, user *core.User) (*core.TurnResult, error) {
	return m.orchestrator.HandleTurn(ctx, utterance, sessionID, user)
}

// Retrieve queries the current index directly, bypassing turn handling.
func (m *ChatMesh) Retrieve(query string, topK int, filters *core.Filters) []core.RetrievalResult {
	return m.retriever.Retrieve(query, topK, filters)
}
