package index

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hupe1980/chatmesh/core"
)

// docEntry holds a document plus the indexing bookkeeping that scoring needs.
type docEntry struct {
	doc    core.Document
	length int // token count
	order  int // insertion order, used for deterministic tie-breaking
}

// Index is a TF-IDF-ready inverted index over a document corpus.
//
// Invariants:
//   - every document referenced by a posting exists in the document table
//   - term frequencies are positive integers
//   - df[term] always equals the posting-list length for that term.
type Index struct {
	docs     map[string]docEntry
	order    []string                  // doc ids in insertion order
	postings map[string]map[string]int // term -> docID -> tf
	df       map[string]int            // term -> document frequency
}

// New returns an empty index. Prefer Build for whole-corpus construction.
func New() *Index {
	return &Index{
		docs:     map[string]docEntry{},
		order:    []string{},
		postings: map[string]map[string]int{},
		df:       map[string]int{},
	}
}

// Build constructs an index from the full corpus. It fails with an
// IndexBuildError when the corpus is empty or any document has empty text.
// Build is equivalent to repeated Add calls on a fresh index.
func Build(docs []core.Document) (*Index, error) {
	if len(docs) == 0 {
		return nil, &core.IndexBuildError{Reason: "document corpus is empty"}
	}
	idx := New()
	for _, doc := range docs {
		if err := idx.Add(doc); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Add indexes a single document. Re-adding an existing id replaces its old
// postings first, so Add is idempotent per document version.
func (idx *Index) Add(doc core.Document) error {
	if doc.ID == "" {
		return &core.IndexBuildError{Reason: "document has empty id"}
	}
	toks := Tokenize(doc.Text)
	if len(toks) == 0 {
		return &core.IndexBuildError{DocID: doc.ID, Reason: "document has empty text"}
	}
	if _, exists := idx.docs[doc.ID]; exists {
		idx.removeDocTerms(doc.ID)
	}

	tf := map[string]int{}
	for _, t := range toks {
		tf[t]++
	}
	for term, cnt := range tf {
		bucket, ok := idx.postings[term]
		if !ok {
			bucket = map[string]int{}
			idx.postings[term] = bucket
		}
		bucket[doc.ID] = cnt
		idx.df[term] = len(bucket)
	}

	entry := docEntry{doc: doc, length: len(toks)}
	if pos, ok := idx.orderOf(doc.ID); ok {
		entry.order = pos
	} else {
		entry.order = len(idx.order)
		idx.order = append(idx.order, doc.ID)
	}
	idx.docs[doc.ID] = entry
	return nil
}

// DocCount returns the number of indexed documents.
func (idx *Index) DocCount() int { return len(idx.docs) }

// DocumentFrequency returns how many documents contain the term.
func (idx *Index) DocumentFrequency(term string) int { return idx.df[term] }

// Postings returns a copy of the posting list for a term (docID -> tf).
func (idx *Index) Postings(term string) map[string]int {
	src, ok := idx.postings[term]
	if !ok {
		return nil
	}
	out := make(map[string]int, len(src))
	for id, tf := range src {
		out[id] = tf
	}
	return out
}

// Document returns the stored document by id.
func (idx *Index) Document(id string) (core.Document, bool) {
	entry, ok := idx.docs[id]
	return entry.doc, ok
}

// Length returns the token length of a document, minimum 1 so callers can
// divide safely.
func (idx *Index) Length(id string) int {
	if entry, ok := idx.docs[id]; ok && entry.length > 0 {
		return entry.length
	}
	return 1
}

// Order returns a document's insertion position, used for stable tie-breaks.
func (idx *Index) Order(id string) int {
	if entry, ok := idx.docs[id]; ok {
		return entry.order
	}
	return len(idx.order)
}

// Documents returns all documents in insertion order.
func (idx *Index) Documents() []core.Document {
	out := make([]core.Document, 0, len(idx.order))
	for _, id := range idx.order {
		if entry, ok := idx.docs[id]; ok {
			out = append(out, entry.doc)
		}
	}
	return out
}

func (idx *Index) orderOf(id string) (int, bool) {
	entry, ok := idx.docs[id]
	if !ok {
		return 0, false
	}
	return entry.order, true
}

// removeDocTerms strips a document's postings ahead of re-adding it.
func (idx *Index) removeDocTerms(docID string) {
	for term, bucket := range idx.postings {
		if _, ok := bucket[docID]; !ok {
			continue
		}
		delete(bucket, docID)
		if len(bucket) == 0 {
			delete(idx.postings, term)
			delete(idx.df, term)
		} else {
			idx.df[term] = len(bucket)
		}
	}
}

// snapshot is the JSON persistence shape.
type snapshot struct {
	Docs     []core.Document           `json:"docs"`
	Lengths  map[string]int            `json:"lengths"`
	Postings map[string]map[string]int `json:"postings"`
	DF       map[string]int            `json:"df"`
}

// Save writes a JSON snapshot of the index.
func (idx *Index) Save(w io.Writer) error {
	snap := snapshot{
		Docs:     idx.Documents(),
		Lengths:  make(map[string]int, len(idx.docs)),
		Postings: idx.postings,
		DF:       idx.df,
	}
	for id, entry := range idx.docs {
		snap.Lengths[id] = entry.length
	}
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	return nil
}

// Load reads a JSON snapshot previously written by Save. The snapshot's
// postings are trusted; documents are re-registered in their saved order.
func Load(r io.Reader) (*Index, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	idx := New()
	for i, doc := range snap.Docs {
		idx.docs[doc.ID] = docEntry{doc: doc, length: snap.Lengths[doc.ID], order: i}
		idx.order = append(idx.order, doc.ID)
	}
	if snap.Postings != nil {
		idx.postings = snap.Postings
	}
	if snap.DF != nil {
		idx.df = snap.DF
	}
	return idx, nil
}
