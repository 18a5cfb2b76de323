// Package index implements the lexical inverted index backing retrieval.
//
// An Index maps term -> posting list, where each posting records a document
// and the raw term frequency within it, alongside a per-document token length
// and a global document-frequency table. Build validates the corpus
// (non-empty, every document has text) and is equivalent to repeated Add
// calls; re-adding a document id replaces its old postings.
//
// Indexes are values with explicit ownership: whichever component holds the
// returned *Index owns it. An Index is immutable after build from the
// retriever's point of view: rebuilding produces a new value that the owner
// swaps in atomically, so readers never observe a half-built index.
package index
