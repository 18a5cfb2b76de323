// Package retrieval scores and ranks indexed documents against a query.
//
// Scoring is lexical TF-IDF with a gentle length normalization, followed by a
// proximity rerank that rewards documents whose matched query terms sit close
// together in the original text. Optional filters (title substring, tag
// intersection) narrow the candidate set before any scoring happens.
//
// A query sharing no terms with the corpus yields an empty result slice;
// that is a normal "no evidence" outcome, never an error. Ordering is fully
// deterministic: descending score with ties broken by document insertion
// order.
//
// The Retriever also derives a confidence band (high/medium/low) from the top
// score. Band thresholds are configuration, not constants: the defaults were
// tuned against one sample corpus and should be recalibrated for any new one.
package retrieval
