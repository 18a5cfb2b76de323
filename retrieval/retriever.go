package retrieval

import (
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/index"
)

// Band classifies how much trust the orchestrator should place in the top
// retrieval result.
type Band string

const (
	// BandHigh allows direct, confident phrasing.
	BandHigh Band = "high"
	// BandMedium requires hedged phrasing.
	BandMedium Band = "medium"
	// BandLow means results are weak; callers should prefer other evidence.
	BandLow Band = "low"
)

// Options configure a Retriever. The threshold defaults are calibrated to
// this scorer's scale: the 1/sqrt(docLen) length norm keeps realistic top
// scores in the low single digits. They remain configuration because the
// right cut points shift with corpus size and document length.
type Options struct {
	// HighThreshold is the minimum top score for BandHigh.
	HighThreshold float64
	// MediumThreshold is the minimum top score for BandMedium.
	MediumThreshold float64
	// SnippetRadius is the number of characters kept either side of the
	// first query-term hit when extracting snippets.
	SnippetRadius int
	// ProximityWindow is the word gap at which the proximity bonus decays
	// to zero.
	ProximityWindow int
	// ProximityBonus is the maximum rerank bonus for perfectly clustered
	// query terms.
	ProximityBonus float64
}

// Retriever owns the current index generation and answers queries against it.
// SetIndex swaps generations atomically, so in-flight queries always see a
// complete index.
type Retriever struct {
	idx  atomic.Pointer[index.Index]
	opts Options
}

// New constructs a Retriever with optional overrides.
func New(optFns ...func(o *Options)) *Retriever {
	opts := Options{
		HighThreshold:   1.6,
		MediumThreshold: 1.3,
		SnippetRadius:   100,
		ProximityWindow: 10,
		ProximityBonus:  0.25,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Retriever{opts: opts}
}

// SetIndex atomically replaces the index generation. Passing nil clears it.
func (r *Retriever) SetIndex(idx *index.Index) { r.idx.Store(idx) }

// Index returns the current index generation, or nil before the first build.
func (r *Retriever) Index() *index.Index { return r.idx.Load() }

// Retrieve ranks documents of the current index against the query. The result
// is at most topK long, sorted descending by score with ties broken by
// insertion order. Filters, when non-nil, narrow the candidate set before
// scoring. An empty result is a normal outcome, not an error.
func (r *Retriever) Retrieve(query string, topK int, filters *core.Filters) []core.RetrievalResult {
	idx := r.idx.Load()
	if idx == nil || idx.DocCount() == 0 || topK <= 0 {
		return []core.RetrievalResult{}
	}

	qTokens := index.Tokenize(query)
	if len(qTokens) == 0 {
		return []core.RetrievalResult{}
	}
	qTF := map[string]int{}
	qOrder := make([]string, 0, len(qTokens))
	for _, t := range qTokens {
		if qTF[t] == 0 {
			qOrder = append(qOrder, t)
		}
		qTF[t]++
	}

	n := idx.DocCount()
	scores := map[string]float64{}
	matched := map[string][]string{}
	for _, term := range qOrder {
		postings := idx.Postings(term)
		if len(postings) == 0 {
			// unseen query terms contribute nothing
			continue
		}
		df := idx.DocumentFrequency(term)
		if df < 1 {
			df = 1
		}
		idf := math.Log(float64(1+n)/float64(1+df)) + 1.0
		wq := (1 + math.Log(float64(qTF[term]))) * idf
		for docID, tf := range postings {
			if !r.passesFilters(idx, docID, filters) {
				continue
			}
			wd := (1 + math.Log(float64(tf))) * idf
			scores[docID] += wq * wd
			matched[docID] = append(matched[docID], term)
		}
	}
	if len(scores) == 0 {
		return []core.RetrievalResult{}
	}

	results := make([]core.RetrievalResult, 0, len(scores))
	for docID, score := range scores {
		doc, ok := idx.Document(docID)
		if !ok {
			continue
		}
		score *= 1.0 / math.Sqrt(float64(idx.Length(docID)))
		score += r.proximityBonus(doc.Text, matched[docID])
		results = append(results, core.RetrievalResult{
			DocumentID:   docID,
			Score:        score,
			Title:        doc.Title,
			Source:       doc.Source,
			Snippet:      extractSnippet(doc.Text, qOrder, r.opts.SnippetRadius),
			MatchedTerms: matched[docID],
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return idx.Order(results[i].DocumentID) < idx.Order(results[j].DocumentID)
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Band maps a top-result score to a confidence band.
func (r *Retriever) Band(score float64) Band {
	switch {
	case score >= r.opts.HighThreshold:
		return BandHigh
	case score >= r.opts.MediumThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

// Confidence returns the scalar confidence for a result set: the top score,
// or zero when empty.
func (r *Retriever) Confidence(results []core.RetrievalResult) float64 {
	if len(results) == 0 {
		return 0
	}
	return results[0].Score
}

func (r *Retriever) passesFilters(idx *index.Index, docID string, filters *core.Filters) bool {
	if filters == nil {
		return true
	}
	doc, ok := idx.Document(docID)
	if !ok {
		return false
	}
	if want := strings.TrimSpace(filters.TitleContains); want != "" {
		if !strings.Contains(strings.ToLower(doc.Title), strings.ToLower(want)) {
			return false
		}
	}
	if len(filters.Tags) > 0 {
		docTags := map[string]bool{}
		for _, t := range doc.Tags {
			docTags[strings.ToLower(t)] = true
		}
		hit := false
		for _, t := range filters.Tags {
			if docTags[strings.ToLower(t)] {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// proximityBonus rewards documents whose matched terms cluster together in
// the original text. The bonus is proportional to the inverse of the minimum
// word gap between occurrences of two distinct matched terms; a single
// matched term, or terms further apart than the window, earn nothing.
func (r *Retriever) proximityBonus(text string, matchedTerms []string) float64 {
	if len(matchedTerms) < 2 {
		return 0
	}
	want := map[string]bool{}
	for _, t := range matchedTerms {
		want[t] = true
	}

	type occurrence struct {
		pos  int
		term string
	}
	var occs []occurrence
	for pos, tok := range index.Tokenize(text) {
		if want[tok] {
			occs = append(occs, occurrence{pos: pos, term: tok})
		}
	}

	minGap := -1
	for i := 1; i < len(occs); i++ {
		if occs[i].term == occs[i-1].term {
			continue
		}
		gap := occs[i].pos - occs[i-1].pos
		if minGap < 0 || gap < minGap {
			minGap = gap
		}
	}
	if minGap < 0 || minGap >= r.opts.ProximityWindow {
		return 0
	}
	return r.opts.ProximityBonus * (1.0 - float64(minGap)/float64(r.opts.ProximityWindow))
}
