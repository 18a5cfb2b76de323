package index

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chatmesh/core"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world"}, Tokenize("Hello, World!"))
	assert.Equal(t, []string{"don't", "stop"}, Tokenize("Don't stop."))
	assert.Empty(t, Tokenize("  \t\n "))
	assert.Equal(t, []string{"cap", "and", "gown"}, Tokenize("cap-and-gown"))
}

func TestBuildEmptyCorpus(t *testing.T) {
	_, err := Build(nil)
	require.Error(t, err)
	var buildErr *core.IndexBuildError
	require.ErrorAs(t, err, &buildErr)
}

func TestBuildEmptyText(t *testing.T) {
	_, err := Build([]core.Document{{ID: "d1", Text: "   "}})
	require.Error(t, err)
	var buildErr *core.IndexBuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, "d1", buildErr.DocID)
}

func TestAddAndFrequencies(t *testing.T) {
	idx, err := Build([]core.Document{
		{ID: "a", Title: "A", Text: "parking pass parking"},
		{ID: "b", Title: "B", Text: "dress code"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, idx.DocCount())
	assert.Equal(t, 1, idx.DocumentFrequency("parking"))
	assert.Equal(t, map[string]int{"a": 2}, idx.Postings("parking"))
	assert.Equal(t, 3, idx.Length("a"))
	assert.Nil(t, idx.Postings("absent"))
	assert.Zero(t, idx.DocumentFrequency("absent"))
}

func TestReAddReplacesPostings(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Add(core.Document{ID: "a", Text: "old words here"}))
	require.NoError(t, idx.Add(core.Document{ID: "b", Text: "more words"}))
	require.NoError(t, idx.Add(core.Document{ID: "a", Text: "fresh text"}))

	assert.Equal(t, 2, idx.DocCount())
	assert.Nil(t, idx.Postings("old"))
	assert.Equal(t, map[string]int{"a": 1}, idx.Postings("fresh"))
	// insertion order survives an update
	assert.Equal(t, 0, idx.Order("a"))
	assert.Equal(t, 1, idx.Order("b"))
	// df for shared terms adjusts when one holder loses the term
	assert.Equal(t, 1, idx.DocumentFrequency("words"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	idx, err := Build([]core.Document{
		{ID: "a", Title: "Parking", Tags: []string{"policy"}, Text: "no limit per student"},
		{ID: "b", Title: "Dress", Text: "formal attire recommended"},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, idx.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, idx.DocCount(), loaded.DocCount())
	assert.Equal(t, idx.Postings("limit"), loaded.Postings("limit"))
	assert.Equal(t, idx.DocumentFrequency("formal"), loaded.DocumentFrequency("formal"))
	assert.Equal(t, idx.Length("a"), loaded.Length("a"))

	doc, ok := loaded.Document("a")
	require.True(t, ok)
	assert.Equal(t, "Parking", doc.Title)
	assert.Equal(t, []string{"policy"}, doc.Tags)
}
