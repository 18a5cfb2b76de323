package chatmesh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chatmesh/capability"
	"github.com/hupe1980/chatmesh/core"
)

func sampleDocs() []core.Document {
	return []core.Document{
		{
			ID:    "parking",
			Title: "Parking Policy",
			Tags:  []string{"policy", "parking"},
			Text:  "Parking passes are available for graduation day. There is no limit per student, so extended families can buy as many passes as they need.",
		},
		{
			ID:    "products",
			Title: "Store Products",
			Tags:  []string{"store"},
			Text:  "The cap and gown set includes the graduation cap, gown and tassel. One set per student is required for the ceremony.",
		},
		{
			ID:    "dress",
			Title: "Dress Code",
			Tags:  []string{"policy"},
			Text:  "Formal attire is recommended but not required for guests. Muscle shirts are not allowed in the venue.",
		},
	}
}

func TestIndexDocumentsAndRetrieve(t *testing.T) {
	mesh := New()
	require.NoError(t, mesh.IndexDocuments(sampleDocs()))

	results := mesh.Retrieve("tassel", 3, nil)
	require.NotEmpty(t, results)
	assert.Equal(t, "products", results[0].DocumentID)
}

func TestIndexDocumentsEmptyCorpus(t *testing.T) {
	mesh := New()
	err := mesh.IndexDocuments(nil)

	var buildErr *core.IndexBuildError
	require.ErrorAs(t, err, &buildErr)
}

func TestIndexDocumentsRebuildReplacesOldGeneration(t *testing.T) {
	mesh := New()
	require.NoError(t, mesh.IndexDocuments(sampleDocs()))
	require.NotEmpty(t, mesh.Retrieve("tassel", 3, nil))

	require.NoError(t, mesh.IndexDocuments([]core.Document{
		{ID: "only", Title: "Only", Text: "completely different content now"},
	}))
	assert.Empty(t, mesh.Retrieve("tassel", 3, nil))
	assert.NotEmpty(t, mesh.Retrieve("different content", 3, nil))
}

func TestIndexDocumentsFailedRebuildKeepsCurrent(t *testing.T) {
	mesh := New()
	require.NoError(t, mesh.IndexDocuments(sampleDocs()))

	require.Error(t, mesh.IndexDocuments([]core.Document{{ID: "bad", Text: "   "}}))
	assert.NotEmpty(t, mesh.Retrieve("tassel", 3, nil), "failed rebuild must not clear the live index")
}

func TestParkingPassScenarioWithDefaults(t *testing.T) {
	mesh := New()
	require.NoError(t, mesh.IndexDocuments(sampleDocs()))

	res, err := mesh.HandleTurn(context.Background(), "Can I buy more than one parking pass?", "", nil)
	require.NoError(t, err)

	assert.Contains(t, res.Reply, "no limit per student")
	assert.NotContains(t, res.Reply, "I don't have information about that")
}

func TestHandleTurnEndToEnd(t *testing.T) {
	gen := capability.NewMockGenerator("mock")
	mesh := New(func(o *Options) {
		o.Generator = capability.NewGeneratorChain([]core.Generator{gen})
	})
	require.NoError(t, mesh.IndexDocuments(sampleDocs()))

	res, err := mesh.HandleTurn(context.Background(), "Can I buy more than one parking pass?", "", &core.User{ID: "alice"})
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "no limit per student")
	assert.Equal(t, core.IntentChat, res.Meta.Intent)

	// same session, off-corpus question falls through to the generator chain
	res, err = mesh.HandleTurn(context.Background(), "What is the capital of Nepal?", res.SessionID, &core.User{ID: "alice"})
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "Mock response to:")
}

func TestHandleTurnWithoutIndex(t *testing.T) {
	mesh := New()

	res, err := mesh.HandleTurn(context.Background(), "anything at all", "", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Reply)
}
