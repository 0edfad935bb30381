package retrieval_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/inboxpilot/internal/retrieval"
	"github.com/nhle/inboxpilot/tests/testutil"
)

func TestSearchRanksByCosineSimilarity(t *testing.T) {
	st := testutil.NewTestStore(t)
	embedder := &testutil.FakeEmbedder{
		Vectors: map[string][]float32{
			"close":     {1, 0.1, 0},
			"closer":    {1, 0, 0},
			"far":       {0, 1, 0},
			"the query": {1, 0, 0},
		},
	}
	idx := retrieval.NewIndex(embedder, st, nil)
	ctx := context.Background()

	require.NoError(t, idx.AddPair(ctx, "far", "reply far"))
	require.NoError(t, idx.AddPair(ctx, "close", "reply close"))
	require.NoError(t, idx.AddPair(ctx, "closer", "reply closer"))

	results, err := idx.Search(ctx, "the query", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "reply closer", results[0].ReplyBody)
	assert.Equal(t, "reply close", results[1].ReplyBody)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
}

func TestSearchEmptyCorpus(t *testing.T) {
	st := testutil.NewTestStore(t)
	idx := retrieval.NewIndex(&testutil.FakeEmbedder{}, st, nil)

	results, err := idx.Search(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchReturnsFewerThanKWhenCorpusIsSmall(t *testing.T) {
	st := testutil.NewTestStore(t)
	idx := retrieval.NewIndex(&testutil.FakeEmbedder{}, st, nil)
	ctx := context.Background()

	require.NoError(t, idx.AddPair(ctx, "only one", "reply"))

	results, err := idx.Search(ctx, "query", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchEmbeddingFailureIsRetrievalError(t *testing.T) {
	st := testutil.NewTestStore(t)
	embedder := &testutil.FakeEmbedder{Err: errors.New("service down")}
	idx := retrieval.NewIndex(embedder, st, nil)

	_, err := idx.Search(context.Background(), "query", 3)
	require.Error(t, err)
	assert.True(t, retrieval.IsRetrievalError(err))
}

func TestSearchStoreFailureIsRetrievalError(t *testing.T) {
	st := testutil.NewTestStore(t)
	idx := retrieval.NewIndex(&testutil.FakeEmbedder{}, st, nil)
	require.NoError(t, st.Close())

	_, err := idx.Search(context.Background(), "query", 3)
	require.Error(t, err)
	assert.True(t, retrieval.IsRetrievalError(err))
}

func TestAddPairEmbeddingFailureIsRetrievalError(t *testing.T) {
	st := testutil.NewTestStore(t)
	embedder := &testutil.FakeEmbedder{Err: errors.New("service down")}
	idx := retrieval.NewIndex(embedder, st, nil)

	err := idx.AddPair(context.Background(), "msg", "reply")
	require.Error(t, err)
	assert.True(t, retrieval.IsRetrievalError(err))

	n, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCountGrowsWithPairs(t *testing.T) {
	st := testutil.NewTestStore(t)
	idx := retrieval.NewIndex(&testutil.FakeEmbedder{}, st, nil)
	ctx := context.Background()

	require.NoError(t, idx.AddPair(ctx, "a", "ra"))
	require.NoError(t, idx.AddPair(ctx, "b", "rb"))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
