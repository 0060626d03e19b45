package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laguagu/rag-chatbot/internal/model"
)

func seededMemoryIndex(t *testing.T) *MemoryIndex {
	t.Helper()
	idx := NewMemoryIndex(3)

	c1 := chunkWithEmbedding("c1", "doc-1", "alpha", []float32{1, 0, 0})
	c2 := chunkWithEmbedding("c2", "doc-2", "beta", []float32{0, 1, 0})
	c3 := chunkWithEmbedding("c3", "doc-1", "gamma", []float32{0.8, 0.2, 0})
	c3.SetMetadata(map[string]string{"filename": "gamma.md"})

	require.NoError(t, idx.Insert(context.Background(), []model.Chunk{c1, c2, c3}))
	return idx
}

func TestMemoryIndexQueryDocFilter(t *testing.T) {
	idx := seededMemoryIndex(t)
	ctx := context.Background()

	all, err := idx.Query(ctx, []float32{1, 0, 0}, 10, 0, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := idx.Query(ctx, []float32{1, 0, 0}, 10, 0, []string{"doc-1"})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
	for _, r := range filtered {
		assert.Equal(t, "doc-1", r.DocID)
	}

	none, err := idx.Query(ctx, []float32{1, 0, 0}, 10, 0, []string{"doc-404"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryIndexQueryDimensionMismatch(t *testing.T) {
	idx := seededMemoryIndex(t)
	_, err := idx.Query(context.Background(), []float32{1, 0}, 10, 0, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestMemoryIndexInsertValidation(t *testing.T) {
	idx := NewMemoryIndex(3)
	bad := chunkWithEmbedding("c1", "doc-1", "text", []float32{1, 0})
	assert.ErrorIs(t, idx.Insert(context.Background(), []model.Chunk{bad}), ErrDimensionMismatch)

	count, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count, "failed insert must not add chunks")
}

func TestMemoryIndexDelete(t *testing.T) {
	idx := seededMemoryIndex(t)
	ctx := context.Background()

	removed, err := idx.DeleteByDocID(ctx, "doc-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	removed, err = idx.DeleteByDocID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestMemoryIndexDeleteByFilename(t *testing.T) {
	idx := seededMemoryIndex(t)
	ctx := context.Background()

	removed, err := idx.DeleteByFilename(ctx, "gamma.md")
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	results, err := idx.Query(ctx, []float32{1, 0, 0}, 10, 0, nil)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "c3", r.ChunkID)
	}
}
