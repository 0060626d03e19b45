package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/laguagu/rag-chatbot/internal/model"
)

func chunkWithEmbedding(id, docID, content string, vec []float32) model.Chunk {
	c := model.Chunk{ID: id, DocID: docID, Content: content}
	c.SetEmbedding(vec)
	return c
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{name: "identical vectors", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal vectors", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite vectors clip to zero", a: []float32{1, 0}, b: []float32{-1, 0}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
		{name: "length mismatch", a: []float32{1, 2}, b: []float32{1, 2, 3}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestScoreChunksFloorAndK(t *testing.T) {
	query := []float32{1, 0, 0}
	chunks := []model.Chunk{
		chunkWithEmbedding("c1", "doc-1", "exact match", []float32{1, 0, 0}),
		chunkWithEmbedding("c2", "doc-1", "close", []float32{0.9, 0.1, 0}),
		chunkWithEmbedding("c3", "doc-2", "orthogonal", []float32{0, 1, 0}),
	}

	results := scoreChunks(chunks, query, 5, 0.3)
	assert.Len(t, results, 2, "orthogonal chunk must fall below the floor")
	assert.Equal(t, "c1", results[0].ChunkID)
	assert.Equal(t, "c2", results[1].ChunkID)
	assert.True(t, results[0].Similarity >= results[1].Similarity)

	results = scoreChunks(chunks, query, 1, 0.3)
	assert.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ChunkID)
}

func TestScoreChunksStrictFloor(t *testing.T) {
	// A score exactly at the floor is kept; strictly below is dropped.
	query := []float32{1, 0}
	chunks := []model.Chunk{
		chunkWithEmbedding("at", "d", "at floor", []float32{1, 0}),
		chunkWithEmbedding("below", "d", "below floor", []float32{0, 1}),
	}
	results := scoreChunks(chunks, query, 10, 1.0)
	assert.Len(t, results, 1)
	assert.Equal(t, "at", results[0].ChunkID)
}

func TestScoreChunksTieKeepsInsertionOrder(t *testing.T) {
	query := []float32{1, 0}
	chunks := []model.Chunk{
		chunkWithEmbedding("first", "d", "a", []float32{2, 0}),
		chunkWithEmbedding("second", "d", "b", []float32{3, 0}),
		chunkWithEmbedding("third", "d", "c", []float32{1, 0}),
	}
	results := scoreChunks(chunks, query, 10, 0)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{results[0].ChunkID, results[1].ChunkID, results[2].ChunkID})
}

func TestScoreChunksCarriesMetadata(t *testing.T) {
	c := chunkWithEmbedding("c1", "doc-1", "body", []float32{1, 0})
	c.SetMetadata(map[string]string{"title": "Handbook", "url": "https://example.com/h"})
	results := scoreChunks([]model.Chunk{c}, []float32{1, 0}, 5, 0)
	assert.Len(t, results, 1)
	assert.Equal(t, "Handbook", results[0].Title)
	assert.Equal(t, "https://example.com/h", results[0].URL)
}

func TestValidateChunks(t *testing.T) {
	good := chunkWithEmbedding("c1", "d", "text", []float32{1, 2})
	empty := chunkWithEmbedding("c2", "d", "", []float32{1, 2})
	short := chunkWithEmbedding("c3", "d", "text", []float32{1})

	assert.NoError(t, validateChunks([]model.Chunk{good}, 2))
	assert.ErrorIs(t, validateChunks([]model.Chunk{good, empty}, 2), ErrEmptyContent)
	assert.ErrorIs(t, validateChunks([]model.Chunk{good, short}, 2), ErrDimensionMismatch)
}
