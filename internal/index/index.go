// Package index provides the vector index behind retrieval: fixed-dimension
// embeddings with cosine-similarity nearest-neighbor queries.
package index

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/laguagu/rag-chatbot/internal/model"
)

var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrEmptyContent      = errors.New("chunk content is empty")
)

// Result is one query hit. Similarity is cosine similarity (1 - cosine
// distance) computed at query time, clipped to [0,1].
type Result struct {
	ChunkID    string
	DocID      string
	Content    string
	Similarity float64
	Title      string
	URL        string
}

// Index answers nearest-neighbor queries over stored chunks.
//
// Query returns at most k results with Similarity >= minSimilarity, sorted
// descending; ties keep insertion order. A nil/empty docIDs slice means
// unrestricted. Zero results is not an error.
type Index interface {
	Query(ctx context.Context, vector []float32, k int, minSimilarity float64, docIDs []string) ([]Result, error)
	Insert(ctx context.Context, chunks []model.Chunk) error
	DeleteByDocID(ctx context.Context, docID string) (int64, error)
	DeleteByFilename(ctx context.Context, filename string) (int64, error)
	Count(ctx context.Context) (int64, error)
	Dimension() int
}

// cosineSimilarity returns the cosine similarity of a and b clipped to [0,1].
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// scoreChunks scores candidates against the query vector, drops everything
// strictly below the floor, and returns the top k in descending similarity.
// Candidates must already be in insertion order so the stable sort preserves
// it for ties.
func scoreChunks(chunks []model.Chunk, vector []float32, k int, minSimilarity float64) []Result {
	results := make([]Result, 0, len(chunks))
	for i := range chunks {
		sim := cosineSimilarity(vector, chunks[i].EmbeddingVector())
		if sim < minSimilarity {
			continue
		}
		meta := chunks[i].MetadataMap()
		results = append(results, Result{
			ChunkID:    chunks[i].ID,
			DocID:      chunks[i].DocID,
			Content:    chunks[i].Content,
			Similarity: sim,
			Title:      meta["title"],
			URL:        meta["url"],
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

func validateChunks(chunks []model.Chunk, dimension int) error {
	for i := range chunks {
		if chunks[i].Content == "" {
			return ErrEmptyContent
		}
		if len(chunks[i].EmbeddingVector()) != dimension {
			return ErrDimensionMismatch
		}
	}
	return nil
}
