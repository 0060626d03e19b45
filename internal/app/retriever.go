package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/laguagu/rag-chatbot/internal/index"
)

// SearchResult is one retrieval hit scoped to a single in-flight request.
// Snippet is bounded for event payloads; Content carries the full chunk text
// for context assembly.
type SearchResult struct {
	ID         string  `json:"id"`
	DocID      string  `json:"docId"`
	Content    string  `json:"-"`
	Snippet    string  `json:"snippet"`
	Similarity float64 `json:"similarity"`
	Title      string  `json:"title,omitempty"`
	URL        string  `json:"url,omitempty"`
}

// Retriever answers top-K similarity queries against the vector index with a
// similarity floor and an optional doc-id allow-list. Read-only; retry policy
// belongs to the caller.
type Retriever struct {
	index           index.Index
	snippetMaxRunes int
}

func NewRetriever(idx index.Index, snippetMaxRunes int) *Retriever {
	return &Retriever{index: idx, snippetMaxRunes: snippetMaxRunes}
}

// Search returns up to k results with similarity >= minSimilarity, descending.
// Zero results is success. allowedDocIDs empty or nil means unrestricted.
func (r *Retriever) Search(ctx context.Context, queryVector []float32, k int, minSimilarity float64, allowedDocIDs []string) ([]SearchResult, error) {
	if len(queryVector) != r.index.Dimension() {
		return nil, fmt.Errorf("%w: query vector has dimension %d, index expects %d",
			ErrInvalidInput, len(queryVector), r.index.Dimension())
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", ErrInvalidInput)
	}
	if minSimilarity < 0 || minSimilarity >= 1 {
		return nil, fmt.Errorf("%w: minSimilarity must be in [0,1)", ErrInvalidInput)
	}

	hits, err := r.index.Query(ctx, queryVector, k, minSimilarity, allowedDocIDs)
	if err != nil {
		if errors.Is(err, index.ErrDimensionMismatch) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}

	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{
			ID:         hit.ChunkID,
			DocID:      hit.DocID,
			Content:    hit.Content,
			Snippet:    truncateRunes(hit.Content, r.snippetMaxRunes),
			Similarity: hit.Similarity,
			Title:      hit.Title,
			URL:        hit.URL,
		}
	}
	return results, nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
