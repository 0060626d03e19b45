package index

import (
	"context"
	"sync"

	"github.com/laguagu/rag-chatbot/internal/model"
)

// MemoryIndex is a brute-force in-process index. Chunks are kept in insertion
// order; queries score every stored chunk.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	chunks    []model.Chunk
}

func NewMemoryIndex(dimension int) *MemoryIndex {
	return &MemoryIndex{dimension: dimension}
}

func (m *MemoryIndex) Dimension() int { return m.dimension }

func (m *MemoryIndex) Insert(_ context.Context, chunks []model.Chunk) error {
	if err := validateChunks(chunks, m.dimension); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *MemoryIndex) Query(_ context.Context, vector []float32, k int, minSimilarity float64, docIDs []string) ([]Result, error) {
	if len(vector) != m.dimension {
		return nil, ErrDimensionMismatch
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	candidates := m.chunks
	if len(docIDs) > 0 {
		allowed := make(map[string]struct{}, len(docIDs))
		for _, id := range docIDs {
			allowed[id] = struct{}{}
		}
		candidates = make([]model.Chunk, 0, len(m.chunks))
		for i := range m.chunks {
			if _, ok := allowed[m.chunks[i].DocID]; ok {
				candidates = append(candidates, m.chunks[i])
			}
		}
	}

	return scoreChunks(candidates, vector, k, minSimilarity), nil
}

func (m *MemoryIndex) DeleteByDocID(_ context.Context, docID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteWhere(func(c *model.Chunk) bool { return c.DocID == docID }), nil
}

func (m *MemoryIndex) DeleteByFilename(_ context.Context, filename string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteWhere(func(c *model.Chunk) bool { return c.Filename() == filename }), nil
}

func (m *MemoryIndex) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.chunks)), nil
}

func (m *MemoryIndex) deleteWhere(match func(*model.Chunk) bool) int64 {
	kept := m.chunks[:0]
	var removed int64
	for i := range m.chunks {
		if match(&m.chunks[i]) {
			removed++
			continue
		}
		kept = append(kept, m.chunks[i])
	}
	m.chunks = kept
	return removed
}
