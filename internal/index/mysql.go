package index

import (
	"context"
	"fmt"

	"github.com/laguagu/rag-chatbot/internal/model"
	"github.com/laguagu/rag-chatbot/internal/repository"
)

// MySQLIndex stores chunks through the gorm repository and scores candidates
// in process. Embeddings live as JSON text, so similarity cannot be pushed
// into SQL; the doc-id filter is, which keeps the candidate set small.
type MySQLIndex struct {
	repo      *repository.ChunkRepository
	dimension int
}

func NewMySQLIndex(repo *repository.ChunkRepository, dimension int) *MySQLIndex {
	return &MySQLIndex{repo: repo, dimension: dimension}
}

func (m *MySQLIndex) Dimension() int { return m.dimension }

func (m *MySQLIndex) Insert(ctx context.Context, chunks []model.Chunk) error {
	if err := validateChunks(chunks, m.dimension); err != nil {
		return err
	}
	return m.repo.CreateBatch(ctx, chunks)
}

func (m *MySQLIndex) Query(ctx context.Context, vector []float32, k int, minSimilarity float64, docIDs []string) ([]Result, error) {
	if len(vector) != m.dimension {
		return nil, ErrDimensionMismatch
	}
	candidates, err := m.repo.ListByDocIDs(ctx, docIDs)
	if err != nil {
		return nil, fmt.Errorf("load candidate chunks failed: %w", err)
	}
	return scoreChunks(candidates, vector, k, minSimilarity), nil
}

func (m *MySQLIndex) DeleteByDocID(ctx context.Context, docID string) (int64, error) {
	return m.repo.DeleteByDocID(ctx, docID)
}

func (m *MySQLIndex) DeleteByFilename(ctx context.Context, filename string) (int64, error) {
	return m.repo.DeleteByFilename(ctx, filename)
}

func (m *MySQLIndex) Count(ctx context.Context) (int64, error) {
	return m.repo.Count(ctx)
}
