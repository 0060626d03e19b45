package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/laguagu/rag-chatbot/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) CreateBatch(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&chunks).Error; err != nil {
		return fmt.Errorf("create chunks batch failed: %w", err)
	}
	return nil
}

// ListByDocIDs returns all chunks for the given doc ids in insertion order.
// An empty id list returns every chunk.
func (r *ChunkRepository) ListByDocIDs(ctx context.Context, docIDs []string) ([]model.Chunk, error) {
	var chunks []model.Chunk
	query := r.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if len(docIDs) > 0 {
		query = query.Where("doc_id IN ?", docIDs)
	}
	if err := query.Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list chunks failed: %w", err)
	}
	return chunks, nil
}

func (r *ChunkRepository) DeleteByDocID(ctx context.Context, docID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("doc_id = ?", docID).Delete(&model.Chunk{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete chunks by doc id failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *ChunkRepository) DeleteByFilename(ctx context.Context, filename string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("JSON_UNQUOTE(JSON_EXTRACT(metadata, '$.filename')) = ?", filename).
		Delete(&model.Chunk{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete chunks by filename failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *ChunkRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Chunk{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count chunks failed: %w", err)
	}
	return n, nil
}
