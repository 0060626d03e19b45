package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/laguagu/rag-chatbot/internal/model"
)

type TranscriptRepository struct {
	db *gorm.DB
}

func NewTranscriptRepository(db *gorm.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

func (r *TranscriptRepository) Create(transcript *model.Transcript) error {
	if err := r.db.Create(transcript).Error; err != nil {
		return fmt.Errorf("create transcript failed: %w", err)
	}
	return nil
}
