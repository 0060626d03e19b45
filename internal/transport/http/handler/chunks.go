package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/laguagu/rag-chatbot/internal/index"
	"github.com/laguagu/rag-chatbot/internal/model"
	"github.com/laguagu/rag-chatbot/internal/transport/http/response"
)

// ChunkHandler exposes the vector index boundary. Chunking and embedding
// happen upstream; this endpoint only accepts already-embedded rows.
type ChunkHandler struct {
	index index.Index
}

func NewChunkHandler(idx index.Index) *ChunkHandler {
	return &ChunkHandler{index: idx}
}

type ChunkRowRequest struct {
	DocID     string            `json:"docId" binding:"required"`
	Content   string            `json:"content" binding:"required"`
	Embedding []float32         `json:"embedding" binding:"required"`
	Metadata  map[string]string `json:"metadata"`
}

type InsertChunksRequest struct {
	Chunks []ChunkRowRequest `json:"chunks" binding:"required,min=1"`
}

func (h *ChunkHandler) Insert(c *gin.Context) {
	var req InsertChunksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	chunks := make([]model.Chunk, len(req.Chunks))
	now := time.Now()
	for i, row := range req.Chunks {
		chunk := model.Chunk{
			ID:        uuid.New().String(),
			DocID:     row.DocID,
			Content:   row.Content,
			CreatedAt: now,
		}
		chunk.SetEmbedding(row.Embedding)
		chunk.SetMetadata(row.Metadata)
		chunks[i] = chunk
	}

	if err := h.index.Insert(c.Request.Context(), chunks); err != nil {
		switch {
		case errors.Is(err, index.ErrDimensionMismatch), errors.Is(err, index.ErrEmptyContent):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, "insert chunks failed")
		}
		return
	}

	response.OK(c, gin.H{"inserted": len(chunks)})
}

func (h *ChunkHandler) Delete(c *gin.Context) {
	docID := c.Query("doc_id")
	filename := c.Query("filename")
	if docID == "" && filename == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "doc_id or filename is required")
		return
	}

	var (
		removed int64
		err     error
	)
	if docID != "" {
		removed, err = h.index.DeleteByDocID(c.Request.Context(), docID)
	} else {
		removed, err = h.index.DeleteByFilename(c.Request.Context(), filename)
	}
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, "delete chunks failed")
		return
	}

	response.OK(c, gin.H{"deleted": removed})
}

func (h *ChunkHandler) Count(c *gin.Context) {
	count, err := h.index.Count(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, "count chunks failed")
		return
	}
	response.OK(c, gin.H{"count": count})
}
