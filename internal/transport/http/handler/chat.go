package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laguagu/rag-chatbot/internal/ai"
	"github.com/laguagu/rag-chatbot/internal/app"
	"github.com/laguagu/rag-chatbot/internal/transport/http/response"
)

type ChatHandler struct {
	pipeline *app.PipelineService
}

func NewChatHandler(pipeline *app.PipelineService) *ChatHandler {
	return &ChatHandler{pipeline: pipeline}
}

type ChatMessageRequest struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content"`
}

type ChatStreamRequest struct {
	Messages       []ChatMessageRequest `json:"messages" binding:"required,min=1"`
	ModelID        string               `json:"modelId"`
	SelectedDocIDs []string             `json:"selectedDocIds"`
	MinSimilarity  *float64             `json:"minSimilarity"`
}

// Stream runs the retrieval pipeline for one request and relays its event
// stream as SSE. The pipeline produces into the stream from its own
// goroutine; this handler is the single consumer.
func (h *ChatHandler) Stream(c *gin.Context) {
	var req ChatStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	messages := make([]ai.ChatMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = ai.ChatMessage{Role: m.Role, Content: m.Content}
	}
	input := app.RunInput{
		Messages:       messages,
		ModelID:        req.ModelID,
		SelectedDocIDs: req.SelectedDocIDs,
		MinSimilarity:  req.MinSimilarity,
	}
	if err := input.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "stream not supported")
		return
	}

	ctx := c.Request.Context()
	stream := app.NewStream(64)
	go h.pipeline.Run(ctx, input, stream)

	for ev := range stream.Events() {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		if _, writeErr := c.Writer.Write([]byte("event: " + string(ev.Kind) + "\ndata: " + string(payload) + "\n\n")); writeErr != nil {
			// Client gone; the request context cancels the pipeline run.
			return
		}
		flusher.Flush()
	}
}
