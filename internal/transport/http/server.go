package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/laguagu/rag-chatbot/internal/ai"
	appsvc "github.com/laguagu/rag-chatbot/internal/app"
	"github.com/laguagu/rag-chatbot/internal/bootstrap"
	"github.com/laguagu/rag-chatbot/internal/cache"
	"github.com/laguagu/rag-chatbot/internal/index"
	"github.com/laguagu/rag-chatbot/internal/platform/rabbitmq"
	"github.com/laguagu/rag-chatbot/internal/repository"
	"github.com/laguagu/rag-chatbot/internal/transport/http/handler"
	"github.com/laguagu/rag-chatbot/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	cfg := app.Config

	var idx index.Index
	if cfg.Retrieval.IndexDriver == "memory" {
		idx = index.NewMemoryIndex(cfg.Retrieval.EmbeddingDim)
	} else {
		chunkRepo := repository.NewChunkRepository(app.MySQL)
		idx = index.NewMySQLIndex(chunkRepo, cfg.Retrieval.EmbeddingDim)
	}

	aiClient := ai.NewClient()
	embedder := ai.NewEmbeddingService(aiClient, ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
	})
	generator := ai.NewGenerationService(aiClient, ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.ChatModel,
	})
	embedCache := cache.NewEmbeddingCache(
		app.Redis,
		cfg.LLM.EmbeddingModel,
		time.Duration(cfg.Retrieval.EmbedCacheTTLSec)*time.Second,
	)
	transcripts := rabbitmq.NewTranscriptPublisher(app.MQConn, cfg.RabbitMQ.TranscriptPersistQueue)

	retriever := appsvc.NewRetriever(idx, cfg.Retrieval.SnippetMaxRunes)
	pipeline := appsvc.NewPipelineService(
		retriever,
		embedder,
		generator,
		embedCache,
		transcripts,
		appsvc.PipelineConfig{
			DefaultModel:  cfg.LLM.ChatModel,
			TopK:          cfg.Retrieval.TopK,
			MinSimilarity: cfg.Retrieval.MinSimilarity,
		},
		app.Log,
	)

	chatHandler := handler.NewChatHandler(pipeline)
	chunkHandler := handler.NewChunkHandler(idx)

	v1 := router.Group("/api/v1")
	if cfg.Auth.JWTSecret != "" {
		v1.Use(middleware.AuthJWT(cfg.Auth.JWTSecret))
	}
	v1.POST("/chat/stream", chatHandler.Stream)
	v1.POST("/chunks", chunkHandler.Insert)
	v1.DELETE("/chunks", chunkHandler.Delete)
	v1.GET("/chunks/count", chunkHandler.Count)

	return router
}
