package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laguagu/rag-chatbot/internal/ai"
	"github.com/laguagu/rag-chatbot/internal/model"
)

const (
	groundedSystemPrompt = "Answer in English. Prefer the provided sources. When you use information " +
		"from the sources, cite them as [Source X]. If the sources do not cover the request, you may " +
		"answer briefly without citations and clearly note that the sources did not cover it. Do not " +
		"fabricate specifics beyond the sources. Keep answers concise and well-structured."

	ungroundedSystemPrompt = "You are a helpful assistant. Answer in English. Be concise, accurate, " +
		"and helpful. Use short sections or lists when useful."
)

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces the answer token stream. Canceling ctx or returning an
// error from onToken aborts the stream.
type Generator interface {
	Stream(ctx context.Context, modelID string, messages []ai.ChatMessage, onToken func(token string) error) (string, error)
}

// EmbeddingCache is an optional read-through cache for query embeddings.
// Cache failures must never fail retrieval.
type EmbeddingCache interface {
	Get(ctx context.Context, text string) ([]float32, bool, error)
	Set(ctx context.Context, text string, vector []float32) error
}

// TranscriptPublisher hands a completed run off for asynchronous persistence.
type TranscriptPublisher interface {
	Publish(ctx context.Context, transcript model.Transcript) error
}

type PipelineConfig struct {
	DefaultModel  string
	TopK          int
	MinSimilarity float64
}

// PipelineService runs one retrieval-and-generation pipeline per request,
// emitting progress events to the request's stream as it goes. A retrieval
// failure degrades the response to an ungrounded answer; only a generation
// failure is fatal to the request.
type PipelineService struct {
	retriever   *Retriever
	embedder    Embedder
	generator   Generator
	embedCache  EmbeddingCache
	transcripts TranscriptPublisher
	cfg         PipelineConfig
	log         *slog.Logger
}

func NewPipelineService(
	retriever *Retriever,
	embedder Embedder,
	generator Generator,
	embedCache EmbeddingCache,
	transcripts TranscriptPublisher,
	cfg PipelineConfig,
	log *slog.Logger,
) *PipelineService {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.MinSimilarity <= 0 || cfg.MinSimilarity >= 1 {
		cfg.MinSimilarity = 0.3
	}
	if log == nil {
		log = slog.Default()
	}
	return &PipelineService{
		retriever:   retriever,
		embedder:    embedder,
		generator:   generator,
		embedCache:  embedCache,
		transcripts: transcripts,
		cfg:         cfg,
		log:         log,
	}
}

// RunInput is one inbound chat request.
type RunInput struct {
	Messages       []ai.ChatMessage
	ModelID        string
	SelectedDocIDs []string
	MinSimilarity  *float64
}

// Validate rejects malformed requests before any stage runs.
func (in RunInput) Validate() error {
	if len(in.Messages) == 0 {
		return fmt.Errorf("%w: messages must not be empty", ErrInvalidInput)
	}
	return nil
}

// Run executes the pipeline and closes the stream when finished. Retrieval
// runs only when the caller selected documents and the extracted query is
// non-empty; otherwise a single terminal "skipped" step is emitted so the
// consumer never assumes retrieval happened.
func (s *PipelineService) Run(ctx context.Context, input RunInput, stream *Stream) {
	defer stream.Close()

	steps := newStepArena()
	query := extractUserQuery(input.Messages)
	wantRetrieval := len(input.SelectedDocIDs) > 0 && strings.TrimSpace(query) != ""

	messages := input.Messages
	grounded := false
	sourceCount := 0

	if !wantRetrieval {
		detail := "Skipped (no selected docs)"
		if len(input.SelectedDocIDs) > 0 {
			detail = "Skipped (empty query)"
		}
		s.emitStep(ctx, stream, steps.finish("rag", "RAG", detail, 100))
	} else {
		s.emit(ctx, stream, Event{Kind: EventStatus, Phase: PhaseRetrieving})
		grounded, sourceCount, messages = s.retrieve(ctx, query, input, steps, stream)
	}

	system := ungroundedSystemPrompt
	if grounded {
		system = groundedSystemPrompt
	}
	chatMessages := make([]ai.ChatMessage, 0, len(messages)+1)
	chatMessages = append(chatMessages, ai.ChatMessage{Role: "system", Content: system})
	chatMessages = append(chatMessages, messages...)

	modelID := input.ModelID
	if modelID == "" {
		modelID = s.cfg.DefaultModel
	}

	answer, err := s.generator.Stream(ctx, modelID, chatMessages, func(token string) error {
		return stream.Emit(ctx, Event{Kind: EventText, Text: token})
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			s.log.Info("pipeline canceled", "query_len", len(query))
			return
		}
		s.log.Error("generation failed", "error", err)
		s.emit(ctx, stream, Event{
			Kind:  EventError,
			Error: fmt.Errorf("%w: %s", ErrGenerationUnavailable, err).Error(),
		})
		return
	}

	// The only place phase becomes done; fires exactly once per request.
	s.emit(ctx, stream, Event{Kind: EventStatus, Phase: PhaseDone})

	s.publishTranscript(query, answer, modelID, grounded, sourceCount)
}

// retrieve runs embed -> search -> sources, returning the grounding outcome
// and the (possibly rewritten) message list. Failures are absorbed: every
// exit path continues to generation.
func (s *PipelineService) retrieve(ctx context.Context, query string, input RunInput, steps *stepArena, stream *Stream) (bool, int, []ai.ChatMessage) {
	messages := input.Messages

	s.emitStep(ctx, stream, steps.start("embed", "Embedding", 25))

	vector, err := s.embedQuery(ctx, query)
	if err != nil {
		// A failure this early invalidates every downstream stage.
		s.log.Warn("query embedding failed", "error", err)
		s.emitStep(ctx, stream, steps.fail("embed", "Embedding", "Embedding failed"))
		s.emitStep(ctx, stream, steps.fail("search", "Vector search", "Search failed"))
		s.emitStep(ctx, stream, steps.fail("sources", "Sources", "Fetching sources failed"))
		s.emit(ctx, stream, Event{Kind: EventStatus, Phase: PhaseError})
		return false, 0, messages
	}
	s.emitStep(ctx, stream, steps.finish("embed", "Embedding", "", 50))

	s.emitStep(ctx, stream, steps.start("search", "Vector search", 60))

	minSimilarity := s.cfg.MinSimilarity
	if input.MinSimilarity != nil && *input.MinSimilarity >= 0 && *input.MinSimilarity < 1 {
		minSimilarity = *input.MinSimilarity
	}

	results, err := s.retriever.Search(ctx, vector, s.cfg.TopK, minSimilarity, input.SelectedDocIDs)
	if err != nil {
		s.log.Warn("vector search failed", "error", err)
		s.emitStep(ctx, stream, steps.fail("search", "Vector search", "Search failed"))
		s.emitStep(ctx, stream, steps.fail("sources", "Sources", "Fetching sources failed"))
		s.emit(ctx, stream, Event{Kind: EventStatus, Phase: PhaseError})
		return false, 0, messages
	}

	if len(results) == 0 {
		s.emitStep(ctx, stream, steps.finish("search", "Vector search", "No results", 80))
		s.emitStep(ctx, stream, steps.finish("sources", "Sources", "No sources found", 100))
		return false, 0, messages
	}

	s.emitStep(ctx, stream, steps.finish("search", "Vector search", fmt.Sprintf("%d results", len(results)), 80))
	s.emitStep(ctx, stream, steps.start("sources", "Sources", 90))
	for i, r := range results {
		s.emit(ctx, stream, Event{Kind: EventSource, Source: &Source{
			SourceID:   fmt.Sprintf("source-%d", i+1),
			DocID:      r.DocID,
			Title:      r.Title,
			URL:        r.URL,
			Snippet:    r.Snippet,
			Similarity: r.Similarity,
		}})
	}
	s.emitStep(ctx, stream, steps.finish("sources", "Sources", fmt.Sprintf("%d sources", len(results)), 100))

	contextBlock := AssembleContext(results)
	return true, len(results), injectContext(messages, contextBlock, query)
}

func (s *PipelineService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if s.embedCache != nil {
		if vector, hit, err := s.embedCache.Get(ctx, query); err == nil && hit {
			return vector, nil
		}
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEmbeddingUnavailable, err)
	}
	if s.embedCache != nil {
		if err := s.embedCache.Set(ctx, query, vector); err != nil {
			s.log.Debug("embedding cache set failed", "error", err)
		}
	}
	return vector, nil
}

func (s *PipelineService) publishTranscript(query, answer, modelID string, grounded bool, sourceCount int) {
	if s.transcripts == nil {
		return
	}
	publishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	transcript := model.Transcript{
		ID:          uuid.New().String(),
		Query:       query,
		Answer:      answer,
		Model:       modelID,
		Grounded:    grounded,
		SourceCount: sourceCount,
		CreatedAt:   time.Now(),
	}
	if err := s.transcripts.Publish(publishCtx, transcript); err != nil {
		s.log.Warn("transcript publish failed", "error", err)
	}
}

func (s *PipelineService) emit(ctx context.Context, stream *Stream, ev Event) {
	if err := stream.Emit(ctx, ev); err != nil {
		s.log.Debug("event dropped", "kind", ev.Kind, "error", err)
	}
}

func (s *PipelineService) emitStep(ctx context.Context, stream *Stream, step *PipelineStep) {
	if step == nil {
		return
	}
	s.emit(ctx, stream, Event{Kind: EventStep, Step: step})
}

// extractUserQuery returns the content of the last message when it is a user
// message, "" otherwise.
func extractUserQuery(messages []ai.ChatMessage) string {
	if len(messages) == 0 {
		return ""
	}
	last := messages[len(messages)-1]
	if last.Role != "user" {
		return ""
	}
	return last.Content
}

// injectContext replaces the last user message with the context block followed
// by the original query.
func injectContext(messages []ai.ChatMessage, contextBlock, query string) []ai.ChatMessage {
	if contextBlock == "" {
		return messages
	}
	rewritten := make([]ai.ChatMessage, len(messages))
	copy(rewritten, messages)
	for i := len(rewritten) - 1; i >= 0; i-- {
		if rewritten[i].Role == "user" {
			rewritten[i] = ai.ChatMessage{
				Role:    "user",
				Content: contextBlock + "\n\nUser Question: " + query,
			}
			break
		}
	}
	return rewritten
}
