package ai

import "context"

// EmbeddingService binds a client to fixed embedding API settings.
type EmbeddingService struct {
	client *Client
	cfg    EmbeddingConfig
}

func NewEmbeddingService(client *Client, cfg EmbeddingConfig) *EmbeddingService {
	return &EmbeddingService{client: client, cfg: cfg}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.client.Embed(ctx, s.cfg, text)
}

// GenerationService binds a client to chat API settings. A non-empty modelID
// overrides the configured model for that call.
type GenerationService struct {
	client *Client
	cfg    ChatConfig
}

func NewGenerationService(client *Client, cfg ChatConfig) *GenerationService {
	return &GenerationService{client: client, cfg: cfg}
}

func (s *GenerationService) Stream(ctx context.Context, modelID string, messages []ChatMessage, onToken func(token string) error) (string, error) {
	cfg := s.cfg
	if modelID != "" {
		cfg.Model = modelID
	}
	return s.client.StreamChat(ctx, cfg, messages, onToken)
}
