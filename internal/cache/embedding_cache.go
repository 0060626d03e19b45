package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// EmbeddingCache caches query embeddings in redis so repeated questions skip
// the embedding API round trip. Keys are hashed over model and text.
type EmbeddingCache struct {
	client *redisv9.Client
	model  string
	ttl    time.Duration
}

func NewEmbeddingCache(client *redisv9.Client, model string, ttl time.Duration) *EmbeddingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &EmbeddingCache{client: client, model: model, ttl: ttl}
}

func (c *EmbeddingCache) Get(ctx context.Context, text string) ([]float32, bool, error) {
	raw, err := c.client.Get(ctx, c.key(text)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get embedding failed: %w", err)
	}

	var vector []float32
	if err := json.Unmarshal([]byte(raw), &vector); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached embedding failed: %w", err)
	}
	return vector, true, nil
}

func (c *EmbeddingCache) Set(ctx context.Context, text string, vector []float32) error {
	payload, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("marshal embedding cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(text), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set embedding failed: %w", err)
	}
	return nil
}

func (c *EmbeddingCache) key(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return "rag:embed:" + hex.EncodeToString(sum[:])
}
