package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseChatServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			_, _ = w.Write([]byte(line + "\n"))
		}
	}))
}

func TestStreamChatCollectsDeltas(t *testing.T) {
	server := sseChatServer(t, []string{
		`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
		``,
		`data: {"choices":[{"delta":{"content":"lo"}}]}`,
		`data: {"choices":[{"delta":{}}]}`,
		`: keepalive comment`,
		`data: [DONE]`,
	})
	defer server.Close()

	client := NewClient()
	cfg := ChatConfig{BaseURL: server.URL, APIKey: "test-key", Model: "m"}

	var tokens []string
	full, err := client.StreamChat(context.Background(), cfg, []ChatMessage{{Role: "user", Content: "hi"}}, func(tok string) error {
		tokens = append(tokens, tok)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", full)
	assert.Equal(t, []string{"Hel", "lo"}, tokens)
}

func TestStreamChatStopsOnCallbackError(t *testing.T) {
	server := sseChatServer(t, []string{
		`data: {"choices":[{"delta":{"content":"a"}}]}`,
		`data: {"choices":[{"delta":{"content":"b"}}]}`,
		`data: [DONE]`,
	})
	defer server.Close()

	client := NewClient()
	cfg := ChatConfig{BaseURL: server.URL, APIKey: "test-key", Model: "m"}

	sentinel := errors.New("consumer gone")
	_, err := client.StreamChat(context.Background(), cfg, []ChatMessage{{Role: "user", Content: "hi"}}, func(string) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestStreamChatSurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient()
	cfg := ChatConfig{BaseURL: server.URL, APIKey: "test-key", Model: "m"}

	_, err := client.StreamChat(context.Background(), cfg, []ChatMessage{{Role: "user", Content: "hi"}}, func(string) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer server.Close()

	client := NewClient()
	cfg := EmbeddingConfig{BaseURL: server.URL, APIKey: "test-key", Model: "m"}

	vec, err := client.Embed(context.Background(), cfg, "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEmbedRejectsEmptyInput(t *testing.T) {
	client := NewClient()
	_, err := client.Embed(context.Background(), EmbeddingConfig{BaseURL: "http://unused", Model: "m"}, "   ")
	assert.Error(t, err)
}
