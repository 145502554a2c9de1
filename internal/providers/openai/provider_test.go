package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/shotclass/internal/appconfig"
	"github.com/mwiater/shotclass/internal/providers"
)

func newTestProvider(url string) (*Provider, appconfig.Host) {
	cfg := &appconfig.Config{Host: appconfig.Host{Name: "test", URL: url + "/v1", APIKey: "fake-key"}, TimeoutSeconds: 5}
	cfg.ApplyDefaults()
	return New(cfg), cfg.Host
}

func TestProviderComplete(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "qwen3-4b",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "  category1,  category2 "}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 20, "completion_tokens": 5, "total_tokens": 25}
		}`)
	}))
	defer server.Close()

	provider, host := newTestProvider(server.URL)
	defer provider.Close()

	var content string
	var meta providers.StreamMetadata
	err := provider.Stream(context.Background(), providers.StreamRequest{
		Host:  host,
		Model: "local-model",
		Messages: []providers.ChatMessage{
			{Role: providers.RoleSystem, Content: "System instructions"},
			{Role: providers.RoleUser, Content: "User message"},
		},
		Temperature:      providers.Float(0.1),
		DisableStreaming: true,
	}, providers.StreamCallbacks{
		OnChunk: func(msg providers.ChatMessage) error {
			content += msg.Content
			return nil
		},
		OnComplete: func(m providers.StreamMetadata) error {
			meta = m
			return nil
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "  category1,  category2 ", content)
	assert.Equal(t, "qwen3-4b", meta.Model)
	assert.Equal(t, 25, meta.TotalTokens)
	assert.Equal(t, "Bearer fake-key", auth)

	assert.Equal(t, "local-model", captured["model"])
	assert.InDelta(t, 0.1, captured["temperature"], 1e-6)
	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, map[string]any{"role": "system", "content": "System instructions"}, messages[0])
	assert.Equal(t, map[string]any{"role": "user", "content": "User message"}, messages[1])
}

func TestProviderStream(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"id\":\"1\",\"model\":\"qwen3-4b\",\"choices\":[{\"index\":0,\"delta\":{\"role\":\"assistant\",\"content\":\"spam,\"}}]}\n\n")
		_, _ = io.WriteString(w, "data: {\"id\":\"1\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\" ads\"}}]}\n\n")
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	provider, host := newTestProvider(server.URL)

	var content string
	var meta providers.StreamMetadata
	err := provider.Stream(context.Background(), providers.StreamRequest{
		Host:     host,
		Model:    "local-model",
		Messages: []providers.ChatMessage{{Role: providers.RoleUser, Content: "win a prize"}},
	}, providers.StreamCallbacks{
		OnChunk: func(msg providers.ChatMessage) error {
			content += msg.Content
			return nil
		},
		OnComplete: func(m providers.StreamMetadata) error {
			meta = m
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "spam, ads", content)
	assert.Equal(t, "qwen3-4b", meta.Model)
	assert.True(t, meta.Done)
}

func TestProviderServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error": {"message": "model crashed", "type": "server_error"}}`)
	}))
	defer server.Close()

	provider, host := newTestProvider(server.URL)
	err := provider.Stream(context.Background(), providers.StreamRequest{
		Host:             host,
		Model:            "local-model",
		Messages:         []providers.ChatMessage{{Role: providers.RoleUser, Content: "hi"}},
		DisableStreaming: true,
	}, providers.StreamCallbacks{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model crashed")
}

func TestProviderNoChoices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id": "x", "choices": []}`)
	}))
	defer server.Close()

	provider, host := newTestProvider(server.URL)
	err := provider.Stream(context.Background(), providers.StreamRequest{
		Host:             host,
		DisableStreaming: true,
	}, providers.StreamCallbacks{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
