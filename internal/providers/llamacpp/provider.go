// internal/providers/llamacpp/provider.go
// Package llamacpp provides a ChatProvider that speaks llama.cpp's OpenAI-compatible HTTP API directly.
package llamacpp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/shotclass/internal/appconfig"
	"github.com/mwiater/shotclass/internal/logging"
	"github.com/mwiater/shotclass/internal/providers"
)

// Provider implements the providers.ChatProvider interface using raw HTTP requests.
type Provider struct {
	client  *http.Client
	timeout time.Duration
}

// New constructs a Provider configured with the application's request timeout.
func New(cfg *appconfig.Config) *Provider {
	timeout := cfg.RequestTimeout()
	return &Provider{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		timeout: timeout,
	}
}

// Stream issues a chat request and forwards output to the provided callbacks.
func (p *Provider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	messages := req.Messages
	if messages == nil {
		messages = []providers.ChatMessage{}
	}

	payload := map[string]any{
		"model":    req.Model,
		"messages": messages,
		"stream":   !req.DisableStreaming,
	}
	if req.Temperature != nil {
		payload["temperature"] = *req.Temperature
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	logging.LogRequest("SHOTCLASS->LLM", req.Host.Identifier(), req.Model, body)

	streamCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	endpoint := strings.TrimRight(req.Host.URL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(streamCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if key := strings.TrimSpace(req.Host.APIKey); key != "" {
		httpReq.Header.Set("Authorization", "Bearer "+key)
	}
	if !req.DisableStreaming {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	started := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		logging.LogRequest("LLM->SHOTCLASS", req.Host.Identifier(), req.Model, raw)
		return fmt.Errorf("llama.cpp: /chat/completions returned %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	if req.DisableStreaming {
		return p.handleNonStreaming(resp, req, callbacks, started)
	}
	return p.handleStreaming(resp, req, callbacks, started)
}

func (p *Provider) handleNonStreaming(resp *http.Response, req providers.StreamRequest, callbacks providers.StreamCallbacks, started time.Time) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	logging.LogRequest("LLM->SHOTCLASS", req.Host.Identifier(), req.Model, body)

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return err
	}
	if len(parsed.Choices) == 0 {
		return fmt.Errorf("llama.cpp: chat response contained no choices")
	}

	content := parsed.Choices[0].Message.Content
	role := parsed.Choices[0].Message.Role
	if role == "" {
		role = providers.RoleAssistant
	}
	if callbacks.OnChunk != nil {
		if err := callbacks.OnChunk(providers.ChatMessage{Role: role, Content: content}); err != nil {
			return err
		}
	}
	if callbacks.OnComplete != nil {
		modelName := parsed.Model
		if modelName == "" {
			modelName = req.Model
		}
		meta := providers.StreamMetadata{
			Model:            modelName,
			CreatedAt:        time.Now(),
			Done:             true,
			TotalDuration:    int64(time.Since(started)),
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		}
		if err := callbacks.OnComplete(meta); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) handleStreaming(resp *http.Response, req providers.StreamRequest, callbacks providers.StreamCallbacks, started time.Time) error {
	reader := bufio.NewReader(resp.Body)
	var finalModel string
	var usage usageBlock
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				break
			}
			logging.LogRequest("LLM->SHOTCLASS", req.Host.Identifier(), req.Model, data)

			var chunk chatStreamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				return err
			}
			if chunk.Model != "" {
				finalModel = chunk.Model
			}
			if chunk.Usage != nil {
				usage = *chunk.Usage
			}
			if len(chunk.Choices) > 0 {
				choice := chunk.Choices[0]
				content := choice.Delta.Content
				role := choice.Delta.Role
				if content == "" && choice.Message.Content != "" {
					content = choice.Message.Content
					role = choice.Message.Role
				}
				if role == "" {
					role = providers.RoleAssistant
				}
				if callbacks.OnChunk != nil && content != "" {
					if err := callbacks.OnChunk(providers.ChatMessage{Role: role, Content: content}); err != nil {
						return err
					}
				}
			}
		}
		if eof {
			break
		}
	}

	if callbacks.OnComplete != nil {
		modelName := finalModel
		if modelName == "" {
			modelName = req.Model
		}
		meta := providers.StreamMetadata{
			Model:            modelName,
			CreatedAt:        time.Now(),
			Done:             true,
			TotalDuration:    int64(time.Since(started)),
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		}
		if err := callbacks.OnComplete(meta); err != nil {
			return err
		}
	}
	return nil
}

// Close releases any resources held by the provider.
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

type usageBlock struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage usageBlock `json:"usage"`
}

type chatStreamChunk struct {
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"delta"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *usageBlock `json:"usage"`
}
