// Package openai provides a ChatProvider backed by the go-openai SDK. It works
// against any server exposing the OpenAI chat-completions schema, including
// LM Studio and llama.cpp's server.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/mwiater/shotclass/internal/appconfig"
	"github.com/mwiater/shotclass/internal/logging"
	"github.com/mwiater/shotclass/internal/providers"
)

// Provider implements providers.ChatProvider with a go-openai client bound to one host.
type Provider struct {
	client *goopenai.Client
	http   *http.Client
}

// New constructs a Provider for cfg.Host, honouring the configured request timeout.
func New(cfg *appconfig.Config) *Provider {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout()}

	clientConfig := goopenai.DefaultConfig(cfg.Host.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.Host.URL, "/")
	clientConfig.HTTPClient = httpClient

	return &Provider{
		client: goopenai.NewClientWithConfig(clientConfig),
		http:   httpClient,
	}
}

// Stream sends the conversation and forwards the completion to callbacks.
func (p *Provider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	chatReq := goopenai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: toOpenAIMessages(req.Messages),
	}
	if req.Temperature != nil {
		chatReq.Temperature = float32(*req.Temperature)
	}
	for i, msg := range req.Messages {
		if msg.Content == "" {
			logging.LogWarn("turn %d (%s) is empty and goes out without a content field; host type llama.cpp sends it verbatim", i, msg.Role)
		}
	}
	logging.LogRequest("SHOTCLASS->LLM", req.Host.Identifier(), req.Model, chatReq)

	if req.DisableStreaming {
		return p.complete(ctx, req, chatReq, callbacks)
	}
	return p.stream(ctx, req, chatReq, callbacks)
}

func (p *Provider) complete(ctx context.Context, req providers.StreamRequest, chatReq goopenai.ChatCompletionRequest, callbacks providers.StreamCallbacks) error {
	started := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return fmt.Errorf("openai: chat completion: %w", err)
	}
	logging.LogRequest("LLM->SHOTCLASS", req.Host.Identifier(), req.Model, resp)

	if len(resp.Choices) == 0 {
		return fmt.Errorf("openai: chat response contained no choices")
	}

	message := resp.Choices[0].Message
	role := message.Role
	if role == "" {
		role = providers.RoleAssistant
	}
	if callbacks.OnChunk != nil {
		if err := callbacks.OnChunk(providers.ChatMessage{Role: role, Content: message.Content}); err != nil {
			return err
		}
	}
	if callbacks.OnComplete != nil {
		return callbacks.OnComplete(metadata(resp.Model, req.Model, started, resp.Usage))
	}
	return nil
}

func (p *Provider) stream(ctx context.Context, req providers.StreamRequest, chatReq goopenai.ChatCompletionRequest, callbacks providers.StreamCallbacks) error {
	started := time.Now()
	stream, err := p.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return fmt.Errorf("openai: chat completion stream: %w", err)
	}
	defer stream.Close()

	var finalModel string
	var usage goopenai.Usage
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("openai: receive stream chunk: %w", err)
		}
		logging.LogRequest("LLM->SHOTCLASS", req.Host.Identifier(), req.Model, chunk)

		if chunk.Model != "" {
			finalModel = chunk.Model
		}
		if chunk.Usage != nil {
			usage = *chunk.Usage
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta
		if delta.Content == "" || callbacks.OnChunk == nil {
			continue
		}
		role := delta.Role
		if role == "" {
			role = providers.RoleAssistant
		}
		if err := callbacks.OnChunk(providers.ChatMessage{Role: role, Content: delta.Content}); err != nil {
			return err
		}
	}

	if callbacks.OnComplete != nil {
		return callbacks.OnComplete(metadata(finalModel, req.Model, started, usage))
	}
	return nil
}

// Close releases idle connections held by the underlying HTTP client.
func (p *Provider) Close() error {
	p.http.CloseIdleConnections()
	return nil
}

func metadata(served, requested string, started time.Time, usage goopenai.Usage) providers.StreamMetadata {
	model := served
	if model == "" {
		model = requested
	}
	return providers.StreamMetadata{
		Model:            model,
		CreatedAt:        time.Now(),
		Done:             true,
		TotalDuration:    int64(time.Since(started)),
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}
}

func toOpenAIMessages(messages []providers.ChatMessage) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, goopenai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return out
}
