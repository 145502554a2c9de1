// internal/providers/provider.go

// Package providers defines the interfaces for talking to chat-completion servers.
// It provides a common abstraction layer for sending a conversation and receiving
// the completion, regardless of the underlying transport (go-openai SDK or raw HTTP).
package providers

import (
	"context"
	"time"

	"github.com/mwiater/shotclass/internal/appconfig"
)

// Chat roles understood by OpenAI-compatible servers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single turn in a chat conversation.
// It contains the role of the sender (system, user or assistant) and the turn content.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamMetadata contains metadata about a completed request,
// including the wall-clock duration and token usage when the server reports it.
type StreamMetadata struct {
	Model            string
	CreatedAt        time.Time
	Done             bool
	TotalDuration    int64
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// StreamRequest encapsulates all the information needed to request a completion.
// Messages are forwarded verbatim and in order.
type StreamRequest struct {
	Host             appconfig.Host
	Model            string
	Messages         []ChatMessage
	Temperature      *float64
	DisableStreaming bool
}

// StreamCallbacks defines the callback functions that are invoked during a request.
// OnChunk is called for each piece of content received, and OnComplete once the
// completion is finished.
type StreamCallbacks struct {
	OnChunk    func(ChatMessage) error
	OnComplete func(StreamMetadata) error
}

// ChatProvider is the interface that all completion backends implement.
type ChatProvider interface {
	// Stream sends the request and forwards the completion to the callbacks.
	Stream(ctx context.Context, req StreamRequest, callbacks StreamCallbacks) error
	// Close cleans up any resources used by the provider.
	Close() error
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
