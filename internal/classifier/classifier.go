// Package classifier turns a chat turn list into predicted category labels
// by asking a chat-completion server and splitting its answer on commas.
package classifier

import (
	"context"
	"strings"

	"github.com/mwiater/shotclass/internal/appconfig"
	"github.com/mwiater/shotclass/internal/logging"
	"github.com/mwiater/shotclass/internal/providers"
)

// FailureLabel is returned, alone, whenever a completion could not be obtained.
const FailureLabel = "Error: Classification failed"

// Temperature keeps responses close to deterministic.
const Temperature = 0.1

// Classifier predicts category labels for a conversation.
type Classifier interface {
	Classify(ctx context.Context, turns []providers.ChatMessage) []string
}

// Client classifies through a ChatProvider bound to a single host.
type Client struct {
	provider providers.ChatProvider
	host     appconfig.Host
	model    string
	marker   string
	stream   bool
}

// New returns a Client sending requests for cfg.Host through provider.
func New(provider providers.ChatProvider, cfg *appconfig.Config) *Client {
	return &Client{
		provider: provider,
		host:     cfg.Host,
		model:    cfg.Host.Model,
		marker:   cfg.ReasoningMarker,
		stream:   cfg.Stream,
	}
}

// Classify sends turns verbatim and returns the parsed labels. Failures are
// logged and reported as []string{FailureLabel}; they never propagate.
func (c *Client) Classify(ctx context.Context, turns []providers.ChatMessage) []string {
	var out strings.Builder
	req := providers.StreamRequest{
		Host:             c.host,
		Model:            c.model,
		Messages:         turns,
		Temperature:      providers.Float(Temperature),
		DisableStreaming: !c.stream,
	}

	err := c.provider.Stream(ctx, req, providers.StreamCallbacks{
		OnChunk: func(chunk providers.ChatMessage) error {
			out.WriteString(chunk.Content)
			return nil
		},
	})
	if err != nil {
		logging.LogError(err, "an error occurred while communicating with the LLM")
		return []string{FailureLabel}
	}

	return ParseLabels(out.String(), c.marker)
}

// ParseLabels trims text, keeps only what follows the last marker when the
// marker is present, then splits on commas and trims every segment. Empty
// segments are kept.
func ParseLabels(text, marker string) []string {
	answer := strings.TrimSpace(text)
	if marker != "" {
		if idx := strings.LastIndex(answer, marker); idx >= 0 {
			answer = answer[idx+len(marker):]
		}
	}

	parts := strings.Split(strings.TrimSpace(answer), ",")
	labels := make([]string, 0, len(parts))
	for _, part := range parts {
		labels = append(labels, strings.TrimSpace(part))
	}
	return labels
}
