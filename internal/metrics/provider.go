// internal/metrics/provider.go
package metrics

import (
	"context"

	"github.com/mwiater/shotclass/internal/logging"
	"github.com/mwiater/shotclass/internal/providers"
)

// Provider is a decorator that wraps a ChatProvider to record metrics.
type Provider struct {
	wrapped    providers.ChatProvider
	aggregator *Aggregator
}

// NewProvider creates a new metrics-enabled provider that wraps an existing ChatProvider.
func NewProvider(wrapped providers.ChatProvider, aggregator *Aggregator) *Provider {
	logging.LogDebug("[METRICS] Wrapping provider with metrics provider")
	return &Provider{wrapped: wrapped, aggregator: aggregator}
}

// Stream intercepts the call to the wrapped provider's Stream method to record performance metrics.
func (p *Provider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	completed := false

	onComplete := func(meta providers.StreamMetadata) error {
		completed = true
		if p.aggregator != nil {
			p.aggregator.Record(meta)
		}
		if callbacks.OnComplete != nil {
			return callbacks.OnComplete(meta)
		}
		return nil
	}

	err := p.wrapped.Stream(ctx, req, providers.StreamCallbacks{
		OnChunk:    callbacks.OnChunk,
		OnComplete: onComplete,
	})
	if err != nil && !completed && p.aggregator != nil {
		p.aggregator.RecordFailure(req.Model)
	}
	return err
}

// Close persists the collected metrics and closes the wrapped provider.
func (p *Provider) Close() error {
	if p.aggregator != nil {
		if err := p.aggregator.Save(); err != nil {
			logging.LogError(err, "[METRICS] could not save metrics")
		}
	}
	return p.wrapped.Close()
}
