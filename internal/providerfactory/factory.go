// internal/providerfactory/factory.go
package providerfactory

import (
	"fmt"
	"strings"

	"github.com/mwiater/shotclass/internal/appconfig"
	"github.com/mwiater/shotclass/internal/logging"
	"github.com/mwiater/shotclass/internal/metrics"
	"github.com/mwiater/shotclass/internal/providers"
	"github.com/mwiater/shotclass/internal/providers/llamacpp"
	"github.com/mwiater/shotclass/internal/providers/openai"
)

const (
	hostTypeOpenAI   = "openai"
	hostTypeLlamaCpp = "llama.cpp"
)

// NewChatProvider selects and configures the chat provider for cfg.Host and
// wraps it with metrics collection when enabled.
func NewChatProvider(cfg *appconfig.Config) (providers.ChatProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to provider factory")
	}

	var provider providers.ChatProvider
	switch normalizeType(cfg.Host.Type) {
	case hostTypeOpenAI:
		provider = openai.New(cfg)
	case hostTypeLlamaCpp:
		provider = llamacpp.New(cfg)
	default:
		return nil, fmt.Errorf("unsupported host type %q (expected %q or %q)", cfg.Host.Type, hostTypeOpenAI, hostTypeLlamaCpp)
	}
	logging.LogDebug("provider ready: type=%s host=%s", normalizeType(cfg.Host.Type), cfg.Host.Identifier())

	if cfg.Metrics {
		provider = metrics.NewProvider(provider, metrics.NewAggregator(cfg.MetricsFile))
	}

	return provider, nil
}

func normalizeType(hostType string) string {
	normalized := strings.ToLower(strings.TrimSpace(hostType))
	switch normalized {
	case "", "openai", "lmstudio", "lm-studio":
		return hostTypeOpenAI
	case "llama.cpp", "llamacpp":
		return hostTypeLlamaCpp
	default:
		return normalized
	}
}
