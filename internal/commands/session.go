package shotclass

import (
	"fmt"
	"io"

	"github.com/mwiater/shotclass/internal/appconfig"
	"github.com/mwiater/shotclass/internal/classifier"
	"github.com/mwiater/shotclass/internal/experiment"
	"github.com/mwiater/shotclass/internal/logging"
	"github.com/mwiater/shotclass/internal/providerfactory"
	"github.com/mwiater/shotclass/internal/providers"
)

// newProvider is swapped in tests to avoid real network traffic.
var newProvider = providerfactory.NewChatProvider

// openRunner builds a Runner around the configured provider. The returned
// close function releases the provider and flushes metrics.
func openRunner(cfg *appconfig.Config, out io.Writer) (*experiment.Runner, func(), error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create provider: %w", err)
	}
	runner := experiment.NewRunner(cfg, classifier.New(provider, cfg), out)
	return runner, func() { closeProvider(provider) }, nil
}

func closeProvider(provider providers.ChatProvider) {
	if err := provider.Close(); err != nil {
		logging.LogError(err, "error closing provider")
	}
}
