// scripts/server_check.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/mwiater/shotclass/internal/appconfig"
	"github.com/mwiater/shotclass/internal/classifier"
	"github.com/mwiater/shotclass/internal/prompt"
	"github.com/mwiater/shotclass/internal/providerfactory"
)

// server_check probes a local OpenAI-compatible server before a long run:
// it lists the served models and sends one zero_shot classification.
func main() {
	configPath := flag.String("config", appconfig.DefaultConfigPath, "Path to config JSON")
	hostURL := flag.String("url", "", "Override server base URL")
	modelName := flag.String("model", "", "Override model name")
	message := flag.String("message", "Congratulations, you won a free cruise!", "Message to classify")
	categories := flag.String("categories", "spam, personal, work", "Comma-separated categories")
	timeout := flag.Duration("timeout", 30*time.Second, "HTTP timeout")
	flag.Parse()

	cfg, err := resolveConfig(*configPath, *hostURL, *modelName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	cfg.TimeoutSeconds = int(timeout.Seconds())

	fmt.Printf("Target host:  %s\n", cfg.Host.URL)
	fmt.Printf("Target model: %s\n\n", cfg.Host.Model)

	ctx, cancel := context.WithTimeout(context.Background(), 2*(*timeout))
	defer cancel()

	if err := checkModels(ctx, cfg, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "models check failed: %v\n", err)
	}
	if err := probeClassification(ctx, cfg, *message, splitCategories(*categories)); err != nil {
		fmt.Fprintf(os.Stderr, "classification probe failed: %v\n", err)
		os.Exit(1)
	}
}

func resolveConfig(configPath, overrideURL, overrideModel string) (*appconfig.Config, error) {
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		if overrideURL == "" {
			return nil, err
		}
		cfg = appconfig.Config{}
		cfg.ApplyDefaults()
	}
	if overrideURL != "" {
		cfg.Host.URL = strings.TrimRight(overrideURL, "/")
	}
	if overrideModel != "" {
		cfg.Host.Model = overrideModel
	}
	return &cfg, nil
}

func checkModels(ctx context.Context, cfg *appconfig.Config, timeout time.Duration) error {
	fmt.Println("== /models ==")
	clientCfg := goopenai.DefaultConfig(cfg.Host.APIKey)
	clientCfg.BaseURL = cfg.Host.URL
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	list, err := goopenai.NewClientWithConfig(clientCfg).ListModels(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Served models: %d\n", len(list.Models))
	for _, m := range list.Models {
		fmt.Printf("  - %s (owned_by=%s)\n", m.ID, m.OwnedBy)
	}
	fmt.Println()
	return nil
}

func probeClassification(ctx context.Context, cfg *appconfig.Config, message string, categories []string) error {
	fmt.Println("== zero_shot classification probe ==")
	provider, err := providerfactory.NewChatProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	system := prompt.SystemPrompt("Classify the message into one or more of: {categories}. Answer with the labels only, comma-separated.", categories)
	turns := prompt.NewBuilder(prompt.ZeroShot, system, nil).Build(message)

	start := time.Now()
	labels := classifier.New(provider, cfg).Classify(ctx, turns)
	fmt.Printf("Message: %q\n", message)
	fmt.Printf("Labels:  %q (%s)\n\n", labels, time.Since(start).Round(time.Millisecond))

	if len(labels) == 1 && labels[0] == classifier.FailureLabel {
		return fmt.Errorf("server did not return a usable completion")
	}
	return nil
}

func splitCategories(raw string) []string {
	var out []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
