// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is the path to the configuration file used in previous versions.
	legacyConfigPath = "config.json"
	// defaultRequestTimeout is the default timeout for HTTP requests.
	defaultRequestTimeout = 600 * time.Second

	// DefaultBaseURL points at a local LM Studio server.
	DefaultBaseURL = "http://localhost:1234/v1"
	// DefaultAPIKey is the placeholder credential accepted by local servers.
	DefaultAPIKey = "lm-studio"
	// DefaultModel is the placeholder model name; local servers ignore it.
	DefaultModel = "local-model"
	// DefaultHostType selects the go-openai backed provider.
	DefaultHostType = "openai"

	DefaultExperimentsDir   = "examples"
	DefaultPromptsDir       = "prompts"
	DefaultSystemPromptFile = "system.txt"
	DefaultMessagesFile     = "messages.json"
	DefaultShotExamplesFile = "shot_examples.json"
	DefaultResultsDirName   = "results"
	DefaultReasoningMarker  = "</think>"
	DefaultMetricsFile      = "reports/model_performance_metrics.json"
)

// Config represents the top-level application configuration.
type Config struct {
	Host             Host   `json:"host" mapstructure:"host"`
	Debug            bool   `json:"debug" mapstructure:"debug"`
	Stream           bool   `json:"stream" mapstructure:"stream"`
	Metrics          bool   `json:"metrics" mapstructure:"metrics"`
	MetricsFile      string `json:"metricsFile,omitempty" mapstructure:"metricsFile"`
	ExperimentsDir   string `json:"experimentsDir,omitempty" mapstructure:"experimentsDir"`
	PromptsDir       string `json:"promptsDir,omitempty" mapstructure:"promptsDir"`
	SystemPromptFile string `json:"systemPromptFile,omitempty" mapstructure:"systemPromptFile"`
	MessagesFile     string `json:"messagesFile,omitempty" mapstructure:"messagesFile"`
	ShotExamplesFile string `json:"shotExamplesFile,omitempty" mapstructure:"shotExamplesFile"`
	ResultsDirName   string `json:"resultsDir,omitempty" mapstructure:"resultsDir"`
	ReasoningMarker  string `json:"reasoningMarker,omitempty" mapstructure:"reasoningMarker"`
	TimeoutSeconds   int    `json:"timeout,omitempty" mapstructure:"timeout"`
	LogFile          string `json:"logFile,omitempty" mapstructure:"logFile"`
	ConfigPath       string `json:"-" mapstructure:"-"`
}

// Host represents the inference server the experiments talk to.
type Host struct {
	Name   string `json:"name" mapstructure:"name"`
	URL    string `json:"url" mapstructure:"url"`
	Type   string `json:"type" mapstructure:"type"`
	APIKey string `json:"apiKey" mapstructure:"apiKey"`
	Model  string `json:"model" mapstructure:"model"`
}

// Identifier returns a string identifier for the host, preferring the name over the URL.
func (h Host) Identifier() string {
	if name := strings.TrimSpace(h.Name); name != "" {
		return name
	}
	if url := strings.TrimSpace(h.URL); url != "" {
		return url
	}
	return "unknown-host"
}

// ApplyDefaults fills every unset field with its default value.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.Host.URL) == "" {
		c.Host.URL = DefaultBaseURL
	}
	c.Host.URL = strings.TrimRight(c.Host.URL, "/")
	if c.Host.APIKey == "" {
		c.Host.APIKey = DefaultAPIKey
	}
	if strings.TrimSpace(c.Host.Model) == "" {
		c.Host.Model = DefaultModel
	}
	if strings.TrimSpace(c.Host.Type) == "" {
		c.Host.Type = DefaultHostType
	}
	if c.ExperimentsDir == "" {
		c.ExperimentsDir = DefaultExperimentsDir
	}
	if c.PromptsDir == "" {
		c.PromptsDir = DefaultPromptsDir
	}
	if c.SystemPromptFile == "" {
		c.SystemPromptFile = DefaultSystemPromptFile
	}
	if c.MessagesFile == "" {
		c.MessagesFile = DefaultMessagesFile
	}
	if c.ShotExamplesFile == "" {
		c.ShotExamplesFile = DefaultShotExamplesFile
	}
	if c.ResultsDirName == "" {
		c.ResultsDirName = DefaultResultsDirName
	}
	if c.ReasoningMarker == "" {
		c.ReasoningMarker = DefaultReasoningMarker
	}
	if c.MetricsFile == "" {
		c.MetricsFile = DefaultMetricsFile
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "shotclass.log"
}

// SystemPromptPath returns the location of the system instruction template.
func (c Config) SystemPromptPath() string {
	return filepath.Join(c.PromptsDir, c.SystemPromptFile)
}

// MessagesPath returns the location of an experiment's messages file.
func (c Config) MessagesPath(experimentDir string) string {
	return filepath.Join(experimentDir, c.MessagesFile)
}

// ShotExamplesPath returns the location of an experiment's worked examples.
func (c Config) ShotExamplesPath(experimentDir string) string {
	return filepath.Join(experimentDir, c.ShotExamplesFile)
}

// ResultsPath returns the directory an experiment writes its results into.
func (c Config) ResultsPath(experimentDir string) string {
	return filepath.Join(experimentDir, c.ResultsDirName)
}

// Load reads the application configuration from the specified path, with fallback to a legacy path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		config.ConfigPath = path
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				config.ConfigPath = legacyConfigPath
				return config, nil
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("no configuration file found (searched %q and %q)", DefaultConfigPath, legacyConfigPath)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("no configuration file found at %q", path)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, err
	}
	config.ApplyDefaults()

	return config, nil
}
