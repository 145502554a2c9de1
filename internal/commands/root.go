// internal/commands/root.go
package shotclass

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/mwiater/shotclass/internal/appconfig"
	"github.com/mwiater/shotclass/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shotclass",
	Short: "shotclass — zero, one and few-shot classification experiments against a local LLM server",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := ensureConfigLoaded(cmd)
		if err != nil {
			return err
		}

		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ApplyDefaults()
		if loaded {
			cfg.ConfigPath = viper.ConfigFileUsed()
		}
		currentConfig = &cfg

		if err := logging.Init(currentConfig.LogFilePath(), currentConfig.Debug); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// An interrupt cancels the running command between classification requests.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer logging.Close()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	flags.Bool("debug", false, "enable debug logging")
	flags.Bool("stream", false, "request streamed completions")
	flags.Bool("metrics", false, "record per-model request metrics")
	flags.String("logFile", "", "path to the log file")
	flags.String("url", "", "base URL of the OpenAI-compatible server (default "+appconfig.DefaultBaseURL+")")
	flags.String("apiKey", "", "API key sent to the server (default "+appconfig.DefaultAPIKey+")")
	flags.String("model", "", "model name sent with each request (default "+appconfig.DefaultModel+")")
	flags.String("experimentsDir", "", "directory holding one sub-directory per experiment (default "+appconfig.DefaultExperimentsDir+")")
	flags.String("promptsDir", "", "directory holding the system prompt template (default "+appconfig.DefaultPromptsDir+")")
	flags.Int("timeout", 0, "request timeout in seconds (0 = default)")

	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("stream", flags.Lookup("stream"))
	_ = viper.BindPFlag("metrics", flags.Lookup("metrics"))
	_ = viper.BindPFlag("logFile", flags.Lookup("logFile"))
	_ = viper.BindPFlag("host.url", flags.Lookup("url"))
	_ = viper.BindPFlag("host.apiKey", flags.Lookup("apiKey"))
	_ = viper.BindPFlag("host.model", flags.Lookup("model"))
	_ = viper.BindPFlag("experimentsDir", flags.Lookup("experimentsDir"))
	_ = viper.BindPFlag("promptsDir", flags.Lookup("promptsDir"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
}

// initConfig points viper at the config file. Environment variables are not consulted.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config file. A missing default config file
// is not an error; the built-in defaults apply instead.
func ensureConfigLoaded(cmd *cobra.Command) (bool, error) {
	explicit := false
	if f := cmd.Flag("config"); f != nil {
		explicit = f.Changed
	}
	if explicit {
		if _, err := os.Stat(cfgFile); err != nil {
			return false, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load config: %w", err)
	}
	return true, nil
}

// GetConfig returns the loaded application configuration for other packages.
// Before the root command has run it returns the defaults.
func GetConfig() *appconfig.Config {
	if currentConfig == nil {
		cfg := appconfig.Config{}
		cfg.ApplyDefaults()
		return &cfg
	}
	return currentConfig
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
