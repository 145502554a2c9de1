package appconfig

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config, verbose bool) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	if cfg == nil {
		defaults := Config{}
		defaults.ApplyDefaults()
		cfg = &defaults
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Host:            %s (%s)\n", cfg.Host.Identifier(), cfg.Host.Type)
	fmt.Fprintf(out, "  Base URL:        %s\n", cfg.Host.URL)
	fmt.Fprintf(out, "  Model:           %s\n", cfg.Host.Model)
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Stream:          %v\n", cfg.Stream)
	fmt.Fprintf(out, "  Metrics:         %v\n", cfg.Metrics)
	fmt.Fprintf(out, "  Experiments Dir: %s\n", cfg.ExperimentsDir)
	fmt.Fprintf(out, "  System Prompt:   %s\n", cfg.SystemPromptPath())
	fmt.Fprintf(out, "  Reasoning Marker: %s\n", cfg.ReasoningMarker)
	fmt.Fprintf(out, "  Request Timeout: %s\n", cfg.RequestTimeout())
	if cfg.Metrics {
		fmt.Fprintf(out, "  Metrics File:    %s\n", cfg.MetricsFile)
	}

	if verbose {
		fmt.Fprintln(out)
		pp.ColoringEnabled = false
		pp.Fprintln(out, cfg)
	}
}
