package shotclass

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mwiater/shotclass/internal/appconfig"
	"github.com/mwiater/shotclass/internal/experiment"
	"github.com/spf13/cobra"
)

// listExperimentsCmd implements 'list experiments', which prints each
// experiment directory with its message, category and example counts.
var listExperimentsCmd = &cobra.Command{
	Use:   "experiments",
	Short: "List experiment directories and their input sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listExperiments(cmd.OutOrStdout(), GetConfig())
	},
}

func init() {
	listCmd.AddCommand(listExperimentsCmd)
}

func listExperiments(out io.Writer, cfg *appconfig.Config) error {
	dirs, err := experiment.Discover(cfg.ExperimentsDir)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		fmt.Fprintf(out, "No experiments found in %s\n", cfg.ExperimentsDir)
		return nil
	}

	width := len("EXPERIMENT")
	for _, dir := range dirs {
		width = max(width, len(filepath.Base(dir)))
	}
	pad := func(s string) string { return s + strings.Repeat(" ", width-len(s)+2) }

	fmt.Fprintf(out, "%sMESSAGES  CATEGORIES  EXAMPLES\n", pad("EXPERIMENT"))
	for _, dir := range dirs {
		name := filepath.Base(dir)
		input, err := experiment.LoadInput(cfg, dir)
		if err != nil {
			fmt.Fprintf(out, "%sinvalid: %v\n", pad(name), err)
			continue
		}
		fmt.Fprintf(out, "%s%-8d  %-10d  %d\n", pad(name), len(input.Messages), len(input.Categories), len(input.Examples))
	}
	return nil
}
