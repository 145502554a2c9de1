package shotclass

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mwiater/shotclass/internal/experiment"
	"github.com/mwiater/shotclass/internal/prompt"
	"github.com/spf13/cobra"
)

var (
	classifyExperiment string
	classifyScenario   string
)

// classifyCmd implements 'classify', which labels one ad hoc message using an
// experiment's categories and worked examples. Nothing is written to disk.
var classifyCmd = &cobra.Command{
	Use:   "classify MESSAGE",
	Short: "Classify a single message with an experiment's categories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scenario, err := prompt.ParseScenario(classifyScenario)
		if err != nil {
			return err
		}

		cfg := GetConfig()
		input, err := experiment.LoadInput(cfg, filepath.Join(cfg.ExperimentsDir, classifyExperiment))
		if err != nil {
			return err
		}

		runner, closeFn, err := openRunner(cfg, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeFn()

		labels := runner.ClassifyMessage(cmd.Context(), input, scenario, strings.Join(args, " "))
		quoted := make([]string, len(labels))
		for i, label := range labels {
			quoted[i] = fmt.Sprintf("%q", label)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Categories: [%s]\n", strings.Join(quoted, ", "))
		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyExperiment, "experiment", "e", "", "experiment directory name under the experiments root")
	classifyCmd.Flags().StringVarP(&classifyScenario, "scenario", "s", prompt.ZeroShot.String(), "prompting scenario: zero_shot, one_shot or few_shot")
	_ = classifyCmd.MarkFlagRequired("experiment")
	rootCmd.AddCommand(classifyCmd)
}
