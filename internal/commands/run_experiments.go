package shotclass

import (
	"github.com/spf13/cobra"
)

// runExperimentsCmd implements 'run experiments', which classifies every
// message of every experiment under each prompting scenario.
var runExperimentsCmd = &cobra.Command{
	Use:   "experiments [name...]",
	Short: "Run all experiments, or only the named ones",
	Long: `Run classifies each message of each experiment directory once per scenario
(zero_shot, one_shot, few_shot) and writes <experiment>/results/<scenario>_results.json.
An experiment with missing messages or categories is skipped; the rest still run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, closeFn, err := openRunner(GetConfig(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeFn()
		return runner.Run(cmd.Context(), args...)
	},
}

func init() {
	runCmd.AddCommand(runExperimentsCmd)
}
