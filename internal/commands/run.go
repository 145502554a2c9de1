package shotclass

import "github.com/spf13/cobra"

// runCmd groups the batch workflows.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run batch workflows",
}

func init() {
	rootCmd.AddCommand(runCmd)
}
