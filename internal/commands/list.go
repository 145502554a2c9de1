package shotclass

import "github.com/spf13/cobra"

// listCmd groups the listing subcommands.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List experiments and commands",
}

func init() {
	rootCmd.AddCommand(listCmd)
}
