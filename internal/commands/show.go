package shotclass

import "github.com/spf13/cobra"

// showCmd groups the inspection subcommands.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configuration details",
}

func init() {
	rootCmd.AddCommand(showCmd)
}
