package shotclass

import (
	"github.com/mwiater/shotclass/internal/appconfig"
	"github.com/spf13/cobra"
)

var showConfigVerbose bool

// showConfigCmd implements the 'show config' command, which displays the current configuration settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overriden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := GetConfig()
		appconfig.ShowConfig(cmd.OutOrStdout(), cfg.ConfigPath, cfg, showConfigVerbose)
	},
}

func init() {
	showConfigCmd.Flags().BoolVar(&showConfigVerbose, "verbose", false, "dump the full configuration struct")
	showCmd.AddCommand(showConfigCmd)
}
