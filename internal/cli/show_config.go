// internal/cli/show_config.go
package golmbench

import (
	"github.com/k0kubun/pp"
	"github.com/mwiater/golmbench/internal/appconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// showConfigCmd implements the 'show config' command, which displays the current configuration settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overriden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		fallback := appconfig.Config{
			Debug:     viper.GetBool("debug"),
			Synthetic: viper.GetBool("synthetic"),
			Strict:    viper.GetBool("strict"),
			Plain:     viper.GetBool("plain"),
			LogFile:   viper.GetString("logFile"),
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), GetConfig(), fallback)

		if DebugEnabled() {
			pp.Println(GetConfig())
		}
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
