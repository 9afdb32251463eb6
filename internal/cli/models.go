// internal/cli/models.go
package golmbench

import (
	"context"

	"github.com/mwiater/golmbench/internal/models"
	"github.com/spf13/cobra"
)

// modelsCmd implements 'models', which enumerates the models available on
// each configured host and indicates which are currently loaded.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models on each configured host",
	Long:  `The 'models' command queries every host in the configuration file and lists its available models, marking the ones currently loaded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return models.List(context.Background(), GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
