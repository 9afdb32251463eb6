// internal/cli/plot.go
package golmbench

import (
	"fmt"

	"github.com/mwiater/golmbench/internal/plot"
	"github.com/spf13/cobra"
)

var (
	plotInput  string
	plotOutput string
	plotTitle  string
)

// plotCmd implements 'plot': render a benchmark results file as a PNG chart
// of latency and estimated tokens/sec against the run index.
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render a results file as a PNG chart",
	Long:  `The 'plot' command reads a benchmark CSV results file and writes a PNG chart with per-run latency and estimated tokens/sec. A missing or unusable results file is an error and no image is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input := plotInput
		if input == "" {
			input = GetConfig().Benchmark.Output
		}

		written, err := plot.Render(plot.Options{
			InputPath:  input,
			OutputPath: plotOutput,
			Title:      plotTitle,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successLine("Chart written:"), written)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)

	plotCmd.Flags().StringVar(&plotInput, "input", "", "results file to chart (default: the configured results file)")
	plotCmd.Flags().StringVar(&plotOutput, "output", "", "PNG path (default: the input path with a .png extension)")
	plotCmd.Flags().StringVar(&plotTitle, "title", "", fmt.Sprintf("chart title (default %q)", plot.DefaultTitle))
}
