// internal/cli/report.go
package golmbench

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mwiater/golmbench/internal/report"
	"github.com/spf13/cobra"
)

var (
	reportInputs []string
	reportOutput string
)

// reportCmd implements 'report': fold one or more results files into a
// standalone HTML dashboard.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build an HTML dashboard from results files",
	Long:  `The 'report' command reads one or more benchmark CSV results files and writes a standalone HTML dashboard comparing them. Any missing or malformed results file aborts the report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs := reportInputs
		if len(inputs) == 0 {
			inputs = []string{GetConfig().Benchmark.Output}
		}

		benchmarks, err := report.Load(inputs)
		if err != nil {
			return err
		}
		html, err := report.Generate(benchmarks)
		if err != nil {
			return err
		}

		if dir := filepath.Dir(reportOutput); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(reportOutput, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write report %s: %w", reportOutput, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successLine("Report written:"), reportOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringArrayVar(&reportInputs, "input", nil, "results file to include (repeatable; default: the configured results file)")
	reportCmd.Flags().StringVar(&reportOutput, "output", "results/benchmark_report.html", "HTML output path")
}
