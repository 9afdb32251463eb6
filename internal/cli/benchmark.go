// internal/cli/benchmark.go
package golmbench

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/golmbench/internal/benchmark"
	"github.com/mwiater/golmbench/internal/tui"
	"github.com/spf13/cobra"
)

var (
	benchHost        string
	benchModel       string
	benchPrompt      string
	benchRuns        int
	benchMaxTokens   int
	benchTemperature float64
	benchOutput      string
	benchSlugOutput  bool
	benchPlanFile    string
	benchCold        bool
)

var (
	summaryKeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	summaryValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	summaryRunStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// benchmarkCmd implements 'benchmark': N strictly sequential timed
// generations against one host, written to a CSV results file. Any failed
// run aborts the whole benchmark and nothing is written.
var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Run a timed benchmark and write a results file",
	Long:  `The 'benchmark' command loads a model once, runs the configured number of sequential generations, prints per-run results with an aggregate summary, and writes the runs to a CSV results file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		opts := benchmark.Options{
			HostName:    benchHost,
			Model:       benchModel,
			Prompt:      cfg.Benchmark.Prompt,
			Runs:        cfg.Benchmark.Runs,
			MaxTokens:   cfg.Benchmark.MaxTokens,
			Temperature: cfg.Benchmark.Temperature,
			Output:      cfg.Benchmark.Output,
			SlugOutput:  benchSlugOutput,
			Synthetic:   cfg.Synthetic,
			Strict:      cfg.Strict,
			Cold:        benchCold,
		}

		if benchPlanFile != "" {
			plan, err := benchmark.LoadPlan(benchPlanFile)
			if err != nil {
				return err
			}
			plan.Apply(&opts)
		}

		// Explicit flags beat both the plan and the config file.
		if cmd.Flags().Changed("host") {
			opts.HostName = benchHost
		}
		if cmd.Flags().Changed("model") {
			opts.Model = benchModel
		}
		if cmd.Flags().Changed("prompt") {
			opts.Prompt = benchPrompt
		}
		if cmd.Flags().Changed("runs") {
			opts.Runs = benchRuns
		}
		if cmd.Flags().Changed("max-tokens") {
			opts.MaxTokens = benchMaxTokens
		}
		if cmd.Flags().Changed("temperature") {
			opts.Temperature = benchTemperature
		}
		if cmd.Flags().Changed("output") {
			opts.Output = benchOutput
		}

		ctx := context.Background()
		var result *benchmark.Result
		var err error
		if cfg.Plain || !isTerminal(os.Stdout) {
			result, err = benchmark.Run(ctx, cfg, opts)
		} else {
			result, err = tui.Run(ctx, cfg, opts)
		}
		if err != nil {
			return err
		}

		printSummary(cmd.OutOrStdout(), result)
		return nil
	},
}

// printSummary writes the per-run lines and the aggregate block for a
// completed benchmark.
func printSummary(out io.Writer, result *benchmark.Result) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s %s (mode %s)\n", successLine("Benchmark complete:"), result.Model, result.Mode)

	for _, record := range result.Records {
		fmt.Fprintf(out, "  %s  %s\n",
			summaryRunStyle.Render(fmt.Sprintf("run %d", record.Run)),
			summaryValueStyle.Render(fmt.Sprintf("%.3fs  %d tok  %.2f tok/s",
				record.LatencySeconds, record.EstimatedTokens, record.TokensPerSecond)))
	}

	fmt.Fprintln(out)
	rows := []struct{ key, value string }{
		{"runs", fmt.Sprintf("%d @ max_tokens %d, temperature %g", result.Runs, result.MaxTokens, result.Temperature)},
		{"load", fmt.Sprintf("%.2fs", result.LoadSeconds)},
		{"latency", fmt.Sprintf("mean %.3fs  min %.3fs  max %.3fs",
			result.Summary.LatencyMean, result.Summary.LatencyMin, result.Summary.LatencyMax)},
		{"tokens/sec", fmt.Sprintf("avg %.2f", result.Summary.TokensPerSecAvg)},
		{"results", result.OutputPath},
	}
	for _, row := range rows {
		fmt.Fprintf(out, "  %s %s\n", summaryKeyStyle.Render(row.key), row.value)
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w *os.File) bool {
	fi, err := w.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)

	benchmarkCmd.Flags().StringVar(&benchHost, "host", "", "host name from the config (default: first host)")
	benchmarkCmd.Flags().StringVar(&benchModel, "model", "", "model to benchmark (default: the host's configured model)")
	benchmarkCmd.Flags().StringVar(&benchPrompt, "prompt", "", "prompt sent on every run")
	benchmarkCmd.Flags().IntVar(&benchRuns, "runs", 0, "number of benchmark runs")
	benchmarkCmd.Flags().IntVar(&benchMaxTokens, "max-tokens", 0, "maximum tokens per generation")
	benchmarkCmd.Flags().Float64Var(&benchTemperature, "temperature", 0, "sampling temperature")
	benchmarkCmd.Flags().StringVar(&benchOutput, "output", "", "results file path")
	benchmarkCmd.Flags().BoolVar(&benchSlugOutput, "slug-output", false, "name the results file after the model slug")
	benchmarkCmd.Flags().StringVar(&benchPlanFile, "plan", "", "YAML plan file with benchmark settings")
	benchmarkCmd.Flags().BoolVar(&benchCold, "cold", false, "unload host models first so the load is measured cold")
}
