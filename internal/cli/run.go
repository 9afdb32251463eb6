// internal/cli/run.go
package golmbench

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/k0kubun/pp"
	"github.com/mwiater/golmbench/internal/appconfig"
	"github.com/mwiater/golmbench/internal/executor"
	"github.com/mwiater/golmbench/internal/providerfactory"
	"github.com/mwiater/golmbench/internal/util"
	"github.com/spf13/cobra"
)

var successLine = color.New(color.FgGreen).SprintFunc()
var accentLine = color.New(color.FgCyan).SprintFunc()

var (
	runHost        string
	runModel       string
	runPrompt      string
	runMaxTokens   int
	runTemperature float64
)

// runCmd implements 'run': one timed model load plus one timed generation
// against the configured host. It prints the measurements and writes nothing.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Time a single generation against a host",
	Long:  `The 'run' command loads a model on the selected host, sends one prompt, and prints load time, generation latency, and token throughput. No results file is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		host, err := cfg.HostByName(runHost)
		if err != nil {
			return err
		}
		if strings.TrimSpace(host.URL) == "" {
			return fmt.Errorf("no host configured; add one to %s", appconfig.DefaultConfigPath)
		}

		provider, err := providerfactory.NewGenerateProvider(cfg, host)
		if err != nil {
			return err
		}
		defer provider.Close()

		exec := executor.New(provider, host)
		model, err := exec.ResolveModel(runModel)
		if err != nil {
			return err
		}

		prompt := runPrompt
		if prompt == "" {
			prompt = cfg.Benchmark.Prompt
		}
		maxTokens := cfg.Benchmark.MaxTokens
		if cmd.Flags().Changed("max-tokens") {
			maxTokens = runMaxTokens
		}
		temperature := cfg.Benchmark.Temperature
		if cmd.Flags().Changed("temperature") {
			temperature = runTemperature
		}

		ctx := context.Background()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "%s %s on %s\n", accentLine("Loading"), model, host.Name)
		loadSeconds, err := exec.LoadModel(ctx, model)
		if err != nil {
			return err
		}

		record, err := exec.Execute(ctx, executor.ExecuteRequest{
			Model:       model,
			Prompt:      prompt,
			MaxTokens:   maxTokens,
			Temperature: temperature,
		})
		if err != nil {
			return err
		}

		if DebugEnabled() {
			pp.Println(record)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, util.WrapToWidth(record.Response, 80))
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  model        %s\n", record.Model)
		fmt.Fprintf(out, "  load         %.3fs\n", loadSeconds)
		fmt.Fprintf(out, "  latency      %.3fs\n", record.LatencySeconds)
		fmt.Fprintf(out, "  tokens       %d (prompt %d)\n", record.EstimatedTokens, record.PromptTokens)
		fmt.Fprintf(out, "  tokens/sec   %.2f\n", record.TokensPerSecond)
		fmt.Fprintln(out, successLine("Run complete."))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runHost, "host", "", "host name from the config (default: first host)")
	runCmd.Flags().StringVar(&runModel, "model", "", "model to run (default: the host's configured model)")
	runCmd.Flags().StringVar(&runPrompt, "prompt", "", "prompt to send (default: the configured benchmark prompt)")
	runCmd.Flags().IntVar(&runMaxTokens, "max-tokens", 0, "maximum tokens to generate")
	runCmd.Flags().Float64Var(&runTemperature, "temperature", 0, "sampling temperature")
}
