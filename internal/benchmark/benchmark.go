// internal/benchmark/benchmark.go
// Package benchmark drives repeated timed generations against one host and
// records the per-run results.
package benchmark

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mwiater/golmbench/internal/appconfig"
	"github.com/mwiater/golmbench/internal/artifact"
	"github.com/mwiater/golmbench/internal/executor"
	"github.com/mwiater/golmbench/internal/logging"
	"github.com/mwiater/golmbench/internal/models"
	"github.com/mwiater/golmbench/internal/providerfactory"
	"github.com/mwiater/golmbench/internal/util"
)

// Mode values recorded in the artifact's mode column.
const (
	ModeReal      = "real"
	ModeSynthetic = "synthetic"
)

var (
	newGenerateProvider = providerfactory.NewGenerateProvider
	unloadHostModels    = models.Unload
	writeArtifactFn     = artifact.Write
)

// RunRecord is one completed benchmark run.
type RunRecord struct {
	Run             int
	LatencySeconds  float64
	EstimatedTokens int
	TokensPerSecond float64
}

// Summary aggregates the per-run latencies and throughput.
type Summary struct {
	LatencyMean     float64
	LatencyMin      float64
	LatencyMax      float64
	TokensPerSecAvg float64
}

// Result is the full outcome of one benchmark invocation.
type Result struct {
	Model       string
	Prompt      string
	Runs        int
	MaxTokens   int
	Temperature float64
	Mode        string
	LoadSeconds float64
	Records     []RunRecord
	Summary     Summary
	OutputPath  string
}

// Options control one benchmark invocation. The CLI resolves configuration
// defaults before handing them over, so every field is concrete here.
type Options struct {
	HostName    string
	Model       string
	Prompt      string
	Runs        int
	MaxTokens   int
	Temperature float64
	Output      string
	SlugOutput  bool
	Synthetic   bool
	Strict      bool
	Cold        bool
	Progress    Progress
}

// Progress receives run-by-run updates while a benchmark executes. The driver
// stays strictly sequential regardless of how progress is displayed.
type Progress interface {
	ModelLoading(model string)
	ModelLoaded(model string, seconds float64)
	RunStarted(run, total int)
	RunCompleted(record RunRecord)
}

// logProgress is the plain-console Progress used when no other view is wired.
type logProgress struct{}

func (logProgress) ModelLoading(model string) {
	log.Printf("Loading model %s...", model)
}

func (logProgress) ModelLoaded(model string, seconds float64) {
	log.Printf("Model %s ready in %.2fs", model, seconds)
}

func (logProgress) RunStarted(run, total int) {
	log.Printf("Running benchmark %d of %d...", run, total)
}

func (logProgress) RunCompleted(record RunRecord) {
	log.Printf("Run %d complete: latency=%.3fs tokens=%d tokens/sec=%.2f",
		record.Run, record.LatencySeconds, record.EstimatedTokens, record.TokensPerSecond)
}

// Run executes the benchmark described by opts and writes the results
// artifact. Invalid options fail before any request reaches a host, and a
// failed run aborts the whole benchmark without writing a partial artifact.
func Run(ctx context.Context, cfg *appconfig.Config, opts Options) (*Result, error) {
	if opts.Runs < 1 {
		return nil, fmt.Errorf("run count must be at least 1, got %d", opts.Runs)
	}
	if opts.MaxTokens < 1 {
		return nil, fmt.Errorf("max tokens must be at least 1, got %d", opts.MaxTokens)
	}
	if strings.TrimSpace(opts.Prompt) == "" {
		return nil, fmt.Errorf("prompt must not be empty")
	}
	if opts.Temperature < 0 {
		return nil, fmt.Errorf("temperature must be non-negative, got %f", opts.Temperature)
	}

	progress := opts.Progress
	if progress == nil {
		progress = logProgress{}
	}

	result := &Result{
		Prompt:      opts.Prompt,
		Runs:        opts.Runs,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	if opts.Synthetic {
		result.Model = syntheticModelName(opts.Model)
		result.Mode = ModeSynthetic
		result.Records = syntheticRecords(opts.Runs, opts.MaxTokens, progress)
	} else {
		host, err := cfg.HostByName(opts.HostName)
		if err != nil {
			return nil, err
		}

		provider, err := newGenerateProvider(cfg, host)
		if err != nil {
			return nil, err
		}
		defer provider.Close()

		exec := executor.New(provider, host)
		model, err := exec.ResolveModel(opts.Model)
		if err != nil {
			return nil, err
		}
		result.Model = model

		if opts.Cold {
			unloadHostModels(ctx, cfg, host)
		}

		progress.ModelLoading(model)
		loadSeconds, err := exec.LoadModel(ctx, model)
		if err != nil {
			if opts.Strict {
				return nil, fmt.Errorf("model load failed: %w", err)
			}
			logging.LogEvent("host %s unreachable (%v); falling back to synthetic results", host.Name, err)
			result.Mode = ModeSynthetic
			result.Records = syntheticRecords(opts.Runs, opts.MaxTokens, progress)
		} else {
			progress.ModelLoaded(model, loadSeconds)
			result.Mode = ModeReal
			result.LoadSeconds = loadSeconds
			result.Records, err = realRecords(ctx, exec, opts, progress)
			if err != nil {
				return nil, err
			}
		}
	}

	result.Summary = calculateAggregates(result.Records)

	output := opts.Output
	if opts.SlugOutput {
		output = fmt.Sprintf("benchmark_%s.csv", util.Slugify(result.Model))
	}
	written, err := writeArtifactFn(output, buildRows(result))
	if err != nil {
		return nil, fmt.Errorf("write results: %w", err)
	}
	result.OutputPath = written
	logging.LogEvent("benchmark results written to %s", written)

	return result, nil
}

// realRecords runs the generations one after another, aborting on the first
// failure so a partial benchmark never reaches the artifact.
func realRecords(ctx context.Context, exec *executor.Executor, opts Options, progress Progress) ([]RunRecord, error) {
	records := make([]RunRecord, 0, opts.Runs)
	for i := 1; i <= opts.Runs; i++ {
		progress.RunStarted(i, opts.Runs)

		runResult, err := exec.Execute(ctx, executor.ExecuteRequest{
			Model:       opts.Model,
			Prompt:      opts.Prompt,
			MaxTokens:   opts.MaxTokens,
			Temperature: opts.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("run %d of %d failed: %w", i, opts.Runs, err)
		}

		tokens := runResult.EstimatedTokens
		if tokens == 0 {
			if opts.Strict {
				return nil, fmt.Errorf("run %d of %d reported no token count", i, opts.Runs)
			}
			tokens = opts.MaxTokens
		}

		record := RunRecord{
			Run:             i,
			LatencySeconds:  runResult.LatencySeconds,
			EstimatedTokens: tokens,
		}
		if runResult.LatencySeconds > 0 {
			record.TokensPerSecond = float64(tokens) / runResult.LatencySeconds
		}

		records = append(records, record)
		progress.RunCompleted(record)
	}
	return records, nil
}

// syntheticRecords fabricates a deterministic run series so the downstream
// pipeline can be exercised without an inference server.
func syntheticRecords(runs, maxTokens int, progress Progress) []RunRecord {
	records := make([]RunRecord, 0, runs)
	for i := 1; i <= runs; i++ {
		progress.RunStarted(i, runs)
		latency := 0.06 + 0.01*float64(i)
		record := RunRecord{
			Run:             i,
			LatencySeconds:  latency,
			EstimatedTokens: maxTokens,
			TokensPerSecond: float64(maxTokens) / latency,
		}
		records = append(records, record)
		progress.RunCompleted(record)
	}
	return records
}

func syntheticModelName(model string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return "synthetic"
}

// calculateAggregates computes the mean, min, and max statistics over the
// completed runs.
func calculateAggregates(records []RunRecord) Summary {
	if len(records) == 0 {
		return Summary{}
	}

	summary := Summary{
		LatencyMin: records[0].LatencySeconds,
		LatencyMax: records[0].LatencySeconds,
	}

	var latencyTotal float64
	var tokensPerSecTotal float64
	for _, record := range records {
		latencyTotal += record.LatencySeconds
		tokensPerSecTotal += record.TokensPerSecond

		if record.LatencySeconds < summary.LatencyMin {
			summary.LatencyMin = record.LatencySeconds
		}
		if record.LatencySeconds > summary.LatencyMax {
			summary.LatencyMax = record.LatencySeconds
		}
	}

	count := float64(len(records))
	summary.LatencyMean = latencyTotal / count
	summary.TokensPerSecAvg = tokensPerSecTotal / count
	return summary
}

// buildRows maps the result onto artifact rows, one per run.
func buildRows(result *Result) []artifact.Row {
	now := time.Now().UTC()
	rows := make([]artifact.Row, 0, len(result.Records))
	for _, record := range result.Records {
		rows = append(rows, artifact.Row{
			Timestamp:       now,
			Run:             record.Run,
			Mode:            result.Mode,
			Model:           result.Model,
			MaxTokens:       result.MaxTokens,
			Temperature:     result.Temperature,
			LatencySeconds:  record.LatencySeconds,
			EstimatedTokens: record.EstimatedTokens,
			TokensPerSecond: record.TokensPerSecond,
			LoadSeconds:     result.LoadSeconds,
		})
	}
	return rows
}
