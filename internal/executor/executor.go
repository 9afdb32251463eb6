// internal/executor/executor.go
// Package executor performs single timed generations against a configured host.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mwiater/golmbench/internal/appconfig"
	"github.com/mwiater/golmbench/internal/providers"
)

// ExecuteRequest describes one generation to time.
type ExecuteRequest struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// RunRecord captures the timing and token counts for one completed generation.
// Latency covers the generation call only; model load time is reported
// separately by LoadModel.
type RunRecord struct {
	Model           string
	Response        string
	LatencySeconds  float64
	EstimatedTokens int
	PromptTokens    int
	TokensPerSecond float64
}

// Executor issues generations against one host through its provider.
type Executor struct {
	provider providers.GenerateProvider
	host     appconfig.Host
}

// New returns an Executor bound to the given provider and host.
func New(provider providers.GenerateProvider, host appconfig.Host) *Executor {
	return &Executor{provider: provider, host: host}
}

// ResolveModel returns the explicitly requested model, falling back to the
// host's configured model when the request leaves it empty.
func (e *Executor) ResolveModel(model string) (string, error) {
	resolved := strings.TrimSpace(model)
	if resolved == "" {
		resolved = strings.TrimSpace(e.host.Model)
	}
	if resolved == "" {
		return "", fmt.Errorf("no model specified for host %q", e.host.Name)
	}
	return resolved, nil
}

// LoadModel asks the host to make the model ready and reports how long the
// host took. The load is a single blocking call; a failure here means no
// generation has happened.
func (e *Executor) LoadModel(ctx context.Context, model string) (float64, error) {
	resolved, err := e.ResolveModel(model)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	if err := e.provider.EnsureModelReady(ctx, e.host, resolved); err != nil {
		return 0, fmt.Errorf("load model %s: %w", resolved, err)
	}
	return time.Since(start).Seconds(), nil
}

// Execute runs exactly one generation and times it. The request is validated
// before anything reaches the provider, and provider failures surface to the
// caller without retries.
func (e *Executor) Execute(ctx context.Context, req ExecuteRequest) (RunRecord, error) {
	model, err := e.ResolveModel(req.Model)
	if err != nil {
		return RunRecord{}, err
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return RunRecord{}, fmt.Errorf("prompt must not be empty")
	}

	genReq := providers.GenerateRequest{
		Host:        e.host,
		Model:       model,
		Prompt:      req.Prompt,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Parameters:  e.host.Parameters,
	}

	start := time.Now()
	result, err := e.provider.Generate(ctx, genReq)
	if err != nil {
		return RunRecord{}, fmt.Errorf("generate: %w", err)
	}
	latency := time.Since(start).Seconds()

	record := RunRecord{
		Model:           result.Model,
		Response:        result.Response,
		LatencySeconds:  latency,
		EstimatedTokens: result.EvalCount,
		PromptTokens:    result.PromptEvalCount,
	}
	if record.Model == "" {
		record.Model = model
	}
	if latency > 0 && record.EstimatedTokens > 0 {
		record.TokensPerSecond = float64(record.EstimatedTokens) / latency
	}
	return record, nil
}
