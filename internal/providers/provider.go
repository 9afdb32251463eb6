// internal/providers/provider.go

// Package providers defines the interfaces for interacting with different AI model providers.
// It provides a common abstraction layer for issuing generation requests and reading
// back timing metadata, regardless of the underlying provider implementation
// (e.g., Ollama, llama.cpp).
package providers

import (
	"context"
	"time"

	"github.com/mwiater/golmbench/internal/appconfig"
)

// GenerateRequest encapsulates all the information needed for one generation call.
type GenerateRequest struct {
	Host        appconfig.Host
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
	Parameters  appconfig.Parameters
}

// GenerateResult contains the generated text and the performance metadata
// reported by the host, including separate load and evaluation timings.
// Durations are nanoseconds as reported by the host APIs.
type GenerateResult struct {
	Model              string
	CreatedAt          time.Time
	Response           string
	TotalDuration      int64
	LoadDuration       int64
	PromptEvalCount    int
	PromptEvalDuration int64
	EvalCount          int
	EvalDuration       int64
}

// GenerateProvider is the interface that all model providers must implement.
// Generation is a single blocking call; the provider reports failure through
// the returned error and never retries on its own.
type GenerateProvider interface {
	// LoadedModels returns a list of models that are currently loaded into memory for a given host.
	LoadedModels(ctx context.Context, host appconfig.Host) ([]string, error)
	// EnsureModelReady checks if a model is ready to be used and loads it if necessary.
	EnsureModelReady(ctx context.Context, host appconfig.Host, model string) error
	// Generate performs one generation and returns the host-reported metadata.
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	// Close cleans up any resources used by the provider.
	Close() error
}
