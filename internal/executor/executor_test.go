// internal/executor/executor_test.go
package executor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mwiater/golmbench/internal/appconfig"
	"github.com/mwiater/golmbench/internal/providers"
)

type stubProvider struct {
	ensureCalls   int
	generateCalls int
	ensureDelay   time.Duration
	generateDelay time.Duration
	ensureErr     error
	generateErr   error
	result        providers.GenerateResult
	lastRequest   providers.GenerateRequest
}

func (s *stubProvider) LoadedModels(ctx context.Context, host appconfig.Host) ([]string, error) {
	return nil, nil
}

func (s *stubProvider) EnsureModelReady(ctx context.Context, host appconfig.Host, model string) error {
	s.ensureCalls++
	if s.ensureDelay > 0 {
		time.Sleep(s.ensureDelay)
	}
	return s.ensureErr
}

func (s *stubProvider) Generate(ctx context.Context, req providers.GenerateRequest) (providers.GenerateResult, error) {
	s.generateCalls++
	s.lastRequest = req
	if s.generateDelay > 0 {
		time.Sleep(s.generateDelay)
	}
	if s.generateErr != nil {
		return providers.GenerateResult{}, s.generateErr
	}
	return s.result, nil
}

func (s *stubProvider) Close() error {
	return nil
}

// TestExecuteTimesGeneration verifies that one generation produces a record
// with a positive latency and a tokens-per-second figure derived from the
// provider's token count.
func TestExecuteTimesGeneration(t *testing.T) {
	stub := &stubProvider{
		generateDelay: 20 * time.Millisecond,
		result: providers.GenerateResult{
			Model:     "test-model",
			Response:  "hello",
			EvalCount: 40,
		},
	}
	exec := New(stub, appconfig.Host{Name: "local", Model: "test-model"})

	record, err := exec.Execute(context.Background(), ExecuteRequest{
		Prompt:    "say hi",
		MaxTokens: 32,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if record.Model != "test-model" || record.Response != "hello" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.LatencySeconds <= 0 {
		t.Fatalf("expected positive latency, got %f", record.LatencySeconds)
	}
	if record.EstimatedTokens != 40 {
		t.Fatalf("expected 40 tokens, got %d", record.EstimatedTokens)
	}
	if record.TokensPerSecond <= 0 {
		t.Fatalf("expected positive tokens/sec, got %f", record.TokensPerSecond)
	}
	if stub.generateCalls != 1 {
		t.Fatalf("expected exactly one generation, got %d", stub.generateCalls)
	}
}

// TestExecuteValidatesBeforeGenerating ensures invalid requests never reach
// the provider.
func TestExecuteValidatesBeforeGenerating(t *testing.T) {
	cases := map[string]struct {
		host    appconfig.Host
		request ExecuteRequest
	}{
		"empty prompt": {
			host:    appconfig.Host{Name: "local", Model: "test-model"},
			request: ExecuteRequest{Prompt: "   "},
		},
		"no model anywhere": {
			host:    appconfig.Host{Name: "local"},
			request: ExecuteRequest{Prompt: "say hi"},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			stub := &stubProvider{}
			exec := New(stub, tc.host)

			if _, err := exec.Execute(context.Background(), tc.request); err == nil {
				t.Fatalf("expected validation error")
			}
			if stub.generateCalls != 0 || stub.ensureCalls != 0 {
				t.Fatalf("expected no provider calls, got ensure=%d generate=%d", stub.ensureCalls, stub.generateCalls)
			}
		})
	}
}

// TestExecuteResolvesHostModel checks the fallback from the request model to
// the host's configured model.
func TestExecuteResolvesHostModel(t *testing.T) {
	stub := &stubProvider{result: providers.GenerateResult{EvalCount: 1}}
	exec := New(stub, appconfig.Host{Name: "local", Model: "host-model"})

	record, err := exec.Execute(context.Background(), ExecuteRequest{Prompt: "say hi"})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if stub.lastRequest.Model != "host-model" {
		t.Fatalf("expected host model to be used, got %q", stub.lastRequest.Model)
	}
	if record.Model != "host-model" {
		t.Fatalf("expected record model host-model, got %q", record.Model)
	}
}

// TestExecuteGenerateFailure verifies a provider failure surfaces unwrapped
// with no retry.
func TestExecuteGenerateFailure(t *testing.T) {
	stub := &stubProvider{generateErr: errors.New("backend exploded")}
	exec := New(stub, appconfig.Host{Name: "local", Model: "test-model"})

	_, err := exec.Execute(context.Background(), ExecuteRequest{Prompt: "say hi"})
	if err == nil {
		t.Fatalf("expected error from failing provider")
	}
	if !strings.Contains(err.Error(), "backend exploded") {
		t.Fatalf("expected provider error to surface, got %v", err)
	}
	if stub.generateCalls != 1 {
		t.Fatalf("expected a single attempt, got %d", stub.generateCalls)
	}
}

// TestLoadModelTimesReadiness verifies the load step is measured separately
// from generation.
func TestLoadModelTimesReadiness(t *testing.T) {
	stub := &stubProvider{ensureDelay: 10 * time.Millisecond}
	exec := New(stub, appconfig.Host{Name: "local", Model: "test-model"})

	seconds, err := exec.LoadModel(context.Background(), "")
	if err != nil {
		t.Fatalf("LoadModel returned error: %v", err)
	}
	if seconds <= 0 {
		t.Fatalf("expected positive load time, got %f", seconds)
	}
	if stub.ensureCalls != 1 || stub.generateCalls != 0 {
		t.Fatalf("expected one load and no generations, got ensure=%d generate=%d", stub.ensureCalls, stub.generateCalls)
	}
}

// TestLoadModelFailure ensures a load error aborts before any generation.
func TestLoadModelFailure(t *testing.T) {
	stub := &stubProvider{ensureErr: errors.New("weights missing")}
	exec := New(stub, appconfig.Host{Name: "local", Model: "test-model"})

	if _, err := exec.LoadModel(context.Background(), ""); err == nil {
		t.Fatalf("expected load error")
	}
	if stub.generateCalls != 0 {
		t.Fatalf("expected no generations after failed load, got %d", stub.generateCalls)
	}
}
