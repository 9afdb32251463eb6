// internal/providers/ollama/provider.go
// Package ollama provides a GenerateProvider backed by Ollama-compatible HTTP endpoints.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/golmbench/internal/appconfig"
	"github.com/mwiater/golmbench/internal/logging"
	"github.com/mwiater/golmbench/internal/providers"
)

// Provider implements the providers.GenerateProvider interface using Ollama HTTP APIs.
type Provider struct {
	client  *http.Client
	timeout time.Duration
	debug   bool
}

// New constructs a Provider configured with the application's request timeout.
func New(cfg *appconfig.Config) *Provider {
	timeout := cfg.RequestTimeout()
	return &Provider{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		timeout: timeout,
		debug:   cfg.Debug,
	}
}

// ollamaPsResponse defines the structure of the response from the /api/ps endpoint.
type ollamaPsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// generateResponse defines the structure of a non-streaming /api/generate response.
type generateResponse struct {
	Model              string `json:"model"`
	Response           string `json:"response"`
	Done               bool   `json:"done"`
	TotalDuration      int64  `json:"total_duration"`
	LoadDuration       int64  `json:"load_duration"`
	PromptEvalCount    int    `json:"prompt_eval_count"`
	PromptEvalDuration int64  `json:"prompt_eval_duration"`
	EvalCount          int    `json:"eval_count"`
	EvalDuration       int64  `json:"eval_duration"`
}

// LoadedModels returns the models currently loaded in memory on the host.
func (p *Provider) LoadedModels(ctx context.Context, host appconfig.Host) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	endpoint := host.URL + "/api/ps"
	logging.LogRequest("BENCH->LLM", hostIdentifier(host), "", map[string]string{"method": http.MethodGet, "url": endpoint})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama: /api/ps returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("LLM->BENCH", hostIdentifier(host), "", body)

	var ps ollamaPsResponse
	if err := json.Unmarshal(body, &ps); err != nil {
		return nil, err
	}

	names := make([]string, len(ps.Models))
	for i, m := range ps.Models {
		names[i] = m.Name
	}
	return names, nil
}

// EnsureModelReady triggers an empty generate request so the host loads the
// model into memory. Ollama blocks until the load completes.
func (p *Provider) EnsureModelReady(ctx context.Context, host appconfig.Host, model string) error {
	payload := map[string]any{
		"model": model,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	logging.LogRequest("BENCH->LLM", hostIdentifier(host), model, body)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, host.URL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	logging.LogRequest("LLM->BENCH", hostIdentifier(host), model, respBody)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: /api/generate returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	return nil
}

// Generate performs one non-streaming generation via /api/generate and maps the
// host-reported timings onto the result.
func (p *Provider) Generate(ctx context.Context, req providers.GenerateRequest) (providers.GenerateResult, error) {
	payload := map[string]any{
		"model":   req.Model,
		"prompt":  req.Prompt,
		"options": buildOptions(req),
		"stream":  false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return providers.GenerateResult{}, err
	}

	hostID := hostIdentifier(req.Host)
	logging.LogRequest("BENCH->LLM", hostID, req.Model, body)

	genCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(genCtx, http.MethodPost, req.Host.URL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return providers.GenerateResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return providers.GenerateResult{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return providers.GenerateResult{}, err
	}
	logging.LogRequest("LLM->BENCH", hostID, req.Model, respBody)

	if resp.StatusCode != http.StatusOK {
		return providers.GenerateResult{}, fmt.Errorf("ollama: /api/generate returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return providers.GenerateResult{}, err
	}

	if p.debug && result.EvalCount == 0 {
		logging.LogEvent("ollama: %s reported no eval token counts", hostID)
	}

	modelName := result.Model
	if modelName == "" {
		modelName = req.Model
	}
	return providers.GenerateResult{
		Model:              modelName,
		CreatedAt:          time.Now(),
		Response:           result.Response,
		TotalDuration:      result.TotalDuration,
		LoadDuration:       result.LoadDuration,
		PromptEvalCount:    result.PromptEvalCount,
		PromptEvalDuration: result.PromptEvalDuration,
		EvalCount:          result.EvalCount,
		EvalDuration:       result.EvalDuration,
	}, nil
}

// buildOptions assembles the Ollama options map from the request, letting the
// request's generation settings override any host parameter defaults.
func buildOptions(req providers.GenerateRequest) map[string]any {
	params := req.Parameters
	options := map[string]any{}
	if params.TopK != nil {
		options["top_k"] = *params.TopK
	}
	if params.TopP != nil {
		options["top_p"] = *params.TopP
	}
	if params.MinP != nil {
		options["min_p"] = *params.MinP
	}
	if params.RepeatLastN != nil {
		options["repeat_last_n"] = *params.RepeatLastN
	}
	if params.Temperature != nil {
		options["temperature"] = *params.Temperature
	}
	if params.RepeatPenalty != nil {
		options["repeat_penalty"] = *params.RepeatPenalty
	}
	if params.PresencePenalty != nil {
		options["presence_penalty"] = *params.PresencePenalty
	}
	if params.FrequencyPenalty != nil {
		options["frequency_penalty"] = *params.FrequencyPenalty
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}
	return options
}

// Close releases any resources held by the provider.
func (p *Provider) Close() error {
	return nil
}

// hostIdentifier returns a string identifier for a given host, preferring the name over the URL.
func hostIdentifier(host appconfig.Host) string {
	name := strings.TrimSpace(host.Name)
	if name != "" {
		return name
	}
	if url := strings.TrimSpace(host.URL); url != "" {
		return url
	}
	return "ollama-host"
}
