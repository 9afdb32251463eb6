// internal/models/ollama_host.go
package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// OllamaHost implements the LLMHost interface for Ollama servers.
type OllamaHost struct {
	Name           string
	URL            string
	client         *http.Client
	requestTimeout time.Duration
}

// GetName returns the display name of the Ollama host.
func (h *OllamaHost) GetName() string {
	return h.Name
}

// GetType returns the type identifier for Ollama hosts ("ollama").
func (h *OllamaHost) GetType() string {
	return "ollama"
}

// httpClient returns the explicitly configured HTTP client or the shared default client.
func (h *OllamaHost) httpClient() *http.Client {
	if h.client != nil {
		return h.client
	}
	return http.DefaultClient
}

// effectiveTimeout resolves the timeout to use for outbound HTTP requests.
func (h *OllamaHost) effectiveTimeout() time.Duration {
	if h.requestTimeout > 0 {
		return h.requestTimeout
	}
	return defaultRequestTimeout
}

// doRequest executes an HTTP request against the Ollama API, bounding it with
// the host request timeout.
func (h *OllamaHost) doRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, context.CancelFunc, error) {
	reqCtx, cancel := context.WithTimeout(ctx, h.effectiveTimeout())
	req, err := http.NewRequestWithContext(reqCtx, method, fmt.Sprintf("%s%s", h.URL, path), body)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := h.httpClient().Do(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return resp, cancel, nil
}

// UnloadModel evicts a model from an Ollama host by sending a generate request
// with keep_alive set to 0.
func (h *OllamaHost) UnloadModel(ctx context.Context, model string) error {
	payload := map[string]any{"model": model, "keep_alive": 0}
	body, _ := json.Marshal(payload)

	resp, cancel, err := h.doRequest(ctx, http.MethodPost, "/api/generate", bytes.NewReader(body), "application/json")
	if err != nil {
		return fmt.Errorf("unload model %s on %s: %w", model, h.Name, err)
	}
	defer cancel()
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unload model %s on %s: %s", model, h.Name, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// ListRawModels returns the models available on an Ollama host without styling markup.
func (h *OllamaHost) ListRawModels(ctx context.Context) ([]string, error) {
	resp, cancel, err := h.doRequest(ctx, http.MethodGet, "/api/tags", nil, "")
	if err != nil {
		return nil, fmt.Errorf("could not list models: Ollama is not accessible on %s", h.Name)
	}
	defer cancel()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("could not list models: %s", strings.TrimSpace(string(bodyBytes)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body from %s: %v", h.Name, err)
	}

	var tagsResp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &tagsResp); err != nil {
		return nil, fmt.Errorf("error parsing models from %s: %v", h.Name, err)
	}

	var models []string
	for _, model := range tagsResp.Models {
		models = append(models, model.Name)
	}
	return models, nil
}

// ListModels returns the models available on an Ollama host, labeling currently loaded entries.
func (h *OllamaHost) ListModels(ctx context.Context) ([]string, error) {
	modelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	loadedModelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	runningModels, err := h.GetRunningModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get running models: %v", err)
	}

	names, err := h.ListRawModels(ctx)
	if err != nil {
		return nil, err
	}

	var models []string
	for _, name := range names {
		if _, ok := runningModels[name]; ok {
			models = append(models, loadedModelStyle.Render(fmt.Sprintf("%s (CURRENTLY LOADED)", name)))
		} else {
			models = append(models, modelStyle.Render(name))
		}
	}
	return models, nil
}

// GetRunningModels returns the set of currently running models on an Ollama host by querying /api/ps.
func (h *OllamaHost) GetRunningModels(ctx context.Context) (map[string]struct{}, error) {
	runningModels := make(map[string]struct{})

	resp, cancel, err := h.doRequest(ctx, http.MethodGet, "/api/ps", nil, "")
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("could not get running models: %s", strings.TrimSpace(string(bodyBytes)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var psResp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &psResp); err != nil {
		return nil, err
	}

	for _, model := range psResp.Models {
		runningModels[model.Name] = struct{}{}
	}

	return runningModels, nil
}
