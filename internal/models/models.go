// internal/models/models.go
// Package models inspects and manages model state on configured hosts.
package models

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/golmbench/internal/appconfig"
	"github.com/mwiater/golmbench/internal/logging"
)

// defaultRequestTimeout defines the fallback HTTP timeout for host interactions.
const defaultRequestTimeout = 120 * time.Second

// LLMHost defines the model inventory operations a host must support.
type LLMHost interface {
	// ListModels lists the models available on the host with status styling.
	ListModels(ctx context.Context) ([]string, error)
	// ListRawModels lists plain model names without styling markup.
	ListRawModels(ctx context.Context) ([]string, error)
	// GetRunningModels returns the set of models currently loaded in memory.
	GetRunningModels(ctx context.Context) (map[string]struct{}, error)
	// UnloadModel evicts a model from host memory.
	UnloadModel(ctx context.Context, model string) error
	// GetName returns the name of the host.
	GetName() string
	// GetType returns the type of the host (e.g., "ollama").
	GetType() string
}

// newHost builds the LLMHost implementation matching the configured host type.
// Unknown types return nil.
func newHost(hostConfig appconfig.Host, client *http.Client, timeout time.Duration) LLMHost {
	switch strings.ToLower(strings.TrimSpace(hostConfig.Type)) {
	case "", "ollama":
		return &OllamaHost{
			Name:           hostConfig.Name,
			URL:            hostConfig.URL,
			client:         client,
			requestTimeout: timeout,
		}
	case "llamacpp", "llama.cpp":
		return &LlamaCppHost{
			Name:           hostConfig.Name,
			URL:            hostConfig.URL,
			client:         client,
			requestTimeout: timeout,
		}
	default:
		return nil
	}
}

// createHosts creates LLMHost implementations for each configured host entry.
func createHosts(config *appconfig.Config) []LLMHost {
	var hosts []LLMHost
	timeout := config.RequestTimeout()
	client := &http.Client{
		Timeout: timeout,
	}
	for _, hostConfig := range config.Hosts {
		host := newHost(hostConfig, client, timeout)
		if host == nil {
			fmt.Printf("Unknown host type: %s\n", hostConfig.Type)
			continue
		}
		hosts = append(hosts, host)
	}
	return hosts
}

// List prints the model inventory of every configured host, indicating which
// models are currently loaded.
func List(ctx context.Context, config *appconfig.Config) error {
	if config == nil {
		return fmt.Errorf("configuration is not initialized")
	}

	hosts := createHosts(config)
	if len(hosts) == 0 {
		return fmt.Errorf("no hosts configured")
	}
	nodeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255"))

	nodeModels := make(map[string][]string)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, host := range hosts {
		wg.Add(1)
		go func(h LLMHost) {
			defer wg.Done()
			models, err := h.ListModels(ctx)
			mu.Lock()
			if err != nil {
				nodeModels[h.GetName()] = []string{fmt.Sprintf("Error: %v", err)}
			} else {
				nodeModels[h.GetName()] = models
			}
			mu.Unlock()
		}(host)
	}
	wg.Wait()

	var sortedNodes []string
	for node := range nodeModels {
		sortedNodes = append(sortedNodes, node)
	}
	sort.Strings(sortedNodes)

	for _, node := range sortedNodes {
		fmt.Println(nodeStyle.Render(fmt.Sprintf("%s:", node)))
		for _, model := range nodeModels[node] {
			fmt.Println("  >>> " + model)
		}
		fmt.Println()
	}
	return nil
}

// Unload evicts every model currently loaded on the given host. Failures are
// logged rather than returned so callers can proceed against a warm host.
func Unload(ctx context.Context, config *appconfig.Config, host appconfig.Host) {
	if config == nil {
		return
	}

	timeout := config.RequestTimeout()
	h := newHost(host, &http.Client{Timeout: timeout}, timeout)
	if h == nil {
		logging.LogEvent("unload skipped: unsupported host type %q on %s", host.Type, host.Name)
		return
	}

	running, err := h.GetRunningModels(ctx)
	if err != nil {
		logging.LogEvent("unload skipped for %s: %v", h.GetName(), err)
		return
	}
	for model := range running {
		logging.LogEvent("unloading model %s on %s", model, h.GetName())
		if err := h.UnloadModel(ctx, model); err != nil {
			logging.LogEvent("unload model %s on %s: %v", model, h.GetName(), err)
		}
	}
}
