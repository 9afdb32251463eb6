// internal/providerfactory/factory.go
// Package providerfactory selects the generation provider for a configured host.
package providerfactory

import (
	"fmt"
	"strings"

	"github.com/mwiater/golmbench/internal/appconfig"
	"github.com/mwiater/golmbench/internal/providers"
	"github.com/mwiater/golmbench/internal/providers/llamacpp"
	"github.com/mwiater/golmbench/internal/providers/ollama"
)

// NewGenerateProvider constructs the provider matching the host's configured
// type. Hosts without a type default to Ollama.
func NewGenerateProvider(cfg *appconfig.Config, host appconfig.Host) (providers.GenerateProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to provider factory")
	}

	switch normalizeHostType(host.Type) {
	case "ollama":
		return ollama.New(cfg), nil
	case "llamacpp":
		return llamacpp.New(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported host type %q for host %q", host.Type, host.Name)
	}
}

func normalizeHostType(hostType string) string {
	normalized := strings.ToLower(strings.TrimSpace(hostType))
	switch normalized {
	case "":
		return "ollama"
	case "llama.cpp":
		return "llamacpp"
	}
	return normalized
}
