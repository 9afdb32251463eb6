// internal/providerfactory/factory_test.go
package providerfactory

import (
	"testing"

	"github.com/mwiater/golmbench/internal/appconfig"
	"github.com/mwiater/golmbench/internal/providers/llamacpp"
	"github.com/mwiater/golmbench/internal/providers/ollama"
)

func TestNewGenerateProviderErrorsOnNilConfig(t *testing.T) {
	if _, err := NewGenerateProvider(nil, appconfig.Host{Type: "ollama"}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNewGenerateProviderDefaultsToOllama(t *testing.T) {
	cfg := &appconfig.Config{TimeoutSeconds: 5}
	host := appconfig.Host{Name: "Test", URL: "http://localhost:11434", Type: ""}

	provider, err := NewGenerateProvider(cfg, host)
	if err != nil {
		t.Fatalf("NewGenerateProvider returned error: %v", err)
	}
	if _, ok := provider.(*ollama.Provider); !ok {
		t.Fatalf("expected ollama.Provider, got %T", provider)
	}
}

func TestNewGenerateProviderLlamaCpp(t *testing.T) {
	cfg := &appconfig.Config{TimeoutSeconds: 5}

	for _, hostType := range []string{"llamacpp", "llama.cpp", "LlamaCpp"} {
		host := appconfig.Host{Name: "Test", URL: "http://localhost:8080", Type: hostType}
		provider, err := NewGenerateProvider(cfg, host)
		if err != nil {
			t.Fatalf("NewGenerateProvider(%q) returned error: %v", hostType, err)
		}
		if _, ok := provider.(*llamacpp.Provider); !ok {
			t.Fatalf("expected llamacpp.Provider for %q, got %T", hostType, provider)
		}
	}
}

func TestNewGenerateProviderRejectsUnsupported(t *testing.T) {
	cfg := &appconfig.Config{TimeoutSeconds: 5}
	host := appconfig.Host{Name: "Test", URL: "http://localhost:9000", Type: "vllm"}

	if _, err := NewGenerateProvider(cfg, host); err == nil {
		t.Fatal("expected error for unsupported host type")
	}
}
