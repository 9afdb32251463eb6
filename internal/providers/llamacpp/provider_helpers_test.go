// internal/providers/llamacpp/provider_helpers_test.go
package llamacpp

import (
	"testing"

	"github.com/mwiater/golmbench/internal/appconfig"
)

func TestStatusFieldUnmarshalJSON(t *testing.T) {
	var s statusField
	if err := s.UnmarshalJSON([]byte(`"loaded"`)); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if s.Value != "loaded" {
		t.Fatalf("expected loaded, got %q", s.Value)
	}
	if err := s.UnmarshalJSON([]byte(`{"value":"unloaded"}`)); err != nil {
		t.Fatalf("unmarshal object: %v", err)
	}
	if s.Value != "unloaded" {
		t.Fatalf("expected unloaded, got %q", s.Value)
	}
	if err := s.UnmarshalJSON([]byte(`null`)); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if s.Value != "" {
		t.Fatalf("expected empty value, got %q", s.Value)
	}
}

func TestApplyParameters(t *testing.T) {
	topK := 42
	temp := 0.7
	repeatLastN := 64
	params := appconfig.Parameters{TopK: &topK, Temperature: &temp, RepeatLastN: &repeatLastN}
	payload := map[string]any{}
	applyParameters(payload, params)
	if payload["top_k"] != 42 {
		t.Fatalf("expected top_k to be set")
	}
	if payload["temperature"] != 0.7 {
		t.Fatalf("expected temperature to be set")
	}
	if payload["repeat_last_n"] != 64 {
		t.Fatalf("expected repeat_last_n to be set")
	}
	if _, ok := payload["top_p"]; ok {
		t.Fatalf("unset parameters must not appear in the payload")
	}
}

func TestHostIdentifier(t *testing.T) {
	if got := hostIdentifier(appconfig.Host{Name: "A", URL: "http://x"}); got != "A" {
		t.Fatalf("expected name, got %q", got)
	}
	if got := hostIdentifier(appconfig.Host{URL: "http://x"}); got != "http://x" {
		t.Fatalf("expected url, got %q", got)
	}
	if got := hostIdentifier(appconfig.Host{}); got != "llama.cpp-host" {
		t.Fatalf("expected default host, got %q", got)
	}
}

func TestModelStatusValue(t *testing.T) {
	model := llamaModel{Status: statusField{Value: " loaded "}}
	if got := modelStatusValue(model); got != "loaded" {
		t.Fatalf("expected loaded, got %q", got)
	}
}

func TestModelDisplayNameFallbacks(t *testing.T) {
	if got := modelDisplayName(llamaModel{ID: " a "}); got != "a" {
		t.Fatalf("expected id, got %q", got)
	}
	if got := modelDisplayName(llamaModel{Name: "b"}); got != "b" {
		t.Fatalf("expected name, got %q", got)
	}
	if got := modelDisplayName(llamaModel{Model: "c"}); got != "c" {
		t.Fatalf("expected model, got %q", got)
	}
	if got := modelDisplayName(llamaModel{Path: "d.gguf"}); got != "d.gguf" {
		t.Fatalf("expected path, got %q", got)
	}
}
