// internal/appconfig/load_integration_test.go
package appconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	oldCwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldCwd) })
	return tempDir
}

func TestLoadDefaultPathWithLlamaTypes(t *testing.T) {
	tempDir := chdirTemp(t)
	configDir := filepath.Join(tempDir, "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}

	payload := `{
  "hosts": [
    { "name": "A", "url": "http://localhost:8080", "type": "llama.cpp", "model": "m1", "parameterTemplate": "generic" },
    { "name": "B", "url": "http://localhost:8081", "type": "llamacpp", "model": "m2", "parameterTemplate": "deterministic" }
  ]
}`
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.Hosts) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(cfg.Hosts))
	}
	if cfg.TimeoutSeconds != 600 {
		t.Fatalf("expected default timeout 600, got %d", cfg.TimeoutSeconds)
	}
	if cfg.Hosts[0].Parameters.Temperature == nil || *cfg.Hosts[0].Parameters.Temperature != 0.8 {
		t.Fatalf("expected generic template applied to host A: %+v", cfg.Hosts[0].Parameters)
	}
	if cfg.Hosts[1].Parameters.Temperature == nil || *cfg.Hosts[1].Parameters.Temperature != 0.1 {
		t.Fatalf("expected deterministic template applied to host B: %+v", cfg.Hosts[1].Parameters)
	}
}

func TestLoadLegacyFallback(t *testing.T) {
	tempDir := chdirTemp(t)
	payload := `{
  "hosts": [
    { "name": "A", "url": "http://localhost:8080", "type": "llama.cpp", "model": "m1" }
  ]
}`
	if err := os.WriteFile(filepath.Join(tempDir, "config.json"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write legacy config: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.Hosts) != 1 {
		t.Fatalf("expected 1 host, got %d", len(cfg.Hosts))
	}
	if cfg.ConfigPath != "config.json" {
		t.Fatalf("expected legacy config path recorded, got %q", cfg.ConfigPath)
	}
}

func TestLoadNoHostsError(t *testing.T) {
	tempDir := chdirTemp(t)
	configDir := filepath.Join(tempDir, "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte(`{"hosts":[]}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty hosts")
	}
}

func TestLoadMissingFileError(t *testing.T) {
	chdirTemp(t)

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestLoadExplicitTemplateMergesUnderOverrides(t *testing.T) {
	tempDir := chdirTemp(t)
	payload := `{
  "hosts": [
    {
      "name": "A",
      "url": "http://localhost:11434",
      "type": "ollama",
      "model": "m1",
      "parameterTemplate": "creative",
      "parameters": { "temperature": 0.3 }
    }
  ]
}`
	path := filepath.Join(tempDir, "cfg.json")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	params := cfg.Hosts[0].Parameters
	if params.Temperature == nil || *params.Temperature != 0.3 {
		t.Fatalf("explicit temperature should override template, got %+v", params.Temperature)
	}
	if params.RepeatLastN == nil || *params.RepeatLastN != 256 {
		t.Fatalf("template repeat_last_n should fill unset field, got %+v", params.RepeatLastN)
	}
}
