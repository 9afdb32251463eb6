// internal/appconfig/appconfig_test.go
package appconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoad tests the Load function to ensure it correctly handles various
// scenarios, including valid and invalid configurations. It verifies that a
// valid configuration file is loaded with defaults applied, while files with
// invalid JSON, no hosts, or that are nonexistent result in an appropriate
// error.
func TestLoad(t *testing.T) {
	validConfig := `{
        "hosts": [
            {
                "name": "Test Host",
                "url": "http://localhost:11434",
                "type": "ollama",
                "model": "qwen2.5:0.5b"
            }
        ]
    }`
	tmpfile := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(tmpfile, []byte(validConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile)
	if err != nil {
		t.Fatalf("Load() with valid config failed: %v", err)
	}
	if len(cfg.Hosts) != 1 {
		t.Fatalf("expected 1 host, got %d", len(cfg.Hosts))
	}

	if cfg.TimeoutSeconds != 600 {
		t.Fatalf("expected default timeout of 600 seconds, got %d", cfg.TimeoutSeconds)
	}
	if cfg.RequestTimeout() != 600*time.Second {
		t.Fatalf("expected default request timeout of 600s, got %v", cfg.RequestTimeout())
	}
	if cfg.Benchmark.Prompt != DefaultPrompt {
		t.Fatalf("expected default prompt, got %q", cfg.Benchmark.Prompt)
	}
	if cfg.Benchmark.Runs != DefaultRuns {
		t.Fatalf("expected default runs of %d, got %d", DefaultRuns, cfg.Benchmark.Runs)
	}
	if cfg.Benchmark.MaxTokens != DefaultMaxTokens {
		t.Fatalf("expected default max tokens of %d, got %d", DefaultMaxTokens, cfg.Benchmark.MaxTokens)
	}
	if cfg.Benchmark.Output != DefaultResultsFile {
		t.Fatalf("expected default output of %q, got %q", DefaultResultsFile, cfg.Benchmark.Output)
	}

	invalidJSON := `{ "hosts": [`
	tmpfile2 := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(tmpfile2, []byte(invalidJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmpfile2); err == nil {
		t.Fatal("Load() with invalid JSON should have failed")
	}

	noHosts := `{ "hosts": [] }`
	tmpfile3 := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(tmpfile3, []byte(noHosts), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmpfile3); err == nil {
		t.Fatal("Load() with no hosts should have failed")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "nonexistent.json")); err == nil {
		t.Fatal("Load() with nonexistent file should have failed")
	}
}

// TestValidateBytes verifies that the embedded schema rejects configs with
// missing required host fields or an unknown host type.
func TestValidateBytes(t *testing.T) {
	cases := map[string]struct {
		config string
		valid  bool
	}{
		"valid ollama host": {
			config: `{"hosts":[{"name":"local","url":"http://localhost:11434","type":"ollama","model":"m"}]}`,
			valid:  true,
		},
		"valid llamacpp host": {
			config: `{"hosts":[{"name":"local","url":"http://localhost:8080","type":"llamacpp"}]}`,
			valid:  true,
		},
		"missing url": {
			config: `{"hosts":[{"name":"local","type":"ollama"}]}`,
			valid:  false,
		},
		"unknown host type": {
			config: `{"hosts":[{"name":"local","url":"http://localhost","type":"vllm"}]}`,
			valid:  false,
		},
		"empty hosts": {
			config: `{"hosts":[]}`,
			valid:  false,
		},
		"negative timeout": {
			config: `{"hosts":[{"name":"local","url":"http://localhost","type":"ollama"}],"timeout":-5}`,
			valid:  false,
		},
	}

	for name, tc := range cases {
		err := ValidateBytes([]byte(tc.config))
		if tc.valid && err != nil {
			t.Fatalf("%s: expected valid config, got %v", name, err)
		}
		if !tc.valid && err == nil {
			t.Fatalf("%s: expected validation failure", name)
		}
	}
}

// TestHostByName checks host lookup by name with fallback to the primary host.
func TestHostByName(t *testing.T) {
	cfg := Config{Hosts: []Host{
		{Name: "alpha", URL: "http://a"},
		{Name: "beta", URL: "http://b"},
	}}

	host, err := cfg.HostByName("")
	if err != nil {
		t.Fatalf("HostByName(\"\"): %v", err)
	}
	if host.Name != "alpha" {
		t.Fatalf("expected primary host alpha, got %q", host.Name)
	}

	host, err = cfg.HostByName("beta")
	if err != nil {
		t.Fatalf("HostByName(beta): %v", err)
	}
	if host.URL != "http://b" {
		t.Fatalf("unexpected host: %+v", host)
	}

	if _, err := cfg.HostByName("gamma"); err == nil {
		t.Fatal("expected error for unknown host name")
	}
}

// TestApplyDefaults ensures explicit settings survive defaulting.
func TestApplyDefaults(t *testing.T) {
	cfg := Config{
		Hosts: []Host{{Name: "local", URL: "http://localhost", Type: "ollama"}},
		Benchmark: BenchmarkSettings{
			Prompt:      "custom prompt",
			Runs:        7,
			MaxTokens:   128,
			Temperature: 0.9,
			Output:      "results/custom.csv",
		},
	}
	cfg.ApplyDefaults()

	if cfg.Benchmark.Prompt != "custom prompt" || cfg.Benchmark.Runs != 7 {
		t.Fatalf("defaults overwrote explicit settings: %+v", cfg.Benchmark)
	}
	if cfg.Benchmark.MaxTokens != 128 || cfg.Benchmark.Temperature != 0.9 {
		t.Fatalf("defaults overwrote explicit settings: %+v", cfg.Benchmark)
	}
	if cfg.Benchmark.Output != "results/custom.csv" {
		t.Fatalf("defaults overwrote explicit output: %q", cfg.Benchmark.Output)
	}
}
