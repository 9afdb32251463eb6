// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is the path to the configuration file used in previous versions.
	legacyConfigPath = "config.json"
	// defaultRequestTimeout is the default timeout for HTTP requests.
	defaultRequestTimeout = 600 * time.Second
	// DefaultPrompt is the prompt used for benchmark generations when the config omits one.
	DefaultPrompt = "Summarize why small smoke tests are useful."
	// DefaultRuns is the number of benchmark runs when the config omits a value.
	DefaultRuns = 3
	// DefaultMaxTokens caps generation length when the config omits a value.
	DefaultMaxTokens = 32
	// DefaultTemperature is the sampling temperature when the config omits a value.
	DefaultTemperature = 0.2
	// DefaultResultsFile is where the benchmark artifact lands when the config omits a path.
	DefaultResultsFile = "results/benchmark_latest.csv"
)

// Config represents the top-level application configuration.
type Config struct {
	Hosts          []Host            `json:"hosts"`
	Debug          bool              `json:"debug"`
	Synthetic      bool              `json:"synthetic"`
	Strict         bool              `json:"strict"`
	Plain          bool              `json:"plain"`
	TimeoutSeconds int               `json:"timeout,omitempty"`
	LogFile        string            `json:"logFile,omitempty"`
	Benchmark      BenchmarkSettings `json:"benchmark"`
	ConfigPath     string            `json:"-"`
}

// Host represents a single host that can serve language models.
type Host struct {
	Name              string     `json:"name"`
	URL               string     `json:"url"`
	Type              string     `json:"type"`
	Model             string     `json:"model"`
	ParameterTemplate string     `json:"parameterTemplate,omitempty"`
	Parameters        Parameters `json:"parameters"`
}

// BenchmarkSettings holds the generation and output settings shared by the
// run and benchmark commands.
type BenchmarkSettings struct {
	Prompt      string  `json:"prompt,omitempty"`
	Runs        int     `json:"runs,omitempty"`
	MaxTokens   int     `json:"maxTokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	Output      string  `json:"output,omitempty"`
}

// Parameters defines the set of parameters that can be used to control a language model's behavior.
type Parameters struct {
	TopK             *int     `json:"top_k,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	MinP             *float64 `json:"min_p,omitempty"`
	RepeatLastN      *int     `json:"repeat_last_n,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	RepeatPenalty    *float64 `json:"repeat_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "golmbench.log"
}

// PrimaryHost returns the first configured host. Load guarantees at least one exists.
func (c Config) PrimaryHost() Host {
	if len(c.Hosts) == 0 {
		return Host{}
	}
	return c.Hosts[0]
}

// HostByName returns the host with the given name, falling back to the primary
// host when name is empty.
func (c Config) HostByName(name string) (Host, error) {
	if strings.TrimSpace(name) == "" {
		return c.PrimaryHost(), nil
	}
	for _, h := range c.Hosts {
		if h.Name == name {
			return h, nil
		}
	}
	return Host{}, fmt.Errorf("no host named %q in configuration", name)
}

// ApplyDefaults fills unset benchmark settings with the package defaults.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.Benchmark.Prompt) == "" {
		c.Benchmark.Prompt = DefaultPrompt
	}
	if c.Benchmark.Runs <= 0 {
		c.Benchmark.Runs = DefaultRuns
	}
	if c.Benchmark.MaxTokens <= 0 {
		c.Benchmark.MaxTokens = DefaultMaxTokens
	}
	if c.Benchmark.Temperature <= 0 {
		c.Benchmark.Temperature = DefaultTemperature
	}
	if strings.TrimSpace(c.Benchmark.Output) == "" {
		c.Benchmark.Output = DefaultResultsFile
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}
}

// Load reads the application configuration from the specified path, with
// fallback to a legacy path when the default location is empty.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		if len(config.Hosts) == 0 {
			return Config{}, errors.New("config must contain at least one host")
		}
		config.ConfigPath = path
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				if len(config.Hosts) == 0 {
					return Config{}, errors.New("config must contain at least one host")
				}
				config.ConfigPath = legacyConfigPath
				return config, nil
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("no configuration file found (searched %q and %q)", DefaultConfigPath, legacyConfigPath)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("no configuration file found at %q", path)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	if err := ValidateBytes(data); err != nil {
		return Config{}, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	config.ApplyDefaults()
	applyParameterTemplates(&config)

	return config, nil
}
