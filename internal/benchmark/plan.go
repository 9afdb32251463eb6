// internal/benchmark/plan.go
package benchmark

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Plan is a YAML-described benchmark invocation. Every field is an optional
// override; pointer fields distinguish "unset" from an explicit zero.
type Plan struct {
	Host        string   `yaml:"host"`
	Model       string   `yaml:"model"`
	Prompt      string   `yaml:"prompt"`
	Runs        *int     `yaml:"runs"`
	MaxTokens   *int     `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
	Output      string   `yaml:"output"`
}

// LoadPlan reads and validates a benchmark plan file.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("could not read plan file %q: %w", path, err)
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return Plan{}, fmt.Errorf("could not parse plan file %q: %w", path, err)
	}

	if plan.Runs != nil && *plan.Runs < 0 {
		return Plan{}, fmt.Errorf("plan file %q: runs must not be negative, got %d", path, *plan.Runs)
	}
	if plan.MaxTokens != nil && *plan.MaxTokens < 0 {
		return Plan{}, fmt.Errorf("plan file %q: max_tokens must not be negative, got %d", path, *plan.MaxTokens)
	}
	if plan.Temperature != nil && *plan.Temperature < 0 {
		return Plan{}, fmt.Errorf("plan file %q: temperature must not be negative, got %g", path, *plan.Temperature)
	}
	if plan.isEmpty() {
		return Plan{}, fmt.Errorf("plan file %q sets no benchmark fields", path)
	}

	return plan, nil
}

// Apply overlays the plan's populated fields onto opts. Fields the plan
// leaves unset keep their current values; explicit zeros (e.g. runs: 0)
// flow through so Run's validation reports them.
func (p Plan) Apply(opts *Options) {
	if strings.TrimSpace(p.Host) != "" {
		opts.HostName = p.Host
	}
	if strings.TrimSpace(p.Model) != "" {
		opts.Model = p.Model
	}
	if strings.TrimSpace(p.Prompt) != "" {
		opts.Prompt = p.Prompt
	}
	if p.Runs != nil {
		opts.Runs = *p.Runs
	}
	if p.MaxTokens != nil {
		opts.MaxTokens = *p.MaxTokens
	}
	if p.Temperature != nil {
		opts.Temperature = *p.Temperature
	}
	if strings.TrimSpace(p.Output) != "" {
		opts.Output = p.Output
	}
}

func (p Plan) isEmpty() bool {
	return strings.TrimSpace(p.Host) == "" &&
		strings.TrimSpace(p.Model) == "" &&
		strings.TrimSpace(p.Prompt) == "" &&
		p.Runs == nil &&
		p.MaxTokens == nil &&
		p.Temperature == nil &&
		strings.TrimSpace(p.Output) == ""
}
