// internal/appconfig/show.go
package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary. When no materialized
// config exists yet the fallback values (merged flag state) are shown instead.
func ShowConfig(out io.Writer, file string, cfg *Config, fallback Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	if cfg == nil {
		cfg = &fallback
	}

	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Synthetic Mode:  %v\n", cfg.Synthetic)
	fmt.Fprintf(out, "  Strict Mode:     %v\n", cfg.Strict)
	fmt.Fprintf(out, "  Plain Output:    %v\n", cfg.Plain)
	fmt.Fprintf(out, "  Request Timeout: %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFilePath())

	fmt.Fprintln(out, "  Benchmark:")
	fmt.Fprintf(out, "    Prompt:        %q\n", cfg.Benchmark.Prompt)
	fmt.Fprintf(out, "    Runs:          %d\n", cfg.Benchmark.Runs)
	fmt.Fprintf(out, "    Max Tokens:    %d\n", cfg.Benchmark.MaxTokens)
	fmt.Fprintf(out, "    Temperature:   %g\n", cfg.Benchmark.Temperature)
	fmt.Fprintf(out, "    Output:        %s\n", cfg.Benchmark.Output)

	if len(cfg.Hosts) == 0 {
		fmt.Fprintln(out, "  Hosts:           (none configured)")
		return
	}
	fmt.Fprintln(out, "  Hosts:")
	for _, host := range cfg.Hosts {
		model := host.Model
		if model == "" {
			model = "-"
		}
		fmt.Fprintf(out, "    %-16s %-10s %-24s model=%s\n", host.Name, host.Type, host.URL, model)
	}
}
