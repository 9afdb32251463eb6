// internal/appconfig/schema.go
package appconfig

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// configSchema describes the shape of the configuration file. Validation runs
// before unmarshaling so a malformed config is reported field-by-field instead
// of surfacing later as a zero value.
var configSchema = map[string]any{
	"type":     "object",
	"required": []any{"hosts"},
	"properties": map[string]any{
		"hosts": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"name", "url", "type"},
				"properties": map[string]any{
					"name":              map[string]any{"type": "string", "minLength": 1},
					"url":               map[string]any{"type": "string", "minLength": 1},
					"type":              map[string]any{"type": "string", "enum": []any{"ollama", "llamacpp", "llama.cpp"}},
					"model":             map[string]any{"type": "string"},
					"parameterTemplate": map[string]any{"type": "string"},
					"parameters": map[string]any{
						"type": "object",
					},
				},
			},
		},
		"debug":     map[string]any{"type": "boolean"},
		"synthetic": map[string]any{"type": "boolean"},
		"strict":    map[string]any{"type": "boolean"},
		"plain":     map[string]any{"type": "boolean"},
		"timeout":   map[string]any{"type": "integer", "minimum": 0},
		"logFile":   map[string]any{"type": "string"},
		"benchmark": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prompt":      map[string]any{"type": "string"},
				"runs":        map[string]any{"type": "integer", "minimum": 0},
				"maxTokens":   map[string]any{"type": "integer", "minimum": 0},
				"temperature": map[string]any{"type": "number", "minimum": 0},
				"output":      map[string]any{"type": "string"},
			},
		},
	},
}

// ValidateBytes checks raw config JSON against the configuration schema.
func ValidateBytes(data []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(configSchema)
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("config failed validation: %s", strings.Join(details, "; "))
}
