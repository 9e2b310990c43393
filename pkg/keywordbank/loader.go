// pkg/keywordbank/loader.go
package keywordbank

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// bankSchema validates an external weight bank file before it replaces the
// built-in defaults. A malformed bank must never silently zero the gate.
const bankSchema = `{
	"type": "object",
	"required": ["weights", "thresholds"],
	"properties": {
		"version": {"type": "string"},
		"weights": {
			"type": "object",
			"additionalProperties": {"type": "integer", "minimum": 0, "maximum": 10}
		},
		"concepts": {
			"type": "object",
			"additionalProperties": {
				"type": "array",
				"items": {"type": "string", "minLength": 1}
			}
		},
		"commonWords": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		},
		"thresholds": {
			"type": "object",
			"required": ["floor", "highConcept", "veryHigh", "defaultWeight"],
			"properties": {
				"floor": {"type": "integer", "minimum": 1},
				"highConcept": {"type": "integer", "minimum": 1},
				"veryHigh": {"type": "integer", "minimum": 1},
				"defaultWeight": {"type": "integer", "minimum": 0}
			}
		}
	}
}`

// Load reads and validates a weight bank from a JSON file.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weight bank %s: %w", path, err)
	}

	schemaLoader := gojsonschema.NewStringLoader(bankSchema)
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("weight bank validation failed to run: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("invalid weight bank %s: %v", path, msgs)
	}

	var bank Bank
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse weight bank %s: %w", path, err)
	}
	bank.buildIndexes()
	return &bank, nil
}
