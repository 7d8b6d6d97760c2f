package ai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildShipmentJSONSchema returns a JSON-Schema (draft 2020-12 subset) as
// a generic map. It is sent to the model as a structured-output constraint
// and used locally to validate what comes back.
func BuildShipmentJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"text":       map[string]any{"type": "string"},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 100.0},
			"fields": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"code":         map[string]any{"type": "string"},
					"sender_name":  map[string]any{"type": "string"},
					"phone_number": map[string]any{"type": "string"},
					"province":     map[string]any{"type": "string"},
					"price":        map[string]any{"type": "string"},
					"company_name": map[string]any{"type": "string"},
				},
			},
		},
		"required": []string{"text"},
	}
}

// ValidateJSONAgainstSchema validates data against schemaMap.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
