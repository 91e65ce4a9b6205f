package verify

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// buildResponseJSONSchema returns the JSON-Schema (draft 2020-12 subset) a
// verification-service response must satisfy before its status is mapped.
// Deliberately loose: only the envelope is pinned, status-specific fields
// stay open.
func buildResponseJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"status"},
	}
}

// validateResponse validates a raw response body against the envelope
// schema. Failure is a protocol-level condition, not a transport one.
func validateResponse(data []byte) error {
	b, err := json.Marshal(buildResponseJSONSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("response.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("response.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	return nil
}
