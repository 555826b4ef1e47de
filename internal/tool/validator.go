package tool

import (
	"encoding/json"
	"fmt"
)

// ValidateParams checks params against a schema: every required parameter
// must be present, and every provided parameter named in the schema must have
// the declared type. Unknown parameters pass through untouched; tools decide
// whether to use them.
func ValidateParams(params map[string]any, schema *ParameterSchema) error {
	if schema == nil {
		return nil
	}
	if params == nil {
		params = map[string]any{}
	}
	for _, name := range schema.Required {
		if _, ok := params[name]; !ok {
			return fmt.Errorf("missing required parameter: %s", name)
		}
	}
	for name, prop := range schema.Properties {
		value, ok := params[name]
		if !ok || value == nil {
			continue
		}
		if err := validateType(value, prop.Type); err != nil {
			return fmt.Errorf("parameter %s: %w", name, err)
		}
	}
	return nil
}

func validateType(value any, expected string) error {
	switch expected {
	case "string":
		if _, ok := value.(string); ok {
			return nil
		}
	case "number":
		if isNumber(value) {
			return nil
		}
	case "boolean":
		if _, ok := value.(bool); ok {
			return nil
		}
	case "object":
		if _, ok := value.(map[string]any); ok {
			return nil
		}
	case "array":
		// A bare string is allowed here; tools coerce delimiter-joined
		// strings into lists themselves.
		switch value.(type) {
		case []any, []string, string:
			return nil
		}
	case "":
		return nil
	default:
		return fmt.Errorf("unsupported schema type %q", expected)
	}
	return fmt.Errorf("expected %s but got %T", expected, value)
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case float32, float64:
		return true
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	}
	return false
}
