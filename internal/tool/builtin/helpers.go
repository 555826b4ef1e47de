// Package toolbuiltin holds the concrete tools the decision loop can invoke.
package toolbuiltin

import (
	"errors"
	"fmt"
	"strings"
)

func readRequiredString(params map[string]any, key string) (string, error) {
	raw, ok := params[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	value, err := coerceString(raw)
	if err != nil {
		return "", fmt.Errorf("%s must be string: %w", key, err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}
	return value, nil
}

func readOptionalString(params map[string]any, key string) (string, bool) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return "", false
	}
	value, err := coerceString(raw)
	if err != nil {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

func coerceString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("got %T", value)
	}
}

// coerceStringList accepts a JSON array of strings or a delimiter-joined
// string and normalises to a trimmed, empty-free slice.
func coerceStringList(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return trimList(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, err := coerceString(item)
			if err != nil {
				return nil, fmt.Errorf("array contains non-string value: %w", err)
			}
			out = append(out, s)
		}
		return trimList(out), nil
	case string:
		return trimList(strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ';' || r == '，'
		})), nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("expected array or string, got %T", value)
	}
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func coerceInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case float32:
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}

func coerceBool(value any) (bool, error) {
	if b, ok := value.(bool); ok {
		return b, nil
	}
	return false, errors.New("expected boolean")
}
