package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateParams_NilSchemaAcceptsAnything(t *testing.T) {
	assert.NoError(t, ValidateParams(map[string]any{"x": 1}, nil))
	assert.NoError(t, ValidateParams(nil, nil))
}

func TestValidateParams_RequiredMissing(t *testing.T) {
	schema := &ParameterSchema{
		Type:       "object",
		Properties: map[string]*PropertySchema{"question": {Type: "string"}},
		Required:   []string{"question"},
	}

	err := ValidateParams(map[string]any{}, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question")

	assert.NoError(t, ValidateParams(map[string]any{"question": "hi"}, schema))
}

func TestValidateParams_TypeChecks(t *testing.T) {
	schema := &ParameterSchema{
		Type: "object",
		Properties: map[string]*PropertySchema{
			"name":     {Type: "string"},
			"count":    {Type: "number"},
			"finished": {Type: "boolean"},
			"keys":     {Type: "array"},
			"extra":    {Type: "object"},
		},
	}

	cases := []struct {
		name   string
		params map[string]any
		ok     bool
	}{
		{"all valid", map[string]any{
			"name": "x", "count": 3.0, "finished": true,
			"keys": []any{"a"}, "extra": map[string]any{"k": "v"},
		}, true},
		{"int as number", map[string]any{"count": 3}, true},
		{"string array", map[string]any{"keys": []string{"a"}}, true},
		{"string as number", map[string]any{"count": "3"}, false},
		{"number as string", map[string]any{"name": 3}, false},
		{"joined string as array", map[string]any{"keys": "a,b"}, true},
		{"number as array", map[string]any{"keys": 7}, false},
		{"bool as object", map[string]any{"extra": true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateParams(tc.params, schema)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateParams_UnknownParamsPass(t *testing.T) {
	schema := &ParameterSchema{
		Type:       "object",
		Properties: map[string]*PropertySchema{"name": {Type: "string"}},
	}
	assert.NoError(t, ValidateParams(map[string]any{"name": "x", "stray": 42}, schema))
}

func TestValidateParams_NilValueSkipsTypeCheck(t *testing.T) {
	schema := &ParameterSchema{
		Type:       "object",
		Properties: map[string]*PropertySchema{"name": {Type: "string"}},
	}
	assert.NoError(t, ValidateParams(map[string]any{"name": nil}, schema))
}
