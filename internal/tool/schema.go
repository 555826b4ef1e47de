package tool

// ParameterSchema defines the input parameters for a tool.
type ParameterSchema struct {
	Type       string                     `json:"type"` // Always "object"
	Properties map[string]*PropertySchema `json:"properties"`
	Required   []string                   `json:"required,omitempty"`
}

// PropertySchema describes a single parameter property.
type PropertySchema struct {
	Type        string          `json:"type"` // "string", "number", "boolean", "array", "object"
	Description string          `json:"description"`
	Items       *PropertySchema `json:"items,omitempty"` // For array types
}

// Declaration is the stable tool description surface handed to the decision
// prompt: id, name, description, and the flattened parameter list.
type Declaration struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []ParamDecl `json:"parameters"`
}

// ParamDecl is one declared parameter of a tool.
type ParamDecl struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// Declare flattens a tool into its declaration record.
func Declare(t Tool) Declaration {
	decl := Declaration{
		ID:          string(t.Kind()),
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  []ParamDecl{},
	}
	schema := t.Schema()
	if schema == nil {
		return decl
	}
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}
	for _, name := range sortedKeys(schema.Properties) {
		prop := schema.Properties[name]
		decl.Parameters = append(decl.Parameters, ParamDecl{
			Name:        name,
			Type:        prop.Type,
			Required:    required[name],
			Description: prop.Description,
		})
	}
	return decl
}
