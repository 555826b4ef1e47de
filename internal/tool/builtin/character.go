package toolbuiltin

import (
	"context"
	"fmt"
	"strings"

	"github.com/stellarlinkco/lorewright/internal/session"
	"github.com/stellarlinkco/lorewright/internal/tool"
)

const characterDescription = `Create or update the character card. Accepts any subset of the core fields
(name, description, personality, scenario, first_mes, mes_example,
creator_notes, tags) plus optional alternate_greetings. Call it repeatedly to
build the card incrementally; later calls merge over earlier ones. At least
one field must be provided per call.`

var characterSchema = &tool.ParameterSchema{
	Type: "object",
	Properties: map[string]*tool.PropertySchema{
		"name":          {Type: "string", Description: "Character name"},
		"description":   {Type: "string", Description: "Physical and background description"},
		"personality":   {Type: "string", Description: "Personality traits and mannerisms"},
		"scenario":      {Type: "string", Description: "The situation the roleplay starts from"},
		"first_mes":     {Type: "string", Description: "The character's opening message"},
		"mes_example":   {Type: "string", Description: "Example dialogue exchanges"},
		"creator_notes": {Type: "string", Description: "Notes for the user about playing this character"},
		"tags": {
			Type:        "array",
			Description: "Descriptive tags; also accepts a comma-joined string",
			Items:       &tool.PropertySchema{Type: "string"},
		},
		"alternate_greetings": {
			Type:        "array",
			Description: "Optional alternative opening messages",
			Items:       &tool.PropertySchema{Type: "string"},
		},
	},
}

// CharacterTool merges card fields into the session output.
type CharacterTool struct{}

func NewCharacterTool() *CharacterTool { return &CharacterTool{} }

func (t *CharacterTool) Kind() tool.Kind { return tool.KindCharacter }
func (t *CharacterTool) Name() string { return "Character Card" }
func (t *CharacterTool) Description() string { return characterDescription }
func (t *CharacterTool) Schema() *tool.ParameterSchema { return characterSchema }

var characterTextFields = []string{
	"name", "description", "personality", "scenario",
	"first_mes", "mes_example", "creator_notes",
}

func (t *CharacterTool) Execute(_ context.Context, exec *session.ExecContext, params map[string]any) (*tool.Result, error) {
	char := &exec.Output.Character
	var updated []string

	for _, field := range characterTextFields {
		value, ok := readOptionalString(params, field)
		if !ok {
			continue
		}
		char.SetField(field, value)
		updated = append(updated, field)
	}

	if raw, ok := params["tags"]; ok && raw != nil {
		tags, err := coerceStringList(raw)
		if err != nil {
			return tool.Fail("tags: %v", err), nil
		}
		if len(tags) > 0 {
			char.Tags = tags
			updated = append(updated, "tags")
		}
	}

	if raw, ok := params["alternate_greetings"]; ok && raw != nil {
		greetings, err := coerceStringList(raw)
		if err != nil {
			return tool.Fail("alternate_greetings: %v", err), nil
		}
		if len(greetings) > 0 {
			char.AlternateGreetings = greetings
			updated = append(updated, "alternate_greetings")
		}
	}

	if len(updated) == 0 {
		return tool.Fail("character tool requires at least one field to update"), nil
	}

	missing := char.MissingFields()
	summary := fmt.Sprintf("Updated character fields: %s.", strings.Join(updated, ", "))
	if len(missing) > 0 {
		summary += fmt.Sprintf(" Still missing: %s.", strings.Join(missing, ", "))
	} else {
		summary += " All required character fields are now populated."
	}
	return tool.OkData(summary, map[string]any{
		"updated": updated,
		"missing": missing,
	}), nil
}
