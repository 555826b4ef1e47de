package toolbuiltin

import (
	"context"
	"fmt"
	"strings"

	"github.com/stellarlinkco/lorewright/internal/card"
	"github.com/stellarlinkco/lorewright/internal/session"
	"github.com/stellarlinkco/lorewright/internal/tool"
)

const supplementDescription = `Add one keyed supplement worldbook entry expanding on a named element of the
WorldView entry (a faction, place, person, or concept). keys are the trigger
words taken from the WorldView content. A complete worldbook needs at least
five supplements. Requires the WorldView entry to exist first.`

var supplementSchema = &tool.ParameterSchema{
	Type: "object",
	Properties: map[string]*tool.PropertySchema{
		"keys": {
			Type:        "array",
			Description: "Non-empty list of trigger keywords from the WorldView content",
			Items:       &tool.PropertySchema{Type: "string"},
		},
		"content": {Type: "string", Description: "Free-text lore expanding the keyed element"},
		"comment": {Type: "string", Description: "Short label naming the element"},
		"insert_order": {
			Type:        "number",
			Description: "Optional ordering value; clamped to a minimum of 10",
		},
	},
	Required: []string{"keys", "content", "comment"},
}

// SupplementTool appends keyed supplement entries to the worldbook.
type SupplementTool struct{}

func NewSupplementTool() *SupplementTool { return &SupplementTool{} }

func (t *SupplementTool) Kind() tool.Kind { return tool.KindSupplement }
func (t *SupplementTool) Name() string { return "Worldbook: Supplement" }
func (t *SupplementTool) Description() string { return supplementDescription }
func (t *SupplementTool) Schema() *tool.ParameterSchema { return supplementSchema }

func (t *SupplementTool) Execute(_ context.Context, exec *session.ExecContext, params map[string]any) (*tool.Result, error) {
	keys, err := coerceStringList(params["keys"])
	if err != nil || len(keys) == 0 {
		return tool.Fail("requires 'keys' parameter as a non-empty array"), nil
	}

	content, err := readRequiredString(params, "content")
	if err != nil {
		return tool.Fail("%v", err), nil
	}
	comment, err := readRequiredString(params, "comment")
	if err != nil {
		return tool.Fail("%v", err), nil
	}

	insertOrder := card.MinSupplementOrder
	if raw, ok := params["insert_order"]; ok && raw != nil {
		n, err := coerceInt(raw)
		if err != nil {
			return tool.Fail("insert_order: %v", err), nil
		}
		insertOrder = n // AddSupplement clamps to the floor
	}

	entry, err := exec.Output.Worldbook.AddSupplement(keys, comment, content, insertOrder)
	if err != nil {
		return tool.Fail("%v", err), nil
	}

	total := exec.Output.Worldbook.Count(card.EntrySupplement)
	summary := fmt.Sprintf("Added supplement %q (keys: %s, insert_order %d). %d of %d minimum supplements present.",
		comment, strings.Join(keys, ", "), entry.InsertOrder, total, card.MinSupplements)
	return tool.OkData(summary, map[string]any{
		"uid":         entry.UID,
		"supplements": total,
	}), nil
}
