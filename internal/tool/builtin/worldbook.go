package toolbuiltin

import (
	"context"
	"fmt"
	"strings"

	"github.com/stellarlinkco/lorewright/internal/card"
	"github.com/stellarlinkco/lorewright/internal/session"
	"github.com/stellarlinkco/lorewright/internal/tool"
)

// minStructuralContentLen is the smallest accepted content length for the
// three constant worldbook entries, markup tags included.
const minStructuralContentLen = 50

// structuralSpec fixes the per-kind wiring of the three constant entry tools.
type structuralSpec struct {
	kind        tool.Kind
	entry       card.EntryKind
	name        string
	tag         string
	description string
}

var structuralSpecs = map[tool.Kind]structuralSpec{
	tool.KindStatus: {
		kind:  tool.KindStatus,
		entry: card.EntryStatus,
		name:  "Worldbook: Status",
		tag:   "status",
		description: `Write the single Status worldbook entry: a live status panel template for
the character (stats, mood, location, time). Content must be wrapped in
<status>...</status> tags. Requires the character card to be complete first.
Calling again replaces the previous Status entry.`,
	},
	tool.KindUserSetting: {
		kind:  tool.KindUserSetting,
		entry: card.EntryUserSetting,
		name:  "Worldbook: User Setting",
		tag:   "user_setting",
		description: `Write the single UserSetting worldbook entry: who the user plays in this
world and how the world treats them. Content must be wrapped in
<user_setting>...</user_setting> tags. Requires the character card to be
complete first. Calling again replaces the previous entry.`,
	},
	tool.KindWorldView: {
		kind:  tool.KindWorldView,
		entry: card.EntryWorldView,
		name:  "Worldbook: World View",
		tag:   "world_view",
		description: `Write the single WorldView worldbook entry: the setting's lore, factions,
geography and named elements. Content must be wrapped in
<world_view>...</world_view> tags. Name the key concepts explicitly; each
named element becomes a candidate key for a supplement entry. Requires the
character card to be complete first. Calling again replaces the previous
entry.`,
	},
}

var structuralSchema = &tool.ParameterSchema{
	Type: "object",
	Properties: map[string]*tool.PropertySchema{
		"content": {Type: "string", Description: "Entry content wrapped in the matching markup tags"},
		"comment": {Type: "string", Description: "Optional short label for the entry"},
	},
	Required: []string{"content"},
}

// StructuralTool writes one of the three constant worldbook entries.
type StructuralTool struct {
	spec structuralSpec
}

func NewStatusTool() *StructuralTool { return &StructuralTool{spec: structuralSpecs[tool.KindStatus]} }
func NewUserSettingTool() *StructuralTool { return &StructuralTool{spec: structuralSpecs[tool.KindUserSetting]} }
func NewWorldViewTool() *StructuralTool { return &StructuralTool{spec: structuralSpecs[tool.KindWorldView]} }

func (t *StructuralTool) Kind() tool.Kind { return t.spec.kind }
func (t *StructuralTool) Name() string { return t.spec.name }
func (t *StructuralTool) Description() string { return t.spec.description }
func (t *StructuralTool) Schema() *tool.ParameterSchema { return structuralSchema }

func (t *StructuralTool) Execute(_ context.Context, exec *session.ExecContext, params map[string]any) (*tool.Result, error) {
	content, err := readRequiredString(params, "content")
	if err != nil {
		return tool.Fail("%v", err), nil
	}

	open := "<" + t.spec.tag + ">"
	close := "</" + t.spec.tag + ">"
	if !strings.Contains(content, open) || !strings.Contains(content, close) {
		return tool.Fail("content must contain %s...%s markup tags", open, close), nil
	}
	if len([]rune(content)) < minStructuralContentLen {
		return tool.Fail("content is too short: %d characters, need at least %d", len([]rune(content)), minStructuralContentLen), nil
	}

	comment, ok := readOptionalString(params, "comment")
	if !ok {
		comment = t.spec.name
	}

	replaced := exec.Output.Worldbook.Find(t.spec.entry) != nil
	if err := exec.Output.Worldbook.SetConstant(t.spec.entry, comment, content); err != nil {
		return nil, fmt.Errorf("set %s entry: %w", t.spec.entry, err)
	}

	verb := "Created"
	if replaced {
		verb = "Replaced"
	}
	return tool.Ok(fmt.Sprintf("%s the %s worldbook entry (%d characters).", verb, t.spec.entry, len([]rune(content)))), nil
}
