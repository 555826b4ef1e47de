package toolbuiltin

import (
	"context"
	"strings"

	"github.com/stellarlinkco/lorewright/internal/session"
	"github.com/stellarlinkco/lorewright/internal/tool"
)

const completeDescription = `Declare whether the generation session is finished. Pass finished=true only
when the character card and the worldbook both satisfy their requirements, or
when the user has asked to stop.`

var completeSchema = &tool.ParameterSchema{
	Type: "object",
	Properties: map[string]*tool.PropertySchema{
		"finished": {Type: "boolean", Description: "True when the session is ready to terminate"},
	},
	Required: []string{"finished"},
}

// CompleteTool reports whether the session is ready to terminate.
type CompleteTool struct{}

func NewCompleteTool() *CompleteTool { return &CompleteTool{} }

func (t *CompleteTool) Kind() tool.Kind { return tool.KindComplete }
func (t *CompleteTool) Name() string { return "Complete" }
func (t *CompleteTool) Description() string { return completeDescription }
func (t *CompleteTool) Schema() *tool.ParameterSchema { return completeSchema }

func (t *CompleteTool) Execute(_ context.Context, exec *session.ExecContext, params map[string]any) (*tool.Result, error) {
	finished, err := coerceBool(params["finished"])
	if err != nil {
		return tool.Fail("finished: %v", err), nil
	}

	if !finished {
		return tool.OkData("Session is not finished; continue working.", map[string]any{"finished": false}), nil
	}

	output := "Session declared finished."
	if !exec.Output.Complete() {
		var reasons []string
		if missing := exec.Output.Character.MissingFields(); len(missing) > 0 {
			reasons = append(reasons, "missing character fields: "+strings.Join(missing, ", "))
		}
		if err := exec.Output.Worldbook.Validate(); err != nil {
			reasons = append(reasons, err.Error())
		}
		if len(reasons) > 0 {
			output += " Warning: " + strings.Join(reasons, "; ") + "."
		}
	}
	return tool.OkData(output, map[string]any{"finished": true}), nil
}
