package toolbuiltin

import (
	"context"
	"fmt"
	"strings"

	"github.com/stellarlinkco/lorewright/internal/session"
	"github.com/stellarlinkco/lorewright/internal/tool"
)

const askUserDescription = `Ask the user a question and pause until they answer. Use this to gather
preferences (genre, tone, names) or to resolve ambiguity before writing.
You may offer 2-3 suggested answers in 'options'.`

var askUserSchema = &tool.ParameterSchema{
	Type: "object",
	Properties: map[string]*tool.PropertySchema{
		"question": {Type: "string", Description: "The question to ask the user"},
		"options": {
			Type:        "array",
			Description: "Optional 2-3 suggested answers",
			Items:       &tool.PropertySchema{Type: "string"},
		},
	},
	Required: []string{"question"},
}

// AskUserTool formats a question for the user and flags the session as
// waiting. The loop interprets the flag and suspends.
type AskUserTool struct{}

func NewAskUserTool() *AskUserTool { return &AskUserTool{} }

func (t *AskUserTool) Kind() tool.Kind { return tool.KindAskUser }
func (t *AskUserTool) Name() string { return "Ask User" }
func (t *AskUserTool) Description() string { return askUserDescription }
func (t *AskUserTool) Schema() *tool.ParameterSchema { return askUserSchema }

func (t *AskUserTool) Execute(_ context.Context, _ *session.ExecContext, params map[string]any) (*tool.Result, error) {
	question, err := readRequiredString(params, "question")
	if err != nil {
		return tool.Fail("%v", err), nil
	}

	var options []string
	if raw, ok := params["options"]; ok && raw != nil {
		options, err = coerceStringList(raw)
		if err != nil {
			return tool.Fail("options: %v", err), nil
		}
		if len(options) > 0 && (len(options) < 2 || len(options) > 3) {
			return tool.Fail("options must contain 2-3 suggested answers, got %d", len(options)), nil
		}
	}

	var b strings.Builder
	b.WriteString(question)
	if len(options) > 0 {
		b.WriteString("\n\nSuggestions:")
		for i, opt := range options {
			fmt.Fprintf(&b, "\n%d. %s", i+1, opt)
		}
	}

	return tool.OkData(b.String(), map[string]any{
		"question":       question,
		"options":        options,
		"waitingForUser": true,
	}), nil
}
