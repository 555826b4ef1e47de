// Package decision turns the current session state into the next loop
// action by asking the language model and defensively parsing its answer.
package decision

import (
	"context"
	"fmt"

	"github.com/stellarlinkco/lorewright/internal/llm"
	"github.com/stellarlinkco/lorewright/internal/session"
	"github.com/stellarlinkco/lorewright/internal/tool"
)

// Action selects what the loop does next.
type Action string

const (
	ActionUseTool  Action = "use_tool"
	ActionAskUser  Action = "ask_user"
	ActionComplete Action = "complete_task"
	ActionClarify  Action = "request_clarification"
)

func validAction(a Action) bool {
	switch a {
	case ActionUseTool, ActionAskUser, ActionComplete, ActionClarify:
		return true
	}
	return false
}

// Decision is the structured output of one engine invocation.
type Decision struct {
	Action     Action         `json:"action"`
	Tool       string         `json:"tool,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Reasoning  string         `json:"reasoning,omitempty"`
	Question   string         `json:"question,omitempty"`
	Finished   bool           `json:"finished,omitempty"`
}

// Fallback is the safe default substituted whenever the model's reply cannot
// be parsed. It always lets the loop terminate.
func Fallback() *Decision {
	return &Decision{
		Action:    ActionComplete,
		Finished:  true,
		Reasoning: "fallback: unparseable decision",
	}
}

// Engine asks the chat-completion capability what should happen next.
type Engine struct {
	client   llm.Client
	registry *tool.Registry
}

func NewEngine(client llm.Client, registry *tool.Registry) (*Engine, error) {
	if client == nil {
		return nil, fmt.Errorf("decision: llm client is nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("decision: tool registry is nil")
	}
	return &Engine{client: client, registry: registry}, nil
}

// Next requests one decision. An error here means the transport itself
// failed; a garbled reply never errors, it falls back.
func (e *Engine) Next(ctx context.Context, exec *session.ExecContext, remaining int) (*Decision, error) {
	system := buildSystemPrompt(e.registry.Declarations())
	state := buildStatePrompt(exec, remaining)

	raw, err := e.client.Complete(ctx, system, state)
	if err != nil {
		return nil, fmt.Errorf("decision request: %w", err)
	}
	return ParseOrDefault(raw), nil
}
