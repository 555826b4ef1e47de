// Package llm abstracts the chat-completion capability behind a single
// interface. The engine never sees which vendor backs it; config selects an
// API-key remote provider or an OpenAI-compatible local endpoint.
package llm

import (
	"context"
	"fmt"

	"github.com/stellarlinkco/lorewright/internal/session"
)

// Client is the single capability the decision engine needs.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ClientFunc adapts a function to the Client interface. Tests use this for
// scripted completions.
type ClientFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

func (f ClientFunc) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}

// New builds a client from session credentials. Provider "openai" covers
// both the hosted API and OpenAI-compatible local endpoints (via BaseURL);
// anything else defaults to Anthropic.
func New(cfg session.LLMConfig) (Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm: model is empty")
	}
	switch cfg.Provider {
	case "openai":
		return newOpenAI(cfg)
	case "", "anthropic":
		return newAnthropic(cfg)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
