// Package search provides the external web-search capability used by the
// research tool. The engine only depends on the Client interface; the Brave
// client is the shipped implementation.
package search

import (
	"context"
	"errors"
)

// Result describes a single search hit.
type Result struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"` // relevance in [0,100]
}

// Client executes one query against an external search service.
type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// ErrNotConfigured is returned when no search credential is available. The
// search tool converts it into a clean tool-level failure.
var ErrNotConfigured = errors.New("search is not configured: missing API key")

type unconfigured struct{}

func (unconfigured) Search(context.Context, string) ([]Result, error) {
	return nil, ErrNotConfigured
}

// Unconfigured returns a client that always fails with ErrNotConfigured.
func Unconfigured() Client { return unconfigured{} }
