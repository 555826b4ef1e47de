package toolbuiltin

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/stellarlinkco/lorewright/internal/search"
	"github.com/stellarlinkco/lorewright/internal/session"
	"github.com/stellarlinkco/lorewright/internal/tool"
)

const searchDescription = `Research reference material on the web before writing. Accepts one or more
queries; each query runs independently, so a failure on one query does not
abort the others. Results are stored in the session knowledge base and a
summary is returned.`

const searchMaxConcurrency = 4

var searchSchema = &tool.ParameterSchema{
	Type: "object",
	Properties: map[string]*tool.PropertySchema{
		"queries": {
			Type:        "array",
			Description: "Search queries to run; also accepts a single string in 'query'",
			Items:       &tool.PropertySchema{Type: "string"},
		},
		"query": {Type: "string", Description: "A single search query"},
	},
}

// SearchTool fans queries out to the external search capability and appends
// the hits to the session knowledge base.
type SearchTool struct {
	client search.Client
}

func NewSearchTool(client search.Client) *SearchTool {
	if client == nil {
		client = search.Unconfigured()
	}
	return &SearchTool{client: client}
}

func (t *SearchTool) Kind() tool.Kind { return tool.KindSearch }
func (t *SearchTool) Name() string { return "Web Search" }
func (t *SearchTool) Description() string { return searchDescription }
func (t *SearchTool) Schema() *tool.ParameterSchema { return searchSchema }

func (t *SearchTool) Execute(ctx context.Context, exec *session.ExecContext, params map[string]any) (*tool.Result, error) {
	queries, err := collectQueries(params)
	if err != nil {
		return tool.Fail("%v", err), nil
	}

	type queryOutcome struct {
		query   string
		results []search.Result
		err     error
	}
	outcomes := make([]queryOutcome, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(searchMaxConcurrency)
	for i, q := range queries {
		g.Go(func() error {
			results, err := t.client.Search(gctx, q)
			outcomes[i] = queryOutcome{query: q, results: results, err: err}
			// Per-query failures are reported, never propagated.
			return nil
		})
	}
	_ = g.Wait()

	var b strings.Builder
	total := 0
	failures := 0
	for _, out := range outcomes {
		if out.err != nil {
			failures++
			fmt.Fprintf(&b, "Query %q failed: %v\n", out.query, out.err)
			continue
		}
		fmt.Fprintf(&b, "Query %q returned %d results:\n", out.query, len(out.results))
		for _, hit := range out.results {
			exec.AppendKnowledge(session.KnowledgeEntry{
				Source:  hit.Title,
				Content: hit.Content,
				URL:     hit.URL,
				Score:   hit.Score,
			})
			total++
			fmt.Fprintf(&b, "- %s (%s)\n", hit.Title, hit.URL)
		}
	}

	if failures == len(queries) {
		return tool.Fail("all %d search queries failed:\n%s", len(queries), strings.TrimSpace(b.String())), nil
	}

	summary := fmt.Sprintf("Stored %d knowledge entries from %d queries (%d failed).\n%s",
		total, len(queries), failures, strings.TrimSpace(b.String()))
	return tool.OkData(strings.TrimSpace(summary), map[string]any{
		"entries":  total,
		"failures": failures,
	}), nil
}

func collectQueries(params map[string]any) ([]string, error) {
	var queries []string
	if raw, ok := params["queries"]; ok && raw != nil {
		list, err := coerceStringList(raw)
		if err != nil {
			return nil, fmt.Errorf("queries: %v", err)
		}
		queries = list
	}
	if q, ok := readOptionalString(params, "query"); ok {
		queries = append(queries, q)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("search requires 'queries' or 'query'")
	}
	return queries, nil
}
