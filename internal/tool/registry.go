package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stellarlinkco/lorewright/internal/session"
)

// Registry keeps the mapping between tool kinds and implementations. It is
// built once at process start and read-mostly afterwards; registering a kind
// twice replaces the earlier tool (startup registration is idempotent).
type Registry struct {
	mu    sync.RWMutex
	tools map[Kind]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[Kind]Tool)}
}

// Register inserts a tool, replacing any previous tool under the same kind.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool is nil")
	}
	if t.Kind() == "" {
		return fmt.Errorf("tool kind is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Kind()] = t
	return nil
}

// Get fetches a tool by kind.
func (r *Registry) Get(kind Kind) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[kind]
	if !ok {
		return nil, fmt.Errorf("tool %s not found", kind)
	}
	return t, nil
}

// List produces a snapshot of all registered tools, ordered by kind so the
// decision prompt stays stable across runs.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind() < out[j].Kind() })
	return out
}

// Declarations returns the declaration records for every registered tool.
func (r *Registry) Declarations() []Declaration {
	tools := r.List()
	decls := make([]Declaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, Declare(t))
	}
	return decls
}

// Execute runs a registered tool after schema validation. Validation
// failures come back as a failed Result; only the tool's own internal errors
// surface as error.
func (r *Registry) Execute(ctx context.Context, exec *session.ExecContext, kind Kind, params map[string]any) (*Result, error) {
	t, err := r.Get(kind)
	if err != nil {
		return Fail("%v", err), nil
	}
	if err := ValidateParams(params, t.Schema()); err != nil {
		return Fail("tool %s validation failed: %v", kind, err), nil
	}
	return t.Execute(ctx, exec, params)
}

func sortedKeys(props map[string]*PropertySchema) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
