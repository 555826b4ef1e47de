package tool

import (
	"context"

	"github.com/stellarlinkco/lorewright/internal/session"
)

// Kind identifies a tool. The set of kinds is closed; dispatch goes through
// the registry rather than reflection.
type Kind string

const (
	KindCharacter   Kind = "character"
	KindStatus      Kind = "worldbook_status"
	KindUserSetting Kind = "worldbook_user_setting"
	KindWorldView   Kind = "worldbook_world_view"
	KindSupplement  Kind = "worldbook_supplement"
	KindSearch      Kind = "search"
	KindAskUser     Kind = "ask_user"
	KindComplete    Kind = "complete"
)

// Kinds enumerates every tool kind in registration order.
var Kinds = []Kind{
	KindCharacter,
	KindStatus,
	KindUserSetting,
	KindWorldView,
	KindSupplement,
	KindSearch,
	KindAskUser,
	KindComplete,
}

// Tool is an executable capability exposed to the decision loop.
type Tool interface {
	// Kind returns the unique identifier of the tool.
	Kind() Kind

	// Name returns a short human readable title.
	Name() string

	// Description is consumed verbatim by the decision prompt, so it doubles
	// as the model-readable capability description.
	Description() string

	// Schema describes the tool parameters. Nil means no input expected.
	Schema() *ParameterSchema

	// Execute runs the tool against the session's execution context with
	// already schema-validated parameters. Semantic failures come back as a
	// failed Result, not as an error; a non-nil error means the tool's own
	// logic broke.
	Execute(ctx context.Context, exec *session.ExecContext, params map[string]any) (*Result, error)
}
