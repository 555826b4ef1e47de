package toolbuiltin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskUserTool_QuestionOnly(t *testing.T) {
	res, err := NewAskUserTool().Execute(context.Background(), newExec(), map[string]any{
		"question": "What genre?",
	})
	require.NoError(t, err)
	require.True(t, res.Success, res.Err)
	assert.Equal(t, "What genre?", res.Output)

	data, ok := res.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "What genre?", data["question"])
	assert.Equal(t, true, data["waitingForUser"])
}

func TestAskUserTool_WithOptions(t *testing.T) {
	res, err := NewAskUserTool().Execute(context.Background(), newExec(), map[string]any{
		"question": "What genre?",
		"options":  []any{"fantasy", "sci-fi", "noir"},
	})
	require.NoError(t, err)
	require.True(t, res.Success, res.Err)
	assert.Contains(t, res.Output, "Suggestions:")
	assert.Contains(t, res.Output, "1. fantasy")
	assert.Contains(t, res.Output, "3. noir")
}

func TestAskUserTool_RejectsSingleOption(t *testing.T) {
	res, err := NewAskUserTool().Execute(context.Background(), newExec(), map[string]any{
		"question": "What genre?",
		"options":  []any{"fantasy"},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Err, "2-3")
}

func TestAskUserTool_RejectsTooManyOptions(t *testing.T) {
	res, err := NewAskUserTool().Execute(context.Background(), newExec(), map[string]any{
		"question": "What genre?",
		"options":  []any{"a", "b", "c", "d"},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestAskUserTool_RequiresQuestion(t *testing.T) {
	res, err := NewAskUserTool().Execute(context.Background(), newExec(), map[string]any{})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Err, "question")
}
