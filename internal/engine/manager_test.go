package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellarlinkco/lorewright/internal/decision"
	"github.com/stellarlinkco/lorewright/internal/session"
	"github.com/stellarlinkco/lorewright/internal/tool"
)

func scriptedFactory(script []*decision.Decision) DeciderFactory {
	return func(session.LLMConfig, *tool.Registry) (Decider, error) {
		return &scriptedDecider{script: script}, nil
	}
}

func newTestManager(t *testing.T, opts *ManagerOptions) (*Manager, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	mgr, err := NewManager(store, nil, opts)
	require.NoError(t, err)
	return mgr, store
}

func TestManagerCreateAndGet(t *testing.T) {
	mgr, _ := newTestManager(t, &ManagerOptions{
		Decider: scriptedFactory(fullRunScript()),
	})

	eng, err := mgr.Create(context.Background(), "a knight", session.LLMConfig{})
	require.NoError(t, err)

	got, err := mgr.Get(eng.SessionID())
	require.NoError(t, err)
	assert.Same(t, eng, got)

	_, err = mgr.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerCreate_RunsSession(t *testing.T) {
	mgr, store := newTestManager(t, &ManagerOptions{
		Decider: scriptedFactory(fullRunScript()),
	})

	eng, err := mgr.Create(context.Background(), "a knight", session.LLMConfig{})
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), "a knight of the mist roads")
	require.NoError(t, err)
	require.True(t, res.Success, res.Err)

	sess, err := store.GetSession(context.Background(), eng.SessionID())
	require.NoError(t, err)
	assert.Equal(t, "a knight", sess.Title)
	assert.Equal(t, session.StatusCompleted, sess.Status)
}

func TestManagerAttach_RestoresPausedSession(t *testing.T) {
	script := append([]*decision.Decision{
		useTool(tool.KindAskUser, map[string]any{"question": "What genre?"}),
	}, fullRunScript()...)

	store := session.NewMemoryStore()
	mgr, err := NewManager(store, nil, &ManagerOptions{Decider: scriptedFactory(script)})
	require.NoError(t, err)

	eng, err := mgr.Create(context.Background(), "a knight", session.LLMConfig{})
	require.NoError(t, err)
	res, err := eng.Run(context.Background(), "a knight")
	require.NoError(t, err)
	require.True(t, res.NeedsUserInput)
	id := eng.SessionID()

	// Simulate a restart: drop the live engine, attach from the store.
	mgr.Delete(id)
	mgr2, err := NewManager(store, nil, &ManagerOptions{Decider: scriptedFactory(fullRunScript())})
	require.NoError(t, err)

	restored, err := mgr2.Attach(context.Background(), id, session.LLMConfig{})
	require.NoError(t, err)
	assert.Equal(t, session.StatusWaitingUser, restored.Status())

	res, err = restored.Resume(context.Background(), "fantasy")
	require.NoError(t, err)
	assert.True(t, res.Success, res.Err)
}

func TestManagerAttach_UnknownSession(t *testing.T) {
	mgr, _ := newTestManager(t, &ManagerOptions{Decider: scriptedFactory(fullRunScript())})
	_, err := mgr.Attach(context.Background(), "nope", session.LLMConfig{})
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestManagerAttach_ReturnsLiveEngine(t *testing.T) {
	mgr, _ := newTestManager(t, &ManagerOptions{Decider: scriptedFactory(fullRunScript())})

	eng, err := mgr.Create(context.Background(), "a knight", session.LLMConfig{})
	require.NoError(t, err)

	same, err := mgr.Attach(context.Background(), eng.SessionID(), session.LLMConfig{})
	require.NoError(t, err)
	assert.Same(t, eng, same)
}

func TestManagerPrune_DropsOldTerminalEngines(t *testing.T) {
	mgr, _ := newTestManager(t, &ManagerOptions{
		Decider:   scriptedFactory([]*decision.Decision{decision.Fallback()}),
		Retention: time.Millisecond,
	})

	eng, err := mgr.Create(context.Background(), "done", session.LLMConfig{})
	require.NoError(t, err)
	_, err = eng.Run(context.Background(), "anything")
	require.NoError(t, err)
	require.True(t, eng.Status().Terminal())
	id := eng.SessionID()

	// First pass marks the engine, second pass removes it once retention
	// has elapsed.
	mgr.prune()
	_, err = mgr.Get(id)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	mgr.prune()
	_, err = mgr.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerPrune_KeepsActiveEngines(t *testing.T) {
	script := []*decision.Decision{
		useTool(tool.KindAskUser, map[string]any{"question": "What genre?"}),
	}
	mgr, _ := newTestManager(t, &ManagerOptions{
		Decider:   scriptedFactory(script),
		Retention: time.Millisecond,
	})

	eng, err := mgr.Create(context.Background(), "waiting", session.LLMConfig{})
	require.NoError(t, err)
	res, err := eng.Run(context.Background(), "a knight")
	require.NoError(t, err)
	require.True(t, res.NeedsUserInput)

	mgr.prune()
	time.Sleep(5 * time.Millisecond)
	mgr.prune()

	_, err = mgr.Get(eng.SessionID())
	assert.NoError(t, err, "waiting sessions must survive the janitor")
}

func TestManagerRelease_MarksForPrune(t *testing.T) {
	mgr, _ := newTestManager(t, &ManagerOptions{
		Decider:   scriptedFactory([]*decision.Decision{decision.Fallback()}),
		Retention: time.Millisecond,
	})

	eng, err := mgr.Create(context.Background(), "done", session.LLMConfig{})
	require.NoError(t, err)
	_, err = eng.Run(context.Background(), "anything")
	require.NoError(t, err)

	mgr.Release(eng.SessionID())
	time.Sleep(5 * time.Millisecond)
	mgr.prune()

	_, err = mgr.Get(eng.SessionID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
