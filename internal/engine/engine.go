// Package engine runs the bounded decision loop that drives one generation
// session: ask the model for a decision, execute the chosen tool, persist the
// step, repeat until the output is complete, the user is needed, or the
// iteration budget runs out.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stellarlinkco/lorewright/internal/card"
	"github.com/stellarlinkco/lorewright/internal/decision"
	"github.com/stellarlinkco/lorewright/internal/session"
	"github.com/stellarlinkco/lorewright/internal/tool"
)

const (
	// DefaultMaxIterations bounds decision rounds per session, counted
	// across suspend/resume cycles.
	DefaultMaxIterations = 15

	// DefaultCallTimeout caps one decision request plus tool execution.
	DefaultCallTimeout = 5 * time.Minute
)

var (
	ErrMaxIterations = errors.New("maximum iterations reached")
	ErrNotWaiting    = errors.New("session is not waiting for user input")
	ErrTerminal      = errors.New("session already finished")
)

// Decider produces the next decision for a session. Satisfied by
// *decision.Engine; tests substitute scripted implementations.
type Decider interface {
	Next(ctx context.Context, exec *session.ExecContext, remaining int) (*decision.Decision, error)
}

// Result is what one Run or Resume round reports back to the caller.
type Result struct {
	Success        bool
	NeedsUserInput bool
	Question       string
	Output         *card.GenerationOutput
	Err            string
}

// Options tune a single engine instance.
type Options struct {
	MaxIterations int
	CallTimeout   time.Duration
}

// Engine owns the loop for exactly one session. It is not safe for
// concurrent use; the Manager serializes access per session.
type Engine struct {
	store     session.Store
	decider   Decider
	registry  *tool.Registry
	exec      *session.ExecContext
	sessionID string

	maxIterations int
	callTimeout   time.Duration
	iterations    int
	stepOrder     int
	status        session.Status
}

// New builds an engine bound to an existing session record.
func New(store session.Store, decider Decider, registry *tool.Registry, sess *session.Session, cfg session.LLMConfig, opts *Options) (*Engine, error) {
	if store == nil || decider == nil || registry == nil {
		return nil, fmt.Errorf("engine: store, decider and registry are required")
	}
	if sess == nil {
		return nil, fmt.Errorf("engine: session is required")
	}

	e := &Engine{
		store:         store,
		decider:       decider,
		registry:      registry,
		exec:          session.NewExecContext(sess.ID, cfg),
		sessionID:     sess.ID,
		maxIterations: DefaultMaxIterations,
		callTimeout:   DefaultCallTimeout,
		iterations:    sess.Iterations,
		stepOrder:     len(sess.Steps),
		status:        sess.Status,
	}
	if opts != nil {
		if opts.MaxIterations > 0 {
			e.maxIterations = opts.MaxIterations
		}
		if opts.CallTimeout > 0 {
			e.callTimeout = opts.CallTimeout
		}
	}
	if sess.Output != nil {
		e.exec.Output = sess.Output.Clone()
	}
	e.exec.History = append(e.exec.History, sess.Messages...)
	return e, nil
}

// SessionID returns the id of the bound session.
func (e *Engine) SessionID() string { return e.sessionID }

// Status returns the last status the engine moved the session to.
func (e *Engine) Status() session.Status { return e.status }

// Output returns a copy of the current artifacts.
func (e *Engine) Output() *card.GenerationOutput { return e.exec.Output.Clone() }

// Run starts (or continues) the loop with a fresh user message.
func (e *Engine) Run(ctx context.Context, userMessage string) (*Result, error) {
	if e.status.Terminal() {
		return nil, ErrTerminal
	}
	if strings.TrimSpace(userMessage) != "" {
		e.recordMessage(ctx, "user", userMessage)
	}
	return e.loop(ctx)
}

// Resume continues a session paused on a question. The answer joins the
// transcript as a user message. Calling Resume on a session that is not
// waiting fails cleanly without touching the output.
func (e *Engine) Resume(ctx context.Context, answer string) (*Result, error) {
	if e.status != session.StatusWaitingUser {
		return nil, ErrNotWaiting
	}
	e.recordMessage(ctx, "user", answer)
	return e.loop(ctx)
}

func (e *Engine) loop(ctx context.Context) (*Result, error) {
	for {
		if e.iterations >= e.maxIterations {
			return e.fail(ctx, ErrMaxIterations.Error()), nil
		}
		e.iterations++
		e.setStatus(ctx, session.StatusThinking)

		dec, err := e.decide(ctx)
		if err != nil {
			// Transport failure. The session is done; the reason lands in
			// the transcript so a later reader can tell what happened.
			msg := fmt.Sprintf("generation stopped: the model could not be reached (%v)", err)
			e.recordMessage(ctx, "assistant", msg)
			return e.fail(ctx, msg), nil
		}
		if dec.Reasoning != "" {
			e.recordMessage(ctx, "assistant", dec.Reasoning)
		}

		switch dec.Action {
		case decision.ActionAskUser, decision.ActionClarify:
			question := strings.TrimSpace(dec.Question)
			if question == "" && dec.Action == decision.ActionAskUser {
				question = "Could you tell me more about what you want?"
			}
			return e.pause(ctx, question), nil

		case decision.ActionComplete:
			return e.complete(ctx), nil

		case decision.ActionUseTool:
			if done := e.runTool(ctx, dec); done != nil {
				return done, nil
			}
			if e.exec.Output.Complete() {
				return e.complete(ctx), nil
			}

		default:
			// Unreachable after parsing, but a stray action must not spin
			// the loop silently.
			e.recordMessage(ctx, "tool", fmt.Sprintf("unknown action %q ignored", dec.Action))
		}
	}
}

func (e *Engine) decide(ctx context.Context) (*decision.Decision, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	return e.decider.Next(callCtx, e.exec, e.maxIterations-e.iterations)
}

// runTool executes one tool decision. It returns a non-nil Result when the
// round must end (pause or completion); otherwise the loop continues.
func (e *Engine) runTool(ctx context.Context, dec *decision.Decision) *Result {
	kind := tool.Kind(dec.Tool)
	params := dec.Parameters
	if params == nil {
		params = map[string]any{}
	}

	if reason := e.orderingViolation(kind); reason != "" {
		e.recordStep(ctx, kind, params, reason, session.StepFailed)
		e.recordMessage(ctx, "tool", fmt.Sprintf("%s failed: %s", kind, reason))
		return nil
	}

	e.setStatus(ctx, session.StatusExecuting)

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	res, err := e.registry.Execute(callCtx, e.exec, kind, params)
	cancel()
	if err != nil {
		res = tool.Fail("tool %s: %v", kind, err)
	}

	if res.Success {
		e.recordStep(ctx, kind, params, res.Output, session.StepCompleted)
		e.markTaskDone(kind)
	} else {
		e.recordStep(ctx, kind, params, res.Err, session.StepFailed)
	}
	e.recordMessage(ctx, "tool", fmt.Sprintf("%s: %s", kind, res.Output))
	e.syncOutput(ctx)

	if res.Success {
		switch kind {
		case tool.KindAskUser:
			return e.pauseFromResult(ctx, res)
		case tool.KindComplete:
			if finished(res) {
				return e.complete(ctx)
			}
		}
	}
	return nil
}

// orderingViolation enforces the artifact dependency chain: the character
// card comes first, the three structural worldbook entries next, supplements
// only once a world view exists. Declared plan dependencies are checked too.
func (e *Engine) orderingViolation(kind tool.Kind) string {
	switch kind {
	case tool.KindStatus, tool.KindUserSetting, tool.KindWorldView:
		if !e.exec.Output.Character.Complete() {
			return "the character card must be complete before worldbook entries are written"
		}
	case tool.KindSupplement:
		if e.exec.Output.Worldbook.Find(card.EntryWorldView) == nil {
			return "a world view entry must exist before supplements are added"
		}
	}
	if task := e.exec.TaskForTool(string(kind)); task != nil {
		if unmet := e.exec.UnmetDependencies(task); len(unmet) > 0 {
			return fmt.Sprintf("task %q has unmet dependencies: %s", task.Description, strings.Join(unmet, ", "))
		}
	}
	return ""
}

func (e *Engine) markTaskDone(kind tool.Kind) {
	if task := e.exec.TaskForTool(string(kind)); task != nil {
		e.exec.CompleteTask(task)
	}
}

func (e *Engine) pauseFromResult(ctx context.Context, res *tool.Result) *Result {
	question := res.Output
	if data, ok := res.Data.(map[string]any); ok {
		if q, ok := data["question"].(string); ok && q != "" {
			question = q
		}
	}
	return e.pause(ctx, question)
}

func (e *Engine) pause(ctx context.Context, question string) *Result {
	e.setStatus(ctx, session.StatusWaitingUser)
	if question != "" {
		e.recordMessage(ctx, "assistant", question)
	}
	return &Result{
		NeedsUserInput: true,
		Question:       question,
		Output:         e.exec.Output.Clone(),
	}
}

// complete finishes the session. The output is never nil: even an empty
// round yields the skeleton artifacts so downstream consumers have a stable
// shape to read.
func (e *Engine) complete(ctx context.Context) *Result {
	if e.exec.Output == nil {
		e.exec.Output = card.NewGenerationOutput()
	}
	e.syncOutput(ctx)
	e.setStatus(ctx, session.StatusCompleted)
	return &Result{
		Success: true,
		Output:  e.exec.Output.Clone(),
	}
}

func (e *Engine) fail(ctx context.Context, reason string) *Result {
	e.setStatus(ctx, session.StatusFailed)
	e.syncOutput(ctx)
	return &Result{
		Output: e.exec.Output.Clone(),
		Err:    reason,
	}
}

func finished(res *tool.Result) bool {
	data, ok := res.Data.(map[string]any)
	if !ok {
		return false
	}
	done, ok := data["finished"].(bool)
	return ok && done
}

func (e *Engine) setStatus(ctx context.Context, status session.Status) {
	e.status = status
	if err := e.store.UpdateStatus(ctx, e.sessionID, status); err != nil {
		log.Printf("[engine] session %s: update status: %v", e.sessionID, err)
	}
	if err := e.store.UpdateIterations(ctx, e.sessionID, e.iterations); err != nil {
		log.Printf("[engine] session %s: update iterations: %v", e.sessionID, err)
	}
}

func (e *Engine) recordMessage(ctx context.Context, role, content string) {
	msg := e.exec.AppendMessage(role, content)
	if err := e.store.AddMessage(ctx, e.sessionID, msg); err != nil {
		log.Printf("[engine] session %s: add message: %v", e.sessionID, err)
	}
}

func (e *Engine) recordStep(ctx context.Context, kind tool.Kind, params map[string]any, output string, status session.StepStatus) {
	e.stepOrder++
	step := session.Step{
		ID:             uuid.NewString(),
		Tool:           string(kind),
		Input:          params,
		Output:         output,
		Status:         status,
		ExecutionOrder: e.stepOrder,
		CreatedAt:      time.Now(),
	}
	if err := e.store.AddStep(ctx, e.sessionID, step); err != nil {
		log.Printf("[engine] session %s: add step: %v", e.sessionID, err)
	}
}

func (e *Engine) syncOutput(ctx context.Context) {
	if err := e.store.UpdateOutput(ctx, e.sessionID, e.exec.Output); err != nil {
		log.Printf("[engine] session %s: update output: %v", e.sessionID, err)
	}
}
