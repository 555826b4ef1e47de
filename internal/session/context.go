package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/stellarlinkco/lorewright/internal/card"
)

// LLMConfig carries the model credentials a session was created with.
type LLMConfig struct {
	Provider     string  `json:"provider"` // "anthropic" (default) or "openai"
	Model        string  `json:"model"`
	APIKey       string  `json:"apiKey"`
	BaseURL      string  `json:"baseUrl,omitempty"`
	Temperature  float64 `json:"temperature"`
	SearchAPIKey string  `json:"searchApiKey,omitempty"`
}

// ResearchState tracks the plan queue and accumulated evidence for one
// session.
type ResearchState struct {
	Tasks     []*PlanTask      `json:"tasks"`
	Completed []string         `json:"completed"` // descriptions of finished tasks
	Knowledge []KnowledgeEntry `json:"knowledge"`
}

// ExecContext is the mutable state bag threaded through every tool call of a
// session. The iteration loop owns it exclusively; tools may only append to
// the collections their declared effect covers.
type ExecContext struct {
	SessionID string
	Output    *card.GenerationOutput
	Research  ResearchState
	History   []Message
	LLM       LLMConfig
}

func NewExecContext(sessionID string, cfg LLMConfig) *ExecContext {
	return &ExecContext{
		SessionID: sessionID,
		Output:    card.NewGenerationOutput(),
		LLM:       cfg,
	}
}

// AppendMessage adds a transcript entry to the in-context history.
func (c *ExecContext) AppendMessage(role, content string) Message {
	msg := Message{Role: role, Content: content, CreatedAt: time.Now()}
	c.History = append(c.History, msg)
	return msg
}

// AppendKnowledge stores one evidence record, assigning an id when absent and
// clamping the relevance score into [0,100].
func (c *ExecContext) AppendKnowledge(entry KnowledgeEntry) KnowledgeEntry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Score < 0 {
		entry.Score = 0
	}
	if entry.Score > 100 {
		entry.Score = 100
	}
	c.Research.Knowledge = append(c.Research.Knowledge, entry)
	return entry
}

// Task returns the planned task with the given id, or nil.
func (c *ExecContext) Task(id string) *PlanTask {
	for _, t := range c.Research.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// TaskForTool returns the first pending or executing task that targets the
// given tool, or nil. The loop uses it to tie a use_tool decision back to the
// plan so dependency ordering can be checked.
func (c *ExecContext) TaskForTool(tool string) *PlanTask {
	for _, t := range c.Research.Tasks {
		if t.Tool == tool && (t.Status == TaskPending || t.Status == TaskExecuting) {
			return t
		}
	}
	return nil
}

// UnmetDependencies lists the dependency ids of a task that are not yet
// completed.
func (c *ExecContext) UnmetDependencies(task *PlanTask) []string {
	var unmet []string
	for _, dep := range task.DependsOn {
		d := c.Task(dep)
		if d == nil || d.Status != TaskCompleted {
			unmet = append(unmet, dep)
		}
	}
	return unmet
}

// CompleteTask marks a task finished and records its description.
func (c *ExecContext) CompleteTask(task *PlanTask) {
	task.Status = TaskCompleted
	if task.Description != "" {
		c.Research.Completed = append(c.Research.Completed, task.Description)
	}
}
