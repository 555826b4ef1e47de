package session

import (
	"time"

	"github.com/stellarlinkco/lorewright/internal/card"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusIdle        Status = "IDLE"
	StatusThinking    Status = "THINKING"
	StatusExecuting   Status = "EXECUTING"
	StatusWaitingUser Status = "WAITING_FOR_USER"
	StatusCompleted   Status = "COMPLETED"
	StatusFailed      Status = "FAILED"
)

// Terminal reports whether the status is final. Terminal sessions are kept,
// not deleted; only the janitor removes their live engines.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Message is one transcript entry.
type Message struct {
	Role      string    `json:"role"` // user, assistant, tool, system
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// StepStatus is the outcome of one recorded tool execution.
type StepStatus string

const (
	StepCompleted StepStatus = "COMPLETED"
	StepFailed    StepStatus = "FAILED"
)

// Step records a single tool execution within a session.
type Step struct {
	ID             string         `json:"id"`
	Tool           string         `json:"tool"`
	Input          map[string]any `json:"input"`
	Output         string         `json:"output"`
	Status         StepStatus     `json:"status"`
	ExecutionOrder int            `json:"execution_order"`
	CreatedAt      time.Time      `json:"created_at"`
}

// TaskStatus is the lifecycle state of a planned task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskExecuting TaskStatus = "executing"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// PlanTask is a declared unit of intended work: a tool plus parameters plus
// ordering constraints. Dependencies must all be completed before the task
// may execute.
type PlanTask struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Tool        string         `json:"tool"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	DependsOn   []string       `json:"depends_on,omitempty"`
	Status      TaskStatus     `json:"status"`
	Priority    int            `json:"priority"`
}

// KnowledgeEntry is one piece of append-only evidence gathered by search
// tools. Score is a relevance value in [0,100].
type KnowledgeEntry struct {
	ID      string  `json:"id"`
	Source  string  `json:"source"`
	Content string  `json:"content"`
	URL     string  `json:"url,omitempty"`
	Score   float64 `json:"score"`
}

// Session is the durable record of one generation conversation.
type Session struct {
	ID         string                 `json:"id"`
	Title      string                 `json:"title"`
	Status     Status                 `json:"status"`
	Messages   []Message              `json:"messages"`
	Steps      []Step                 `json:"steps"`
	Output     *card.GenerationOutput `json:"output,omitempty"`
	Iterations int                    `json:"iterations"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}
