package task

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type categorizes what kind of work a task represents.
type Type string

const (
	TypeFileCreation  Type = "file_creation"
	TypeWebBrowsing   Type = "web_browsing"
	TypeGeneral       Type = "general"
	TypeImageAnalysis Type = "image_analysis"
)

// ValidTypes lists every task type the executor can dispatch on.
var ValidTypes = []Type{TypeFileCreation, TypeWebBrowsing, TypeGeneral, TypeImageAnalysis}

// ParseType maps a free-form type string (typically from a model response)
// onto a known Type, defaulting to general.
func ParseType(s string) Type {
	switch Type(s) {
	case TypeFileCreation, TypeWebBrowsing, TypeImageAnalysis:
		return Type(s)
	case "general_task", TypeGeneral:
		return TypeGeneral
	}
	return TypeGeneral
}

// Status tracks a task through its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is final for the task.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// FilePayload is the structured outcome of a file-creation task.
type FilePayload struct {
	Filename       string `json:"filename"`
	FileType       string `json:"fileType"`
	ContentPreview string `json:"contentPreview,omitempty"`
}

// WebPayload is the structured outcome of a web-information task.
type WebPayload struct {
	Topic         string   `json:"topic,omitempty"`
	Headlines     []string `json:"headlines,omitempty"`
	Information   string   `json:"information,omitempty"`
	Sources       []string `json:"sources,omitempty"`
	FailedSources []string `json:"failedSources,omitempty"`
	Filename      string   `json:"filename,omitempty"`
}

// TextPayload is the outcome of a general completion task.
type TextPayload struct {
	Text string `json:"text"`
}

// Result is the outcome of executing a task. Exactly one payload field is
// set on success, matching the task's type.
type Result struct {
	Success  bool         `json:"success"`
	TaskType Type         `json:"taskType"`
	Message  string       `json:"message,omitempty"`
	Error    string       `json:"error,omitempty"`
	File     *FilePayload `json:"file,omitempty"`
	Web      *WebPayload  `json:"web,omitempty"`
	Text     *TextPayload `json:"text,omitempty"`
}

// Failure builds a failed Result for the given type.
func Failure(t Type, err error) *Result {
	return &Result{
		Success:  false,
		TaskType: t,
		Message:  fmt.Sprintf("task failed: %v", err),
		Error:    err.Error(),
	}
}

// Summary renders a compact human-readable description of the result,
// suitable for feeding into a dependent task's context.
func (r *Result) Summary() string {
	if r == nil {
		return ""
	}
	if !r.Success {
		return fmt.Sprintf("failed: %s", r.Error)
	}
	switch {
	case r.File != nil:
		return fmt.Sprintf("created file %s (%s)", r.File.Filename, r.File.FileType)
	case r.Web != nil:
		s := "gathered web information"
		if r.Web.Topic != "" {
			s += " about " + r.Web.Topic
		}
		if len(r.Web.Headlines) > 0 {
			s += fmt.Sprintf("; top headlines: %s", joinBounded(r.Web.Headlines, 3, "; "))
		}
		if r.Web.Filename != "" {
			s += "; saved to " + r.Web.Filename
		}
		return s
	case r.Text != nil:
		return truncate(r.Text.Text, 200)
	}
	return r.Message
}

// Task is one unit of classified work within a workflow.
type Task struct {
	ID           string     `json:"id"`
	Description  string     `json:"description"`
	Type         Type       `json:"type"`
	Status       Status     `json:"status"`
	Dependencies []string   `json:"dependencies,omitempty"`
	Result       *Result    `json:"result,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
}

// New creates a pending task with a fresh ID.
func New(description string, taskType Type, deps ...string) *Task {
	return &Task{
		ID:           uuid.New().String(),
		Description:  description,
		Type:         taskType,
		Status:       StatusPending,
		Dependencies: deps,
		CreatedAt:    time.Now(),
	}
}

// MarshalResult serializes the task result as JSON, or "" when unset.
func (t *Task) MarshalResult() string {
	if t.Result == nil {
		return ""
	}
	b, err := json.Marshal(t.Result)
	if err != nil {
		return ""
	}
	return string(b)
}

func joinBounded(items []string, max int, sep string) string {
	if len(items) > max {
		items = items[:max]
	}
	out := ""
	for i, item := range items {
		if i > 0 {
			out += sep
		}
		out += item
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
