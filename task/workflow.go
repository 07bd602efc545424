package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkflowStatus aggregates the statuses of a workflow's tasks.
type WorkflowStatus string

const (
	WorkflowPending    WorkflowStatus = "pending"
	WorkflowInProgress WorkflowStatus = "in_progress"
	WorkflowCompleted  WorkflowStatus = "completed"
	WorkflowFailed     WorkflowStatus = "failed"
)

// Workflow is an ordered, dependency-linked collection of tasks derived
// from a single user request. Order holds task IDs in plan definition
// order; scheduling ties are broken by this order so runs are reproducible.
type Workflow struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"createdAt"`
	Order       []string         `json:"order"`
	Tasks       map[string]*Task `json:"tasks"`
}

// NewWorkflow creates an empty workflow for the given request description.
func NewWorkflow(description string) *Workflow {
	return &Workflow{
		ID:          uuid.New().String(),
		Description: description,
		CreatedAt:   time.Now(),
		Tasks:       make(map[string]*Task),
	}
}

// Add appends a task to the workflow, preserving definition order.
func (w *Workflow) Add(t *Task) {
	w.Tasks[t.ID] = t
	w.Order = append(w.Order, t.ID)
}

// Get returns the task with the given ID, or nil.
func (w *Workflow) Get(id string) *Task {
	return w.Tasks[id]
}

// InOrder returns the workflow's tasks in plan definition order.
func (w *Workflow) InOrder() []*Task {
	out := make([]*Task, 0, len(w.Order))
	for _, id := range w.Order {
		if t := w.Tasks[id]; t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Status derives the aggregate workflow status from its tasks.
func (w *Workflow) Status() WorkflowStatus {
	if len(w.Tasks) == 0 {
		return WorkflowPending
	}
	var completed, failed, inProgress int
	for _, t := range w.Tasks {
		switch t.Status {
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		case StatusInProgress:
			inProgress++
		}
	}
	switch {
	case failed > 0 && completed+failed == len(w.Tasks):
		return WorkflowFailed
	case completed == len(w.Tasks):
		return WorkflowCompleted
	case inProgress > 0 || completed > 0 || failed > 0:
		return WorkflowInProgress
	}
	return WorkflowPending
}

// Validate checks that every dependency references a task in the workflow
// and that no task depends on itself.
func (w *Workflow) Validate() error {
	for _, t := range w.InOrder() {
		for _, dep := range t.Dependencies {
			if dep == t.ID {
				return fmt.Errorf("task %s depends on itself", t.ID)
			}
			if w.Tasks[dep] == nil {
				return fmt.Errorf("task %s depends on unknown task %s", t.ID, dep)
			}
		}
	}
	return nil
}

// ValidateDAG checks that task dependencies contain no cycles.
func (w *Workflow) ValidateDAG() error {
	deps := make(map[string][]string, len(w.Tasks))
	for id, t := range w.Tasks {
		deps[id] = t.Dependencies
	}

	// Visit state: 0=unvisited, 1=visiting (in stack), 2=visited
	state := make(map[string]int)

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		if state[id] == 2 {
			return nil
		}
		if state[id] == 1 {
			return fmt.Errorf("dependency cycle detected: %v", append(path, id))
		}
		state[id] = 1
		for _, dep := range deps[id] {
			if err := visit(dep, append(path, id)); err != nil {
				return err
			}
		}
		state[id] = 2
		return nil
	}

	for _, id := range w.Order {
		if err := visit(id, nil); err != nil {
			return err
		}
	}
	return nil
}

// TopologicalSort returns the workflow's tasks in an order that respects
// dependency edges. Among tasks whose dependencies are equally satisfied,
// plan definition order wins.
func (w *Workflow) TopologicalSort() []*Task {
	inDegree := make(map[string]int, len(w.Tasks))
	for id, t := range w.Tasks {
		inDegree[id] = len(t.Dependencies)
	}

	dependents := make(map[string][]string)
	for _, id := range w.Order {
		for _, dep := range w.Tasks[id].Dependencies {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var queue []string
	for _, id := range w.Order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	var result []*Task
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, w.Tasks[id])

		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	return result
}

// ReadyTasks returns pending tasks whose dependencies have all completed,
// in plan definition order.
func (w *Workflow) ReadyTasks() []*Task {
	var ready []*Task
	for _, t := range w.InOrder() {
		if t.Status != StatusPending {
			continue
		}
		ok := true
		for _, dep := range t.Dependencies {
			d := w.Tasks[dep]
			if d == nil || d.Status != StatusCompleted {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, t)
		}
	}
	return ready
}

// NormalizeInterrupted resets tasks left in_progress by an interrupted run
// back to pending so they can be re-executed. Completed and failed tasks
// are untouched. Returns the IDs that were reset.
func (w *Workflow) NormalizeInterrupted() []string {
	var reset []string
	for _, t := range w.InOrder() {
		if t.Status == StatusInProgress {
			t.Status = StatusPending
			t.StartedAt = nil
			reset = append(reset, t.ID)
		}
	}
	return reset
}
