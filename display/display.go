// Package display is the progress and result surface for workflow runs.
// Callers receive a Handler explicitly; there is no package-level default,
// so output routing is always visible at the call site.
package display

import "aide/task"

// Handler receives execution progress events.
type Handler interface {
	PlanBuilt(wf *task.Workflow)
	TaskStarted(t *task.Task)
	TaskCompleted(t *task.Task)
	TaskFailed(t *task.Task, err error)
	WorkflowFinished(wf *task.Workflow)
}

// Silent discards all events; used by tests and non-interactive callers.
type Silent struct{}

func (Silent) PlanBuilt(*task.Workflow)        {}
func (Silent) TaskStarted(*task.Task)          {}
func (Silent) TaskCompleted(*task.Task)        {}
func (Silent) TaskFailed(*task.Task, error)    {}
func (Silent) WorkflowFinished(*task.Workflow) {}
