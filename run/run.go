// Package run executes workflows. One executor drives one task at a time
// per workflow, persisting every status transition so an interrupted run
// resumes from durable state instead of replaying finished work.
package run

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"aide/display"
	"aide/handler"
	"aide/store"
	"aide/task"
)

// ErrWorkflowBusy is returned when a workflow is already being executed
// by another caller in this process.
var ErrWorkflowBusy = errors.New("workflow is already running")

// TaskExecutionError describes a single task failure. It is recorded in
// the task's result and the run summary rather than aborting the run.
type TaskExecutionError struct {
	TaskID      string
	Description string
	Err         error
}

func (e *TaskExecutionError) Error() string {
	return fmt.Sprintf("task %s (%s) failed: %v", e.TaskID, e.Description, e.Err)
}

func (e *TaskExecutionError) Unwrap() error { return e.Err }

// Summary reports the outcome of a workflow run.
type Summary struct {
	WorkflowID string
	Completed  int
	Failed     int
	Skipped    int
	Errors     []*TaskExecutionError
	Cancelled  bool
}

// Executor runs workflows against a handler registry and a store.
type Executor struct {
	registry *handler.Registry
	store    store.WorkflowStore
	logger   hclog.Logger

	mu      sync.Mutex
	running map[string]bool
}

// NewExecutor builds an executor; logger may be nil.
func NewExecutor(registry *handler.Registry, st store.WorkflowStore, logger hclog.Logger) *Executor {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Executor{
		registry: registry,
		store:    st,
		logger:   logger.Named("run"),
		running:  make(map[string]bool),
	}
}

// Run executes the workflow to completion, failure, or cancellation.
// Concurrent calls for the same workflow ID return ErrWorkflowBusy;
// distinct workflows may run concurrently. Tasks left in_progress by a
// previous interrupted run are reset to pending first, so completed work
// is never repeated but interrupted work runs again.
func (e *Executor) Run(ctx context.Context, wf *task.Workflow, disp display.Handler) (*Summary, error) {
	if disp == nil {
		disp = display.Silent{}
	}
	if err := e.acquire(wf.ID); err != nil {
		return nil, err
	}
	defer e.release(wf.ID)

	if reset := wf.NormalizeInterrupted(); len(reset) > 0 {
		e.logger.Info("reset interrupted tasks", "workflow", wf.ID, "tasks", reset)
	}
	if err := e.persist(ctx, wf); err != nil {
		return nil, err
	}

	summary := &Summary{WorkflowID: wf.ID}

	for {
		if err := ctx.Err(); err != nil {
			summary.Cancelled = true
			e.markRemaining(ctx, wf, summary, "cancelled")
			disp.WorkflowFinished(wf)
			return summary, nil
		}

		ready := wf.ReadyTasks()
		if len(ready) == 0 {
			break
		}

		// One task in flight; plan order breaks ties among ready tasks.
		t := ready[0]
		if err := e.runTask(ctx, wf, t, disp, summary); err != nil {
			return summary, err
		}
	}

	// Pending tasks left over have failed dependencies; fail them
	// transitively so the workflow reaches a terminal state.
	e.cascadeFailures(ctx, wf, summary)

	disp.WorkflowFinished(wf)
	return summary, nil
}

func (e *Executor) runTask(ctx context.Context, wf *task.Workflow, t *task.Task, disp display.Handler, summary *Summary) error {
	now := time.Now()
	t.Status = task.StatusInProgress
	t.StartedAt = &now
	if err := e.persist(ctx, wf); err != nil {
		return err
	}
	disp.TaskStarted(t)
	e.logger.Info("task started", "workflow", wf.ID, "task", t.ID, "type", t.Type)

	// The handler sees the task description augmented with each
	// dependency's result, so later steps can build on earlier output.
	exec := *t
	exec.Description = augmentDescription(wf, t)

	result, err := e.registry.Handle(ctx, &exec)
	finished := time.Now()
	t.FinishedAt = &finished

	if err == nil && result != nil && result.Success {
		t.Status = task.StatusCompleted
		t.Result = result
		summary.Completed++
		if perr := e.persist(ctx, wf); perr != nil {
			return perr
		}
		disp.TaskCompleted(t)
		e.logger.Info("task completed", "workflow", wf.ID, "task", t.ID)
		return nil
	}

	if err == nil {
		err = errors.New(resultError(result))
	}
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		err = fmt.Errorf("cancelled: %w", err)
	}

	t.Status = task.StatusFailed
	if result != nil {
		t.Result = result
	} else {
		t.Result = task.Failure(t.Type, err)
	}
	summary.Failed++
	summary.Errors = append(summary.Errors, &TaskExecutionError{
		TaskID: t.ID, Description: t.Description, Err: err,
	})
	if perr := e.persist(ctx, wf); perr != nil {
		return perr
	}
	disp.TaskFailed(t, err)
	e.logger.Warn("task failed", "workflow", wf.ID, "task", t.ID, "error", err)
	return nil
}

// cascadeFailures marks every still-pending task whose dependency chain
// includes a failure as failed itself.
func (e *Executor) cascadeFailures(ctx context.Context, wf *task.Workflow, summary *Summary) {
	changed := true
	for changed {
		changed = false
		for _, t := range wf.InOrder() {
			if t.Status != task.StatusPending {
				continue
			}
			for _, dep := range t.Dependencies {
				d := wf.Get(dep)
				if d != nil && d.Status == task.StatusFailed {
					e.failDependent(t, dep, summary)
					changed = true
					break
				}
			}
		}
	}
	if summary.Skipped > 0 {
		if err := e.persist(ctx, wf); err != nil {
			e.logger.Error("persist after cascade", "workflow", wf.ID, "error", err)
		}
	}
}

func (e *Executor) failDependent(t *task.Task, failedDep string, summary *Summary) {
	now := time.Now()
	t.Status = task.StatusFailed
	t.FinishedAt = &now
	t.Result = task.Failure(t.Type, fmt.Errorf("dependency %s failed", failedDep))
	summary.Skipped++
	e.logger.Warn("task skipped", "task", t.ID, "failed_dependency", failedDep)
}

// markRemaining fails every non-terminal task with the given reason,
// used when the run is cancelled mid-flight.
func (e *Executor) markRemaining(ctx context.Context, wf *task.Workflow, summary *Summary, reason string) {
	now := time.Now()
	for _, t := range wf.InOrder() {
		if t.Status.Terminal() {
			continue
		}
		t.Status = task.StatusFailed
		t.FinishedAt = &now
		t.Result = task.Failure(t.Type, errors.New(reason))
		summary.Failed++
	}
	if err := e.persist(ctx, wf); err != nil {
		e.logger.Error("persist after cancellation", "workflow", wf.ID, "error", err)
	}
}

// augmentDescription appends completed-dependency summaries so handlers
// have the context earlier steps produced.
func augmentDescription(wf *task.Workflow, t *task.Task) string {
	if len(t.Dependencies) == 0 {
		return t.Description
	}
	var parts []string
	for _, dep := range t.Dependencies {
		d := wf.Get(dep)
		if d == nil || d.Result == nil {
			continue
		}
		if s := d.Result.Summary(); s != "" {
			parts = append(parts, fmt.Sprintf("- %s: %s", d.Description, s))
		}
	}
	if len(parts) == 0 {
		return t.Description
	}
	return t.Description + "\n\nContext from completed prerequisite steps:\n" + strings.Join(parts, "\n")
}

// persist writes the workflow snapshot; failures are fatal for the run.
// The save is detached from the run context so a cancellation mid-task
// still leaves durable state behind.
func (e *Executor) persist(ctx context.Context, wf *task.Workflow) error {
	if err := e.store.Save(context.WithoutCancel(ctx), wf); err != nil {
		return fmt.Errorf("persist workflow %s: %w", wf.ID, err)
	}
	return nil
}

func (e *Executor) acquire(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running[id] {
		return ErrWorkflowBusy
	}
	e.running[id] = true
	return nil
}

func (e *Executor) release(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.running, id)
}

func resultError(r *task.Result) string {
	if r == nil {
		return "handler returned no result"
	}
	if r.Error != "" {
		return r.Error
	}
	if r.Message != "" {
		return r.Message
	}
	return "task reported failure"
}
