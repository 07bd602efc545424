// Package store persists workflows between sessions. A workflow is saved
// as a whole snapshot after every task transition, so an interrupted run
// can be resumed from the last durable state.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aide/task"
)

// ErrNotFound indicates the requested workflow does not exist.
var ErrNotFound = errors.New("workflow not found")

// PersistenceError wraps a storage failure. Callers treat these as fatal
// for the running workflow rather than degrading silently.
type PersistenceError struct {
	Op  string
	ID  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("persistence failure during %s of workflow %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// WorkflowInfo is a listing row for saved workflows.
type WorkflowInfo struct {
	ID          string
	Description string
	Status      string
	TaskCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WorkflowStore is the persistence contract shared by the memory and
// sqlite backends.
type WorkflowStore interface {
	// Save writes the full workflow snapshot, replacing any prior state.
	Save(ctx context.Context, wf *task.Workflow) error
	// Load returns the workflow or ErrNotFound.
	Load(ctx context.Context, id string) (*task.Workflow, error)
	List(ctx context.Context) ([]WorkflowInfo, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
