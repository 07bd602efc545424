// Package handler executes individual tasks by type. Each handler turns
// one classified task into a Result; the executor dispatches through the
// Registry and never sees handler internals.
package handler

import (
	"context"
	"fmt"

	"aide/task"
)

// Handler executes one task and produces its result. Handlers return an
// error only for infrastructure failures; domain failures (an unreachable
// site, a refused generation) are reported inside the Result.
type Handler interface {
	Handle(ctx context.Context, t *task.Task) (*task.Result, error)
}

// Registry dispatches tasks to handlers by type.
type Registry struct {
	handlers map[task.Type]Handler
	fallback Handler
}

// NewRegistry creates an empty registry with fallback as the handler for
// unregistered types.
func NewRegistry(fallback Handler) *Registry {
	return &Registry{
		handlers: make(map[task.Type]Handler),
		fallback: fallback,
	}
}

// Register binds a handler to a task type, replacing any previous binding.
func (r *Registry) Register(t task.Type, h Handler) {
	r.handlers[t] = h
}

// For returns the handler for the task type, or the fallback.
func (r *Registry) For(t task.Type) Handler {
	if h, ok := r.handlers[t]; ok {
		return h
	}
	return r.fallback
}

// Handle dispatches the task to its handler.
func (r *Registry) Handle(ctx context.Context, t *task.Task) (*task.Result, error) {
	h := r.For(t.Type)
	if h == nil {
		return nil, fmt.Errorf("no handler for task type %s", t.Type)
	}
	return h.Handle(ctx, t)
}
