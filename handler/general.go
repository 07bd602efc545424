package handler

import (
	"context"
	"strings"

	"aide/llm"
	"aide/task"
)

// General answers tasks that are neither file creation nor web browsing
// with a single model completion.
type General struct {
	provider llm.Provider
	model    string
}

func NewGeneral(provider llm.Provider, model string) *General {
	return &General{provider: provider, model: model}
}

func (h *General) Handle(ctx context.Context, t *task.Task) (*task.Result, error) {
	out, err := llm.Complete(ctx, h.provider, h.model, t.Description,
		"You are a concise, helpful assistant. Answer the request directly.")
	if err != nil {
		return task.Failure(task.TypeGeneral, err), nil
	}
	return &task.Result{
		Success:  true,
		TaskType: task.TypeGeneral,
		Message:  "completed",
		Text:     &task.TextPayload{Text: strings.TrimSpace(out)},
	}, nil
}
