package handler

import (
	"context"

	"aide/task"
)

// ImageAnalysis is registered for image_analysis tasks but reports that
// no vision model is wired yet.
type ImageAnalysis struct{}

func NewImageAnalysis() *ImageAnalysis { return &ImageAnalysis{} }

func (h *ImageAnalysis) Handle(ctx context.Context, t *task.Task) (*task.Result, error) {
	return &task.Result{
		Success:  false,
		TaskType: task.TypeImageAnalysis,
		Message:  "image analysis is not supported",
		Error:    "no vision-capable model configured",
	}, nil
}
