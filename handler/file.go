package handler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"aide/classify"
	"aide/extract"
	"aide/fileio"
	"aide/llm"
	"aide/task"
	"aide/web"
)

const previewLen = 300

// FileCreation handles file_creation tasks: it resolves the target
// filename, sources content (from the web when the request asks for
// gathered information, from the model otherwise), and writes the file.
type FileCreation struct {
	provider llm.Provider
	model    string
	writer   *fileio.Writer
	gatherer *web.Gatherer
	logger   hclog.Logger
}

// NewFileCreation builds the handler; gatherer may be nil to disable
// web-sourced content, logger may be nil.
func NewFileCreation(provider llm.Provider, model string, writer *fileio.Writer, gatherer *web.Gatherer, logger hclog.Logger) *FileCreation {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &FileCreation{
		provider: provider,
		model:    model,
		writer:   writer,
		gatherer: gatherer,
		logger:   logger.Named("file"),
	}
}

func (h *FileCreation) Handle(ctx context.Context, t *task.Task) (*task.Result, error) {
	ext := extract.Extract(t.Description)
	h.logger.Debug("resolved target",
		"filename", ext.Filename, "contentType", ext.ContentType, "pattern", ext.Pattern)

	content, err := h.sourceContent(ctx, t.Description, ext)
	if err != nil {
		return task.Failure(task.TypeFileCreation, err), nil
	}

	path, err := h.writer.Write(ext.Filename, content)
	if err != nil {
		return task.Failure(task.TypeFileCreation, err), nil
	}
	h.logger.Info("file written", "path", path)

	return &task.Result{
		Success:  true,
		TaskType: task.TypeFileCreation,
		Message:  fmt.Sprintf("created %s", ext.Filename),
		File: &task.FilePayload{
			Filename:       ext.Filename,
			FileType:       strings.TrimPrefix(filepath.Ext(ext.Filename), "."),
			ContentPreview: preview(content),
		},
	}, nil
}

// sourceContent picks where the file body comes from. A description that
// carried web signals (a reclassified "gather X and save it" request) is
// filled from gathered information; everything else is generated.
func (h *FileCreation) sourceContent(ctx context.Context, description string, ext extract.Extraction) (string, error) {
	d := classify.Classify(description)
	if d.Reclassified && h.gatherer != nil {
		report, err := h.gatherer.Gather(ctx, description)
		if err != nil {
			return "", fmt.Errorf("gather content: %w", err)
		}
		// A degraded report with no responsive source has no usable
		// content; the file must not be written from the apology text.
		if len(report.Sources) == 0 {
			return "", fmt.Errorf("no %s sources could be reached", report.Topic)
		}
		return report.Information, nil
	}
	return h.generate(ctx, description, ext.ContentType)
}

func (h *FileCreation) generate(ctx context.Context, description, contentType string) (string, error) {
	system := contentPrompt(contentType)
	out, err := llm.Complete(ctx, h.provider, h.model, description, system)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("model returned empty content")
	}
	return out, nil
}

// contentPrompt scopes generation to the detected content type so the
// model produces the artifact itself, not commentary about it.
func contentPrompt(contentType string) string {
	base := "Write only the requested content. No preamble, no explanation, no markdown fences."
	switch contentType {
	case "story":
		return base + " Write a complete short story with a beginning, middle, and end."
	case "poem":
		return base + " Write the poem only, with line breaks preserved."
	case "essay":
		return base + " Write a structured essay with an introduction and conclusion."
	case "report":
		return base + " Write a factual report with clear sections."
	case "letter":
		return base + " Write a properly formatted letter."
	case "script":
		return base + " Write the script with speaker names and stage directions."
	case "recipe":
		return base + " Write the recipe with an ingredient list and numbered steps."
	case "list":
		return base + " Write the list with one item per line."
	default:
		return base
	}
}

func preview(content string) string {
	if len(content) <= previewLen {
		return content
	}
	return content[:previewLen] + "..."
}
