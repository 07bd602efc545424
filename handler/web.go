package handler

import (
	"context"
	"strings"

	"github.com/hashicorp/go-hclog"

	"aide/classify"
	"aide/extract"
	"aide/fileio"
	"aide/task"
	"aide/web"
)

// WebInformation handles web_browsing tasks: it gathers headlines and
// summaries for the detected topic, and saves them to a file when the
// description asks for that.
type WebInformation struct {
	gatherer *web.Gatherer
	writer   *fileio.Writer
	logger   hclog.Logger
}

// NewWebInformation builds the handler; writer may be nil to disable
// saving, logger may be nil.
func NewWebInformation(gatherer *web.Gatherer, writer *fileio.Writer, logger hclog.Logger) *WebInformation {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &WebInformation{
		gatherer: gatherer,
		writer:   writer,
		logger:   logger.Named("web"),
	}
}

func (h *WebInformation) Handle(ctx context.Context, t *task.Task) (*task.Result, error) {
	report, err := h.gatherer.Gather(ctx, t.Description)
	if err != nil {
		return task.Failure(task.TypeWebBrowsing, err), nil
	}

	payload := &task.WebPayload{
		Topic:         report.Topic,
		Headlines:     report.Headlines,
		Information:   report.Information,
		Sources:       report.Sources,
		FailedSources: report.FailedSources,
	}

	// Success requires at least one responsive source.
	if len(report.Sources) == 0 {
		return &task.Result{
			Success:  false,
			TaskType: task.TypeWebBrowsing,
			Message:  "no sources could be reached",
			Error:    "all sources failed: " + strings.Join(report.FailedSources, ", "),
			Web:      payload,
		}, nil
	}

	if h.writer != nil && wantsFile(t.Description) {
		filename := extract.Filename(t.Description)
		if path, err := h.writer.Write(filename, report.Information); err != nil {
			h.logger.Warn("could not save gathered information", "filename", filename, "error", err)
		} else {
			h.logger.Info("gathered information saved", "path", path)
			payload.Filename = filename
		}
	}

	msg := "gathered " + report.Topic + " information"
	if len(report.FailedSources) > 0 {
		msg += " (some sources unavailable)"
	}
	return &task.Result{
		Success:  true,
		TaskType: task.TypeWebBrowsing,
		Message:  msg,
		Web:      payload,
	}, nil
}

// wantsFile reports whether a browsing description also asks to persist
// the findings.
func wantsFile(description string) bool {
	d := classify.Classify(description)
	for _, s := range d.Signals {
		if s == "save_phrase" || s == "explicit_filename" {
			return true
		}
	}
	return false
}
