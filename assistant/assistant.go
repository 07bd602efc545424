// Package assistant wires classification, planning, handlers, execution,
// and persistence into the façade the CLI talks to.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"aide/classify"
	"aide/config"
	"aide/display"
	"aide/fileio"
	"aide/handler"
	"aide/llm"
	"aide/plan"
	"aide/run"
	"aide/store"
	"aide/task"
	"aide/web"
)

// Assistant processes natural-language task requests.
type Assistant struct {
	cfg      *config.Config
	provider llm.Provider
	registry *handler.Registry
	planner  *plan.Planner
	executor *run.Executor
	store    store.WorkflowStore
	timeout  time.Duration
	logger   hclog.Logger
}

// Outcome is what one Execute call produced.
type Outcome struct {
	WorkflowID string
	Direct     bool
	Result     *task.Result
	Summary    *run.Summary
}

// New builds an assistant from configuration; logger may be nil.
func New(ctx context.Context, cfg *config.Config, logger hclog.Logger) (*Assistant, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	provider, err := llm.New(ctx, llm.Options{
		Provider: cfg.Model.Provider,
		BaseURL:  cfg.Model.BaseURL,
		APIKey:   cfg.Model.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("init model provider: %w", err)
	}

	st, err := store.New(store.Options{
		Backend: cfg.Storage.Backend,
		Path:    cfg.Storage.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	writer, err := fileio.NewWriter(cfg.Output.Root)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init output root: %w", err)
	}

	model := cfg.Model.Model
	gatherer := web.NewGatherer(cfg.SiteOverrides(), logger).WithSuggester(provider, model)

	registry := handler.NewRegistry(handler.NewGeneral(provider, model))
	registry.Register(task.TypeFileCreation, handler.NewFileCreation(provider, model, writer, gatherer, logger))
	registry.Register(task.TypeWebBrowsing, handler.NewWebInformation(gatherer, writer, logger))
	registry.Register(task.TypeGeneral, handler.NewGeneral(provider, model))
	registry.Register(task.TypeImageAnalysis, handler.NewImageAnalysis())

	return &Assistant{
		cfg:      cfg,
		provider: provider,
		registry: registry,
		planner:  plan.NewPlanner(provider, model, logger),
		executor: run.NewExecutor(registry, st, logger),
		store:    st,
		timeout:  cfg.Timeout(),
		logger:   logger.Named("assistant"),
	}, nil
}

// Execute classifies the request and either handles it directly or plans
// and runs a workflow. If planning fails, the request degrades to direct
// execution as a single task of the classified type.
func (a *Assistant) Execute(ctx context.Context, description string, disp display.Handler) (*Outcome, error) {
	if disp == nil {
		disp = display.Silent{}
	}

	d := classify.Logged(description, a.logger)
	a.logger.Info("request classified",
		"type", d.Type, "complex", d.Complex, "reclassified", d.Reclassified)

	if !d.Complex {
		return a.executeDirect(ctx, description, d.Type, disp)
	}

	pctx, cancel := a.withTimeout(ctx)
	wf, err := a.planner.Plan(pctx, description)
	cancel()
	if err != nil {
		var perr *plan.PlanningError
		if errors.As(err, &perr) {
			a.logger.Warn("planning failed, degrading to direct execution", "reason", perr.Reason)
			return a.executeDirect(ctx, description, d.Type, disp)
		}
		return nil, err
	}

	disp.PlanBuilt(wf)
	summary, err := a.executor.Run(ctx, wf, disp)
	if err != nil {
		return nil, err
	}
	return &Outcome{WorkflowID: wf.ID, Summary: summary}, nil
}

// executeDirect runs the request as one task through its handler,
// persisting it as a single-task workflow so the run is auditable.
func (a *Assistant) executeDirect(ctx context.Context, description string, taskType task.Type, disp display.Handler) (*Outcome, error) {
	wf := task.NewWorkflow(description)
	wf.Add(task.New(description, taskType))

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()
	summary, err := a.executor.Run(rctx, wf, disp)
	if err != nil {
		return nil, err
	}

	var result *task.Result
	for _, t := range wf.InOrder() {
		result = t.Result
	}
	return &Outcome{WorkflowID: wf.ID, Direct: true, Result: result, Summary: summary}, nil
}

// Resume reloads a persisted workflow and continues it. Completed tasks
// are never re-run; tasks interrupted mid-flight run again.
func (a *Assistant) Resume(ctx context.Context, id string, disp display.Handler) (*run.Summary, error) {
	wf, err := a.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if disp != nil {
		disp.PlanBuilt(wf)
	}
	return a.executor.Run(ctx, wf, disp)
}

// ListWorkflows returns saved workflow summaries, newest first.
func (a *Assistant) ListWorkflows(ctx context.Context) ([]store.WorkflowInfo, error) {
	return a.store.List(ctx)
}

// Close releases the assistant's resources.
func (a *Assistant) Close() error {
	return a.store.Close()
}

// withTimeout bounds model-driven calls with the configured timeout when
// the caller did not set a deadline of its own.
func (a *Assistant) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}
