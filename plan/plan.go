// Package plan decomposes a complex request into a dependency-ordered
// workflow by asking the model for a strict-JSON task breakdown, then
// validating the result before anything executes.
package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"aide/extract"
	"aide/llm"
	"aide/task"
)

// PlanningError indicates the model's plan could not be turned into a
// valid workflow. Callers degrade to direct single-task execution.
type PlanningError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *PlanningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("planning failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("planning failed: %s", e.Reason)
}

func (e *PlanningError) Unwrap() error { return e.Err }

// Planner turns request descriptions into workflows.
type Planner struct {
	provider llm.Provider
	model    string
	logger   hclog.Logger
}

// NewPlanner builds a planner; logger may be nil.
func NewPlanner(provider llm.Provider, model string, logger hclog.Logger) *Planner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Planner{provider: provider, model: model, logger: logger.Named("plan")}
}

const planSystemPrompt = `You are a task planning engine. Break the user's request into the smallest set of discrete subtasks.

Respond with ONLY a JSON array, no prose, no code fences. Each element:
{
  "description": "what to do, self-contained",
  "type": "file_creation" | "web_browsing" | "general" | "image_analysis",
  "dependencies": [zero-based indices of subtasks this one needs]
}

Rules:
- Order subtasks so dependencies come first.
- A subtask may only depend on earlier subtasks.
- Use file_creation when a subtask writes a file, web_browsing when it needs information from the internet, general otherwise.`

// planStep is the wire schema the model must produce.
type planStep struct {
	Description  string `json:"description"`
	Type         string `json:"type"`
	Dependencies []int  `json:"dependencies"`
}

// Plan asks the model to decompose description and returns a validated
// workflow. Malformed JSON or cyclic dependencies yield a *PlanningError.
func (p *Planner) Plan(ctx context.Context, description string) (*task.Workflow, error) {
	raw, err := llm.Complete(ctx, p.provider, p.model,
		"Break down this request into subtasks:\n\n"+description, planSystemPrompt)
	if err != nil {
		return nil, &PlanningError{Reason: "model call failed", Err: err}
	}

	steps, err := parsePlan(raw)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, &PlanningError{Reason: "empty plan", Raw: raw}
	}

	steps = mergeDuplicateFileTargets(steps, p.logger)

	wf := task.NewWorkflow(description)
	ids := make([]string, len(steps))
	for i, step := range steps {
		var deps []string
		for _, d := range step.Dependencies {
			if d < 0 || d >= i {
				// Forward and out-of-range references cannot be honored;
				// drop them rather than fail the whole plan.
				p.logger.Warn("dropping dangling dependency", "step", i, "ref", d)
				continue
			}
			deps = append(deps, ids[d])
		}
		t := task.New(step.Description, task.ParseType(step.Type), deps...)
		ids[i] = t.ID
		wf.Add(t)
	}

	if err := wf.Validate(); err != nil {
		return nil, &PlanningError{Reason: "invalid plan", Raw: raw, Err: err}
	}
	if err := wf.ValidateDAG(); err != nil {
		return nil, &PlanningError{Reason: "dependency cycle", Raw: raw, Err: err}
	}

	p.logger.Info("plan built", "subtasks", len(wf.Tasks))
	return wf, nil
}

// parsePlan strips code fences and decodes the model output into steps.
func parsePlan(raw string) ([]planStep, error) {
	cleaned := stripFences(raw)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end < start {
		return nil, &PlanningError{Reason: "no JSON array in response", Raw: raw}
	}

	var steps []planStep
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &steps); err != nil {
		return nil, &PlanningError{Reason: "malformed plan JSON", Raw: raw, Err: err}
	}

	for i, s := range steps {
		if strings.TrimSpace(s.Description) == "" {
			return nil, &PlanningError{Reason: fmt.Sprintf("step %d has no description", i), Raw: raw}
		}
	}
	return steps, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// mergeDuplicateFileTargets collapses file_creation steps that resolve to
// the same filename. Models often emit "write X" and "save X to file" as
// separate steps; only the last one for a given target survives, and
// dependency indices are remapped onto it.
func mergeDuplicateFileTargets(steps []planStep, logger hclog.Logger) []planStep {
	byTarget := map[string]int{}
	keep := make([]bool, len(steps))
	remap := make([]int, len(steps))
	for i := range steps {
		keep[i] = true
		remap[i] = i
	}

	for i, s := range steps {
		if task.ParseType(s.Type) != task.TypeFileCreation {
			continue
		}
		target := extract.Filename(s.Description)
		if prev, ok := byTarget[target]; ok {
			// Later step wins; it usually carries the save intent. The
			// earlier step's dependents point at the survivor.
			keep[prev] = false
			remap[prev] = i
			steps[i].Dependencies = append(steps[prev].Dependencies, steps[i].Dependencies...)
			logger.Warn("merged duplicate file target", "filename", target, "dropped_step", prev)
		}
		byTarget[target] = i
	}

	var out []planStep
	var origIdx []int
	newIndex := make([]int, len(steps))
	for i := range steps {
		if keep[i] {
			newIndex[i] = len(out)
			out = append(out, steps[i])
			origIdx = append(origIdx, i)
		}
	}
	for i := range out {
		var deps []int
		seen := map[int]bool{}
		for _, d := range out[i].Dependencies {
			if d < 0 || d >= len(steps) {
				continue
			}
			for !keep[d] {
				d = remap[d]
			}
			if d == origIdx[i] {
				continue
			}
			nd := newIndex[d]
			if !seen[nd] {
				seen[nd] = true
				deps = append(deps, nd)
			}
		}
		out[i].Dependencies = deps
	}
	return out
}
