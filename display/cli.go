package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"aide/task"
)

// CLI writes progress to a terminal, rendering markdown results through
// glamour when a renderer could be built.
type CLI struct {
	out      io.Writer
	renderer *glamour.TermRenderer
}

// NewCLI creates a terminal display writing to out.
func NewCLI(out io.Writer) *CLI {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		renderer = nil
	}
	return &CLI{out: out, renderer: renderer}
}

func (c *CLI) PlanBuilt(wf *task.Workflow) {
	fmt.Fprintf(c.out, "\nPlan (%d steps):\n", len(wf.Tasks))
	for i, t := range wf.InOrder() {
		deps := ""
		if len(t.Dependencies) > 0 {
			var nums []string
			for _, dep := range t.Dependencies {
				for j, id := range wf.Order {
					if id == dep {
						nums = append(nums, fmt.Sprintf("%d", j+1))
					}
				}
			}
			deps = " (after " + strings.Join(nums, ", ") + ")"
		}
		fmt.Fprintf(c.out, "  %d. [%s] %s%s\n", i+1, t.Type, t.Description, deps)
	}
	fmt.Fprintln(c.out)
}

func (c *CLI) TaskStarted(t *task.Task) {
	fmt.Fprintf(c.out, "▸ %s\n", t.Description)
}

func (c *CLI) TaskCompleted(t *task.Task) {
	fmt.Fprintf(c.out, "✓ %s\n", t.Result.Summary())
	if t.Result != nil && t.Result.Text != nil {
		c.markdown(t.Result.Text.Text)
	}
}

func (c *CLI) TaskFailed(t *task.Task, err error) {
	fmt.Fprintf(c.out, "✗ %s: %v\n", t.Description, err)
}

func (c *CLI) WorkflowFinished(wf *task.Workflow) {
	var completed, failed int
	var artifacts []string
	for _, t := range wf.InOrder() {
		switch t.Status {
		case task.StatusCompleted:
			completed++
		case task.StatusFailed:
			failed++
		}
		if t.Result != nil && t.Result.File != nil {
			artifacts = append(artifacts, t.Result.File.Filename)
		}
		if t.Result != nil && t.Result.Web != nil && t.Result.Web.Filename != "" {
			artifacts = append(artifacts, t.Result.Web.Filename)
		}
	}
	fmt.Fprintf(c.out, "\n%s: %d completed, %d failed of %d\n",
		wf.Status(), completed, failed, len(wf.Tasks))
	if len(artifacts) > 0 {
		fmt.Fprintf(c.out, "Files: %s\n", strings.Join(artifacts, ", "))
	}
}

func (c *CLI) markdown(text string) {
	if c.renderer == nil {
		fmt.Fprintln(c.out, text)
		return
	}
	rendered, err := c.renderer.Render(text)
	if err != nil {
		fmt.Fprintln(c.out, text)
		return
	}
	fmt.Fprint(c.out, rendered)
}
