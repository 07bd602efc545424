package task_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"aide/task"
)

func buildChain() (*task.Workflow, *task.Task, *task.Task, *task.Task) {
	wf := task.NewWorkflow("three step request")
	a := task.New("step one", task.TypeWebBrowsing)
	b := task.New("step two", task.TypeGeneral, a.ID)
	c := task.New("step three", task.TypeFileCreation, b.ID)
	wf.Add(a)
	wf.Add(b)
	wf.Add(c)
	return wf, a, b, c
}

var _ = Describe("Workflow", func() {
	It("preserves definition order", func() {
		wf, a, b, c := buildChain()
		ordered := wf.InOrder()
		Expect(ordered).To(HaveLen(3))
		Expect(ordered[0].ID).To(Equal(a.ID))
		Expect(ordered[1].ID).To(Equal(b.ID))
		Expect(ordered[2].ID).To(Equal(c.ID))
	})

	It("validates dependency references", func() {
		wf, _, _, _ := buildChain()
		Expect(wf.Validate()).To(Succeed())

		wf.Add(task.New("dangling", task.TypeGeneral, "no-such-id"))
		Expect(wf.Validate()).To(HaveOccurred())
	})

	It("rejects self-dependencies", func() {
		wf := task.NewWorkflow("loop")
		t := task.New("self", task.TypeGeneral)
		t.Dependencies = []string{t.ID}
		wf.Add(t)
		Expect(wf.Validate()).To(HaveOccurred())
	})

	It("detects dependency cycles", func() {
		wf, a, _, c := buildChain()
		Expect(wf.ValidateDAG()).To(Succeed())

		a.Dependencies = []string{c.ID}
		Expect(wf.ValidateDAG()).To(HaveOccurred())
	})

	It("topologically sorts with plan order breaking ties", func() {
		wf := task.NewWorkflow("diamond")
		root := task.New("root", task.TypeGeneral)
		left := task.New("left", task.TypeGeneral, root.ID)
		right := task.New("right", task.TypeGeneral, root.ID)
		sink := task.New("sink", task.TypeGeneral, left.ID, right.ID)
		wf.Add(root)
		wf.Add(left)
		wf.Add(right)
		wf.Add(sink)

		sorted := wf.TopologicalSort()
		Expect(sorted).To(HaveLen(4))
		Expect(sorted[0].ID).To(Equal(root.ID))
		Expect(sorted[1].ID).To(Equal(left.ID))
		Expect(sorted[2].ID).To(Equal(right.ID))
		Expect(sorted[3].ID).To(Equal(sink.ID))
	})

	Describe("ReadyTasks", func() {
		It("returns only tasks with completed dependencies", func() {
			wf, a, b, _ := buildChain()
			ready := wf.ReadyTasks()
			Expect(ready).To(HaveLen(1))
			Expect(ready[0].ID).To(Equal(a.ID))

			a.Status = task.StatusCompleted
			ready = wf.ReadyTasks()
			Expect(ready).To(HaveLen(1))
			Expect(ready[0].ID).To(Equal(b.ID))
		})

		It("returns nothing when a dependency failed", func() {
			wf, a, _, _ := buildChain()
			a.Status = task.StatusFailed
			Expect(wf.ReadyTasks()).To(BeEmpty())
		})
	})

	Describe("NormalizeInterrupted", func() {
		It("resets in_progress tasks and leaves terminal ones alone", func() {
			wf, a, b, c := buildChain()
			a.Status = task.StatusCompleted
			b.Status = task.StatusInProgress
			c.Status = task.StatusPending

			reset := wf.NormalizeInterrupted()
			Expect(reset).To(Equal([]string{b.ID}))
			Expect(a.Status).To(Equal(task.StatusCompleted))
			Expect(b.Status).To(Equal(task.StatusPending))
			Expect(c.Status).To(Equal(task.StatusPending))
		})
	})

	Describe("Status", func() {
		It("derives the aggregate state", func() {
			wf, a, b, c := buildChain()
			Expect(wf.Status()).To(Equal(task.WorkflowPending))

			a.Status = task.StatusCompleted
			Expect(wf.Status()).To(Equal(task.WorkflowInProgress))

			b.Status = task.StatusCompleted
			c.Status = task.StatusCompleted
			Expect(wf.Status()).To(Equal(task.WorkflowCompleted))

			c.Status = task.StatusFailed
			Expect(wf.Status()).To(Equal(task.WorkflowFailed))
		})
	})
})

var _ = Describe("Result", func() {
	It("summarizes file results", func() {
		r := &task.Result{
			Success:  true,
			TaskType: task.TypeFileCreation,
			File:     &task.FilePayload{Filename: "story.txt", FileType: "txt"},
		}
		Expect(r.Summary()).To(ContainSubstring("story.txt"))
	})

	It("summarizes web results with headlines and destination", func() {
		r := &task.Result{
			Success:  true,
			TaskType: task.TypeWebBrowsing,
			Web: &task.WebPayload{
				Topic:     "gaming",
				Headlines: []string{"one", "two"},
				Filename:  "gamingNews.txt",
			},
		}
		s := r.Summary()
		Expect(s).To(ContainSubstring("gaming"))
		Expect(s).To(ContainSubstring("gamingNews.txt"))
	})

	It("summarizes failures", func() {
		r := task.Failure(task.TypeGeneral, json.Unmarshal([]byte("{"), &struct{}{}))
		Expect(r.Success).To(BeFalse())
		Expect(r.Summary()).To(HavePrefix("failed:"))
	})

	It("round-trips through JSON with exactly one payload set", func() {
		r := &task.Result{
			Success:  true,
			TaskType: task.TypeGeneral,
			Text:     &task.TextPayload{Text: "hello"},
		}
		data, err := json.Marshal(r)
		Expect(err).NotTo(HaveOccurred())

		var back task.Result
		Expect(json.Unmarshal(data, &back)).To(Succeed())
		Expect(back.Text).NotTo(BeNil())
		Expect(back.File).To(BeNil())
		Expect(back.Web).To(BeNil())
	})
})
