package plan_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"aide/plan"
	"aide/task"
)

var _ = Describe("Planner", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	newPlanner := func(response string) *plan.Planner {
		return plan.NewPlanner(&fakeProvider{response: response}, "test-model", nil)
	}

	It("builds a workflow from a valid plan", func() {
		p := newPlanner(`[
			{"description": "research the topic", "type": "web_browsing", "dependencies": []},
			{"description": "write the report", "type": "file_creation", "dependencies": [0]}
		]`)

		wf, err := p.Plan(ctx, "research and write a report")
		Expect(err).NotTo(HaveOccurred())
		Expect(wf.Tasks).To(HaveLen(2))

		ordered := wf.InOrder()
		Expect(ordered[0].Type).To(Equal(task.TypeWebBrowsing))
		Expect(ordered[1].Type).To(Equal(task.TypeFileCreation))
		Expect(ordered[1].Dependencies).To(Equal([]string{ordered[0].ID}))
	})

	It("strips code fences around the JSON", func() {
		p := newPlanner("```json\n[{\"description\": \"do the thing\", \"type\": \"general\", \"dependencies\": []}]\n```")

		wf, err := p.Plan(ctx, "do the thing")
		Expect(err).NotTo(HaveOccurred())
		Expect(wf.Tasks).To(HaveLen(1))
	})

	It("returns a PlanningError for malformed JSON", func() {
		p := newPlanner(`definitely not json`)

		_, err := p.Plan(ctx, "anything")
		var perr *plan.PlanningError
		Expect(errors.As(err, &perr)).To(BeTrue())
	})

	It("returns a PlanningError for an empty plan", func() {
		p := newPlanner(`[]`)

		_, err := p.Plan(ctx, "anything")
		var perr *plan.PlanningError
		Expect(errors.As(err, &perr)).To(BeTrue())
	})

	It("returns a PlanningError when the model call fails", func() {
		p := plan.NewPlanner(&fakeProvider{err: errors.New("connection refused")}, "test-model", nil)

		_, err := p.Plan(ctx, "anything")
		var perr *plan.PlanningError
		Expect(errors.As(err, &perr)).To(BeTrue())
	})

	It("drops dependency indices that point nowhere", func() {
		p := newPlanner(`[
			{"description": "first", "type": "general", "dependencies": [7]},
			{"description": "second", "type": "general", "dependencies": [0]}
		]`)

		wf, err := p.Plan(ctx, "two steps")
		Expect(err).NotTo(HaveOccurred())

		ordered := wf.InOrder()
		Expect(ordered[0].Dependencies).To(BeEmpty())
		Expect(ordered[1].Dependencies).To(HaveLen(1))
	})

	It("drops forward references so plans stay acyclic", func() {
		p := newPlanner(`[
			{"description": "first", "type": "general", "dependencies": [1]},
			{"description": "second", "type": "general", "dependencies": [0]}
		]`)

		wf, err := p.Plan(ctx, "two steps")
		Expect(err).NotTo(HaveOccurred())
		Expect(wf.ValidateDAG()).To(Succeed())
		Expect(wf.InOrder()[0].Dependencies).To(BeEmpty())
	})

	It("merges file steps that target the same filename", func() {
		p := newPlanner(`[
			{"description": "gather gaming headlines", "type": "web_browsing", "dependencies": []},
			{"description": "write gamingNews.txt with the gathered headlines", "type": "file_creation", "dependencies": [0]},
			{"description": "save it as gamingNews.txt", "type": "file_creation", "dependencies": [1]}
		]`)

		wf, err := p.Plan(ctx, "gather headlines and save them")
		Expect(err).NotTo(HaveOccurred())
		Expect(wf.Tasks).To(HaveLen(2))

		ordered := wf.InOrder()
		Expect(ordered[0].Type).To(Equal(task.TypeWebBrowsing))
		Expect(ordered[1].Type).To(Equal(task.TypeFileCreation))
		Expect(ordered[1].Dependencies).To(Equal([]string{ordered[0].ID}))
	})
})
