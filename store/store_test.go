package store_test

import (
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"aide/store"
	"aide/task"
)

var _ = Describe("WorkflowStore", func() {
	runStoreTests := func(name string, newStore func() store.WorkflowStore) {
		Describe(name, func() {
			var (
				ctx context.Context
				st  store.WorkflowStore
			)

			BeforeEach(func() {
				ctx = context.Background()
				st = newStore()
			})

			AfterEach(func() {
				Expect(st.Close()).To(Succeed())
			})

			newWorkflow := func(desc string) *task.Workflow {
				wf := task.NewWorkflow(desc)
				a := task.New("first step", task.TypeWebBrowsing)
				b := task.New("second step", task.TypeFileCreation, a.ID)
				wf.Add(a)
				wf.Add(b)
				return wf
			}

			It("round-trips a workflow snapshot", func() {
				wf := newWorkflow("round trip")
				first := wf.InOrder()[0]
				first.Status = task.StatusCompleted
				first.Result = &task.Result{
					Success:  true,
					TaskType: task.TypeWebBrowsing,
					Web:      &task.WebPayload{Topic: "news", Headlines: []string{"headline one"}},
				}

				Expect(st.Save(ctx, wf)).To(Succeed())

				loaded, err := st.Load(ctx, wf.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(loaded.ID).To(Equal(wf.ID))
				Expect(loaded.Description).To(Equal("round trip"))
				Expect(loaded.Order).To(Equal(wf.Order))

				got := loaded.Get(first.ID)
				Expect(got.Status).To(Equal(task.StatusCompleted))
				Expect(got.Result.Web.Topic).To(Equal("news"))
				Expect(got.Dependencies).To(BeEmpty())
			})

			It("replaces prior state on save", func() {
				wf := newWorkflow("evolving")
				Expect(st.Save(ctx, wf)).To(Succeed())

				wf.InOrder()[0].Status = task.StatusFailed
				Expect(st.Save(ctx, wf)).To(Succeed())

				loaded, err := st.Load(ctx, wf.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(loaded.InOrder()[0].Status).To(Equal(task.StatusFailed))
			})

			It("returns ErrNotFound for unknown IDs", func() {
				_, err := st.Load(ctx, "nope")
				Expect(err).To(MatchError(store.ErrNotFound))
			})

			It("lists workflows newest first", func() {
				first := newWorkflow("older")
				Expect(st.Save(ctx, first)).To(Succeed())
				time.Sleep(10 * time.Millisecond)
				second := newWorkflow("newer")
				Expect(st.Save(ctx, second)).To(Succeed())

				infos, err := st.List(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(infos).To(HaveLen(2))
				Expect(infos[0].ID).To(Equal(second.ID))
				Expect(infos[0].TaskCount).To(Equal(2))
				Expect(infos[1].Description).To(Equal("older"))
			})

			It("deletes workflows", func() {
				wf := newWorkflow("doomed")
				Expect(st.Save(ctx, wf)).To(Succeed())
				Expect(st.Delete(ctx, wf.ID)).To(Succeed())

				_, err := st.Load(ctx, wf.ID)
				Expect(err).To(MatchError(store.ErrNotFound))

				Expect(st.Delete(ctx, wf.ID)).To(MatchError(store.ErrNotFound))
			})

			It("does not alias stored state", func() {
				wf := newWorkflow("isolated")
				Expect(st.Save(ctx, wf)).To(Succeed())

				wf.InOrder()[0].Status = task.StatusFailed

				loaded, err := st.Load(ctx, wf.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(loaded.InOrder()[0].Status).To(Equal(task.StatusPending))
			})
		})
	}

	runStoreTests("memory backend", func() store.WorkflowStore {
		return store.NewMemoryStore()
	})

	runStoreTests("sqlite backend", func() store.WorkflowStore {
		st, err := store.NewSQLiteStore(filepath.Join(GinkgoT().TempDir(), "test.db"))
		Expect(err).NotTo(HaveOccurred())
		return st
	})
})

var _ = Describe("factory", func() {
	It("defaults to the memory backend", func() {
		st, err := store.New(store.Options{})
		Expect(err).NotTo(HaveOccurred())
		defer st.Close()
		Expect(st).To(BeAssignableToTypeOf(&store.MemoryStore{}))
	})

	It("creates parent directories for sqlite paths", func() {
		path := filepath.Join(GinkgoT().TempDir(), "nested", "dir", "aide.db")
		st, err := store.New(store.Options{Backend: "sqlite", Path: path})
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Close()).To(Succeed())
	})

	It("rejects unknown backends", func() {
		_, err := store.New(store.Options{Backend: "postgres"})
		Expect(err).To(HaveOccurred())
	})
})
