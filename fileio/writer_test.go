package fileio_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"aide/fileio"
)

var _ = Describe("Writer", func() {
	var w *fileio.Writer

	BeforeEach(func() {
		var err error
		w, err = fileio.NewWriter(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
	})

	It("writes text files under the root with a trailing newline", func() {
		path, err := w.Write("story.txt", "once upon a time")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(w.Root(), "story.txt")))

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("once upon a time\n"))
	})

	It("creates intermediate directories", func() {
		path, err := w.Write("notes/january/todo.md", "- item")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(BeAnExistingFile())
	})

	It("wraps bare content for html targets", func() {
		path, err := w.Write("page.html", "hello")
		Expect(err).NotTo(HaveOccurred())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("<!DOCTYPE html>"))
		Expect(string(data)).To(ContainSubstring("hello"))
	})

	It("passes through complete html documents", func() {
		doc := "<html><body>x</body></html>"
		path, err := w.Write("full.html", doc)
		Expect(err).NotTo(HaveOccurred())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(doc))
	})

	It("rejects absolute paths", func() {
		_, err := w.Write("/etc/evil.txt", "x")
		Expect(err).To(HaveOccurred())
	})

	It("rejects paths that escape the root", func() {
		_, err := w.Write("../escape.txt", "x")
		Expect(err).To(HaveOccurred())
	})

	It("rejects empty names", func() {
		_, err := w.Write("", "x")
		Expect(err).To(HaveOccurred())
	})

	It("overwrites atomically, leaving no temp files behind", func() {
		_, err := w.Write("replace.txt", "v1")
		Expect(err).NotTo(HaveOccurred())
		path, err := w.Write("replace.txt", "v2")
		Expect(err).NotTo(HaveOccurred())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("v2\n"))

		entries, err := os.ReadDir(w.Root())
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
	})
})
