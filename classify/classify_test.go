package classify_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"aide/classify"
	"aide/task"
)

var _ = Describe("Classify", func() {
	It("classifies file requests with content nouns", func() {
		d := classify.Classify("Write a short story about a lighthouse keeper")
		Expect(d.Type).To(Equal(task.TypeFileCreation))
		Expect(d.Complex).To(BeFalse())
		Expect(d.Reclassified).To(BeFalse())
	})

	It("classifies browsing requests", func() {
		d := classify.Classify("Browse the web for the latest tech news")
		Expect(d.Type).To(Equal(task.TypeWebBrowsing))
		Expect(d.Complex).To(BeFalse())
	})

	It("classifies URLs as browsing", func() {
		d := classify.Classify("Fetch https://example.com/page")
		Expect(d.Type).To(Equal(task.TypeWebBrowsing))
		Expect(d.Signals).To(ContainElement("url"))
	})

	It("defaults to general", func() {
		d := classify.Classify("What is the capital of France?")
		Expect(d.Type).To(Equal(task.TypeGeneral))
	})

	It("is total on empty input", func() {
		d := classify.Classify("")
		Expect(d.Type).To(Equal(task.TypeGeneral))
		Expect(d.Complex).To(BeFalse())
	})

	It("classifies image analysis requests", func() {
		d := classify.Classify("Analyze this image and describe what you see in the photo")
		Expect(d.Type).To(Equal(task.TypeImageAnalysis))
	})

	Describe("web-to-file reclassification", func() {
		It("reclassifies gather-and-save as file creation", func() {
			d := classify.Classify("gather the latest gaming headlines and save them in gamingNews.txt")
			Expect(d.Type).To(Equal(task.TypeFileCreation))
			Expect(d.Reclassified).To(BeTrue())
			Expect(d.Signals).To(ContainElement("explicit_filename"))
		})

		It("keeps pure browsing as web even with file nouns", func() {
			d := classify.Classify("Find news articles about the file format wars")
			Expect(d.Type).To(Equal(task.TypeWebBrowsing))
			Expect(d.Reclassified).To(BeFalse())
		})
	})

	Describe("complexity", func() {
		It("flags sequencing connectives", func() {
			d := classify.Classify("Research AI trends and then write a summary report")
			Expect(d.Complex).To(BeTrue())
		})

		It("flags multiple distinct action verbs", func() {
			d := classify.Classify("Find the latest benchmarks and summarize the results")
			Expect(d.Complex).To(BeTrue())
		})

		It("keeps write-and-save simple", func() {
			d := classify.Classify("Write a poem about spring and save it as spring.txt")
			Expect(d.Complex).To(BeFalse())
		})
	})
})

var _ = Describe("IsDirectFileCreation", func() {
	It("accepts a simple file request", func() {
		Expect(classify.IsDirectFileCreation("Write a haiku and save it as haiku.txt")).To(BeTrue())
	})

	It("rejects a multi-step request", func() {
		Expect(classify.IsDirectFileCreation("Research the topic and then write a report")).To(BeFalse())
	})
})
