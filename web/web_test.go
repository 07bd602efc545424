package web_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"aide/web"
)

const landingPage = `<html><head><title>Site</title></head><body>
<nav><a href="/">Home</a></nav>
<h2>Major breakthrough announced in energy storage today</h2>
<h3>Local team wins the championship after dramatic final</h3>
<h2>Major breakthrough announced in energy storage today</h2>
<h3>short</h3>
</body></html>`

var _ = Describe("TopicFor", func() {
	It("detects gaming topics", func() {
		Expect(web.TopicFor("gather the latest gaming headlines")).To(Equal("gaming"))
	})

	It("detects tech topics", func() {
		Expect(web.TopicFor("what's new in technology")).To(Equal("tech"))
	})

	It("detects finance topics", func() {
		Expect(web.TopicFor("check the stock market")).To(Equal("finance"))
	})

	It("falls back to news", func() {
		Expect(web.TopicFor("tell me what's happening")).To(Equal("news"))
	})
})

var _ = Describe("MatchTopic", func() {
	It("reports matched topics", func() {
		topic, ok := web.MatchTopic("latest gaming releases")
		Expect(ok).To(BeTrue())
		Expect(topic).To(Equal("gaming"))
	})

	It("reports when no topic keyword is present", func() {
		_, ok := web.MatchTopic("gather information about gardening")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("SitesFor", func() {
	It("prefers configured overrides", func() {
		sites := web.SitesFor("gaming", map[string][]string{"gaming": {"https://example.com"}})
		Expect(sites).To(Equal([]string{"https://example.com"}))
	})

	It("uses the built-in table otherwise", func() {
		Expect(web.SitesFor("tech", nil)).NotTo(BeEmpty())
	})

	It("falls back to news sources for unknown topics", func() {
		Expect(web.SitesFor("philately", nil)).To(Equal(web.SitesFor("news", nil)))
	})
})

var _ = Describe("Gatherer", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("collects deduplicated headlines from responsive sources", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, landingPage)
		}))
		defer srv.Close()

		g := web.NewGatherer(map[string][]string{"news": {srv.URL}}, nil)
		report, err := g.Gather(ctx, "latest news please")
		Expect(err).NotTo(HaveOccurred())

		Expect(report.Topic).To(Equal("news"))
		Expect(report.Sources).To(Equal([]string{srv.URL}))
		Expect(report.FailedSources).To(BeEmpty())
		Expect(report.Headlines).To(Equal([]string{
			"Major breakthrough announced in energy storage today",
			"Local team wins the championship after dramatic final",
		}))
		Expect(report.Information).To(ContainSubstring("Major breakthrough"))
	})

	It("records failing sources and succeeds with the rest", func() {
		good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, landingPage)
		}))
		defer good.Close()
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer bad.Close()

		g := web.NewGatherer(map[string][]string{"news": {bad.URL, good.URL}}, nil)
		report, err := g.Gather(ctx, "latest news please")
		Expect(err).NotTo(HaveOccurred())

		Expect(report.Sources).To(Equal([]string{good.URL}))
		Expect(report.FailedSources).To(Equal([]string{bad.URL}))
		Expect(report.Headlines).NotTo(BeEmpty())
	})

	It("degrades to an explanatory summary when every source fails", func() {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer bad.Close()

		g := web.NewGatherer(map[string][]string{"news": {bad.URL}}, nil)
		report, err := g.Gather(ctx, "latest news please")
		Expect(err).NotTo(HaveOccurred())

		Expect(report.Sources).To(BeEmpty())
		Expect(report.FailedSources).To(Equal([]string{bad.URL}))
		Expect(report.Information).To(ContainSubstring("could not be reached"))
	})

	It("sends a browser user agent", func() {
		var ua string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua = r.UserAgent()
			fmt.Fprint(w, landingPage)
		}))
		defer srv.Close()

		g := web.NewGatherer(map[string][]string{"news": {srv.URL}}, nil)
		_, err := g.Gather(ctx, "latest news please")
		Expect(err).NotTo(HaveOccurred())
		Expect(ua).To(ContainSubstring("Mozilla"))
	})

	It("asks the model for sources when no topic keyword matches", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, landingPage)
		}))
		defer srv.Close()

		provider := &fakeProvider{response: "Here are some sites:\n- " + srv.URL + "\nnot a url\nftp://archive.example"}
		g := web.NewGatherer(nil, nil).WithSuggester(provider, "test-model")

		report, err := g.Gather(ctx, "gather information about gardening")
		Expect(err).NotTo(HaveOccurred())

		Expect(report.Topic).To(Equal("general"))
		Expect(report.Sources).To(Equal([]string{srv.URL}))
		Expect(report.Headlines).NotTo(BeEmpty())
		Expect(provider.prompts).To(ContainElement(ContainSubstring("gardening")))
	})

	It("falls back to news sources when the suggester fails", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, landingPage)
		}))
		defer srv.Close()

		provider := &fakeProvider{err: errors.New("model offline")}
		g := web.NewGatherer(map[string][]string{"news": {srv.URL}}, nil).WithSuggester(provider, "test-model")

		report, err := g.Gather(ctx, "gather information about gardening")
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Topic).To(Equal("news"))
		Expect(report.Sources).To(Equal([]string{srv.URL}))
	})

	It("does not consult the model for known topics", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, landingPage)
		}))
		defer srv.Close()

		provider := &fakeProvider{response: "https://unused.example"}
		g := web.NewGatherer(map[string][]string{"gaming": {srv.URL}}, nil).WithSuggester(provider, "test-model")

		report, err := g.Gather(ctx, "latest gaming headlines")
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Topic).To(Equal("gaming"))
		Expect(provider.prompts).To(BeEmpty())
	})

	It("converts articles to markdown", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html><head><title>Storage Report</title></head><body>
<article><h1>Storage Report</h1>
<p>Researchers described a significant advance in grid-scale batteries this week,
with prototypes holding charge for far longer than previous designs. The team
reported sustained output across hundreds of charge cycles, and the materials
involved are abundant enough that manufacturing at scale appears plausible.
Utilities that reviewed the findings called them the most promising storage
development in a decade, though all cautioned that field conditions differ
substantially from laboratory benches.</p>
<p>Independent labs are now attempting to replicate the results before any
commercial deployment is planned. Replication will take most of a year, since
the degradation behavior that matters only appears after extended use. If the
numbers hold, grid operators expect pilot installations to follow quickly,
starting with regions that already curtail renewable generation on windy
days.</p></article>
</body></html>`)
		}))
		defer srv.Close()

		g := web.NewGatherer(nil, nil)
		md, err := g.FetchArticle(ctx, srv.URL)
		Expect(err).NotTo(HaveOccurred())
		Expect(md).To(ContainSubstring("grid-scale batteries"))
	})
})
