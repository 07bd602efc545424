// Package web gathers information from public websites for research
// tasks: fetching pages with a browser user agent, pulling headlines out
// of landing pages, and reducing article HTML to readable markdown.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	readability "github.com/go-shiori/go-readability"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/net/html"

	"aide/llm"
)

const (
	defaultTimeout = 15 * time.Second
	browserUA      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	maxBodyBytes   = 4 << 20
	maxHeadlines   = 10
)

// Gatherer fetches and distills web content.
type Gatherer struct {
	client    *http.Client
	converter *md.Converter
	sites     map[string][]string
	provider  llm.Provider
	model     string
	logger    hclog.Logger
}

// Report is the outcome of gathering information on a topic.
type Report struct {
	Topic         string
	Headlines     []string
	Information   string
	Sources       []string
	FailedSources []string
}

// NewGatherer builds a gatherer with sane network defaults. siteOverrides
// may replace the built-in topic tables per topic; logger may be nil.
func NewGatherer(siteOverrides map[string][]string, logger hclog.Logger) *Gatherer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	converter := md.NewConverter("", true, nil)
	return &Gatherer{
		client:    &http.Client{Timeout: defaultTimeout},
		converter: converter,
		sites:     siteOverrides,
		logger:    logger.Named("web"),
	}
}

// WithSuggester enables model-suggested sources for descriptions that
// match no topic keyword. Without it, unknown topics use the news table.
func (g *Gatherer) WithSuggester(provider llm.Provider, model string) *Gatherer {
	g.provider = provider
	g.model = model
	return g
}

// Gather queries the sites for the topic implied by description. Sites
// that fail are recorded and skipped; the report succeeds as long as at
// least one source responded, and degrades to an explanatory summary
// otherwise.
func (g *Gatherer) Gather(ctx context.Context, description string) (*Report, error) {
	topic, sites := g.resolveSites(ctx, description)

	report := &Report{Topic: topic}
	for _, site := range sites {
		headlines, err := g.headlinesFrom(ctx, site)
		if err != nil {
			g.logger.Warn("source failed", "site", site, "error", err)
			report.FailedSources = append(report.FailedSources, site)
			continue
		}
		report.Sources = append(report.Sources, site)
		report.Headlines = append(report.Headlines, headlines...)
	}

	report.Headlines = dedupe(report.Headlines)
	if len(report.Headlines) > maxHeadlines {
		report.Headlines = report.Headlines[:maxHeadlines]
	}

	if len(report.Sources) == 0 {
		report.Information = fmt.Sprintf(
			"No %s sources could be reached; try again later or check network access.", topic)
		return report, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Latest %s headlines (%s):\n\n", topic, time.Now().Format("2006-01-02"))
	for _, h := range report.Headlines {
		fmt.Fprintf(&b, "- %s\n", h)
	}
	fmt.Fprintf(&b, "\nSources: %s\n", strings.Join(report.Sources, ", "))
	report.Information = b.String()
	return report, nil
}

// resolveSites picks the sources for a description. Keyword-matched
// topics use the static tables; anything else asks the model for sources
// when a suggester is wired, with the news table as the final fallback.
func (g *Gatherer) resolveSites(ctx context.Context, description string) (string, []string) {
	if topic, ok := MatchTopic(description); ok {
		return topic, SitesFor(topic, g.sites)
	}
	if g.provider != nil {
		sites, err := g.suggestSites(ctx, description)
		if err != nil {
			g.logger.Warn("site suggestion failed, using news sources", "error", err)
		} else if len(sites) > 0 {
			return "general", sites
		}
	}
	return "news", SitesFor("news", g.sites)
}

const suggestSitesPrompt = `You suggest websites for research. Given a request, respond with ONLY full https:// URLs of up to three reputable websites likely to carry current information on it, one per line. No prose, no numbering.`

// suggestSites asks the model for source URLs and keeps the well-formed
// http(s) ones, capped at three.
func (g *Gatherer) suggestSites(ctx context.Context, description string) ([]string, error) {
	out, err := llm.Complete(ctx, g.provider, g.model,
		"Suggest websites with current information for this request:\n\n"+description, suggestSitesPrompt)
	if err != nil {
		return nil, err
	}

	var sites []string
	for _, line := range strings.Split(out, "\n") {
		raw := strings.Trim(strings.TrimSpace(line), "-* ")
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}
		sites = append(sites, raw)
		if len(sites) == 3 {
			break
		}
	}
	if len(sites) > 0 {
		g.logger.Info("using model-suggested sources", "sites", sites)
	}
	return sites, nil
}

// FetchArticle retrieves a single page and reduces it to markdown using
// readability extraction over the raw HTML.
func (g *Gatherer) FetchArticle(ctx context.Context, pageURL string) (string, error) {
	body, err := g.fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse url %s: %w", pageURL, err)
	}
	article, err := readability.FromReader(strings.NewReader(body), parsed)
	if err != nil {
		return "", fmt.Errorf("extract article from %s: %w", pageURL, err)
	}

	markdown, err := g.converter.ConvertString(article.Content)
	if err != nil {
		return "", fmt.Errorf("convert article to markdown: %w", err)
	}
	if article.Title != "" {
		markdown = "# " + article.Title + "\n\n" + markdown
	}
	return markdown, nil
}

func (g *Gatherer) headlinesFrom(ctx context.Context, site string) ([]string, error) {
	body, err := g.fetch(ctx, site)
	if err != nil {
		return nil, err
	}
	return extractHeadlines(body), nil
}

func (g *Gatherer) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", pageURL, err)
	}
	return string(data), nil
}

// extractHeadlines walks the parsed document and collects heading and
// headline-classed anchor text. Short or navigational strings are
// filtered out.
func extractHeadlines(body string) []string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isHeadlineNode(n) {
			text := strings.Join(strings.Fields(nodeText(n)), " ")
			if len(text) >= 20 && len(text) <= 200 && !seen[text] {
				seen[text] = true
				out = append(out, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func isHeadlineNode(n *html.Node) bool {
	switch n.Data {
	case "h1", "h2", "h3":
		return true
	case "a":
		for _, attr := range n.Attr {
			if attr.Key == "class" && strings.Contains(strings.ToLower(attr.Val), "headline") {
				return true
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
		b.WriteString(" ")
	}
	return b.String()
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		key := strings.ToLower(s)
		if !seen[key] {
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}
