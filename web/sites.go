package web

import (
	"strings"

	"aide/extract"
)

// defaultSites maps an information topic to the sources queried for it.
// Topics come from lightweight keyword matching on the task description;
// unknown topics fall back to the general news set.
var defaultSites = map[string][]string{
	"news": {
		"https://news.google.com",
		"https://reuters.com",
		"https://apnews.com",
	},
	"gaming": {
		"https://www.ign.com",
		"https://www.gamespot.com",
		"https://www.polygon.com",
	},
	"tech": {
		"https://techcrunch.com",
		"https://www.theverge.com",
		"https://arstechnica.com",
	},
	"sports": {
		"https://www.espn.com",
		"https://www.cbssports.com",
	},
	"finance": {
		"https://finance.yahoo.com",
		"https://www.marketwatch.com",
	},
}

var topicKeywords = []struct {
	topic string
	words []string
}{
	{"gaming", []string{"gaming", "game", "games", "esports", "playstation", "xbox", "nintendo"}},
	{"tech", []string{"tech", "technology", "software", "ai", "startup", "gadget"}},
	{"sports", []string{"sports", "sport", "football", "basketball", "baseball", "soccer", "nfl", "nba"}},
	{"finance", []string{"finance", "financial", "stock", "stocks", "market", "economy", "crypto"}},
	{"news", []string{"news", "headline", "headlines", "current events"}},
}

// MatchTopic returns the topic whose keywords appear in the description,
// or false when no topic keyword is present.
func MatchTopic(description string) (string, bool) {
	lower := strings.ToLower(description)
	for _, tk := range topicKeywords {
		for _, w := range tk.words {
			if extract.ContainsWord(lower, w) {
				return tk.topic, true
			}
		}
	}
	return "", false
}

// TopicFor derives an information topic from a task description,
// defaulting to news.
func TopicFor(description string) string {
	if topic, ok := MatchTopic(description); ok {
		return topic
	}
	return "news"
}

// SitesFor returns the source list for a topic, honoring overrides from
// configuration before falling back to the built-in tables.
func SitesFor(topic string, overrides map[string][]string) []string {
	if sites, ok := overrides[topic]; ok && len(sites) > 0 {
		return sites
	}
	if sites, ok := defaultSites[topic]; ok {
		return sites
	}
	return defaultSites["news"]
}
