// Package extract derives a target filename and content type from a
// free-form task description. Extraction never fails: when no pattern
// matches, a default filename is generated from the detected content type.
package extract

import (
	"path"
	"regexp"
	"strings"
)

// DefaultFilename is the final fallback when nothing in the description
// hints at a name or a content type.
const DefaultFilename = "document.txt"

// Extraction records which heuristic produced the filename, for tracing
// classification decisions.
type Extraction struct {
	Filename    string
	ContentType string
	Pattern     string
}

// pattern pairs a named regexp with the capture group holding the filename.
// Patterns are evaluated in order, most explicit first; the first match
// wins, so ordering is part of the extraction policy.
type pattern struct {
	name  string
	re    *regexp.Regexp
	group int
}

var patterns = []pattern{
	// Quoted filename with an extension anywhere in the text.
	{"quoted_with_ext", regexp.MustCompile(`["']([\w\-. ]+\.[A-Za-z0-9]+)["']`), 1},
	// "save it to my Documents folder as 'x.txt'" and similar compounds.
	{"save_to_folder_as", regexp.MustCompile(`(?i)save\s+(?:it|this|the\s+\w+)?\s*(?:to|in)\s+(?:my\s+)?(?:[\w ]+\s+)?folder\s+as\s+["']?([\w\-. ]+\.\w+)["']?`), 1},
	// "save it/this/them/the story to/as/in name". Spaces in the name are
	// only accepted when an extension pins down where the name ends.
	{"save_it_as", regexp.MustCompile(`(?i)save\s+(?:it|this|them|the\s+\w+)\s+(?:to|as|in)\s+["']?([\w\-. ]+\.\w+)["']?`), 1},
	{"save_it_as_word", regexp.MustCompile(`(?i)save\s+(?:it|this|them|the\s+\w+)\s+(?:to|as|in)\s+["']?([\w\-./]+)["']?`), 1},
	// "save to/as/in name" with no object.
	{"save_as", regexp.MustCompile(`(?i)save\s+(?:to|as|in)\s+["']?([\w\-. ]+\.\w+)["']?`), 1},
	{"save_as_word", regexp.MustCompile(`(?i)save\s+(?:to|as|in)\s+["']?([\w\-./]+)["']?`), 1},
	// "write a story and save it as name".
	{"create_and_save", regexp.MustCompile(`(?i)(?:create|write)\s+an?\s+[\w ]+\s+(?:and|&)\s+save\s+(?:it|this|them)\s+(?:to|as|in)\s+["']?([\w\-. ]+\.\w+)["']?`), 1},
	// "create a document called/named 'name'".
	{"called_named", regexp.MustCompile(`(?i)(?:create|write)\s+an?\s+[\w ]+\s+(?:called|named)\s+["']?([\w\-. ]+)["']?`), 1},
	// "create name.txt" directly.
	{"create_direct", regexp.MustCompile(`(?i)(?:create|write)\s+["']?([\w\-. ]+\.\w+)["']?`), 1},
	// Last-resort catch-all for any quoted text with an extension.
	{"quoted_any", regexp.MustCompile(`["']\s*([\w\-. ]+\.[A-Za-z0-9]+)\s*["']`), 1},
}

var aboutRe = regexp.MustCompile(`(?i)\babout\s+(?:the\s+|a\s+|an\s+)?([\w\-]+)`)

// stopwords are bare captures that are clearly not filenames; hitting one
// moves evaluation on to the next pattern ("save it to my Documents
// folder" must not yield my.txt).
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "my": true, "your": true,
	"it": true, "this": true, "that": true, "them": true,
	"file": true, "folder": true, "directory": true, "documents": true,
	"disk": true,
}

// contentTypes maps a content type to the keywords that imply it.
// Evaluated in order so the more specific types win over "document".
var contentTypes = []struct {
	name     string
	keywords []string
}{
	{"story", []string{"story", "tale", "narrative", "fiction"}},
	{"poem", []string{"poem", "poetry", "verse", "rhyme", "haiku"}},
	{"essay", []string{"essay", "paper", "article", "composition"}},
	{"report", []string{"report", "analysis", "summary", "review"}},
	{"letter", []string{"letter", "email", "correspondence"}},
	{"script", []string{"script", "screenplay", "dialogue"}},
	{"recipe", []string{"recipe", "ingredients"}},
	{"note", []string{"note", "memo", "reminder"}},
	{"list", []string{"list", "checklist"}},
	{"document", []string{"document", "doc", "file", "text"}},
}

// Filename extracts the best-guess output filename from a task
// description. It is deterministic and total: the result is always a
// non-empty, cleaned, relative filename with an extension.
func Filename(description string) string {
	return Extract(description).Filename
}

// Extract runs the full extraction, reporting which pattern matched.
func Extract(description string) Extraction {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(description)
		if m == nil {
			continue
		}
		raw := strings.TrimSpace(m[p.group])
		if !strings.Contains(raw, ".") && stopwords[strings.ToLower(raw)] {
			continue
		}
		name := Clean(raw)
		if name == "" {
			continue
		}
		return Extraction{
			Filename:    name,
			ContentType: DetectContentType(description),
			Pattern:     p.name,
		}
	}

	// Fallback chain. A recognized content-type keyword wins over the
	// "about <topic>" heuristic: "write a short story about X" names the
	// file after the story, not after X.
	if ct := DetectContentType(description); ct != "" {
		return Extraction{Filename: ct + ".txt", ContentType: ct, Pattern: "content_type"}
	}

	if m := aboutRe.FindStringSubmatch(description); m != nil {
		topic := strings.ToLower(strings.Trim(m[1], ".,!?;:"))
		if topic != "" {
			return Extraction{Filename: topic + ".txt", Pattern: "about_topic"}
		}
	}

	return Extraction{Filename: DefaultFilename, Pattern: "default"}
}

// DetectContentType scans the description for a known content-type
// keyword, returning "" when none is present.
func DetectContentType(description string) string {
	lower := strings.ToLower(description)
	for _, ct := range contentTypes {
		for _, kw := range ct.keywords {
			if ContainsWord(lower, kw) {
				return ct.name
			}
		}
	}
	return ""
}

// Clean normalizes an extracted filename: surrounding quotes and
// punctuation are stripped, a missing extension becomes .txt, and path
// separators are collapsed to a safe relative path. Absolute paths and
// parent-directory escapes are neutralized; resolved names always stay
// under the caller's output root.
func Clean(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.Trim(name, `"' .,;:!?`)
	if name == "" {
		return ""
	}

	// Normalize separators, then drop absolute and escaping elements.
	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.TrimLeft(name, "/")
	parts := strings.Split(name, "/")
	kept := parts[:0]
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			continue
		}
		kept = append(kept, part)
	}
	name = path.Join(kept...)
	if name == "" {
		return ""
	}

	if path.Ext(name) == "" {
		name += ".txt"
	}
	return name
}

// ContainsWord reports whether word appears in haystack on word
// boundaries: a hit inside a longer identifier ("game" in "endgame")
// does not count. Shared by the keyword tables here and in the
// classification and topic heuristics.
func ContainsWord(haystack, word string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordByte(haystack[start-1])
		afterOK := end == len(haystack) || !isWordByte(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = end
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
