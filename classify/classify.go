// Package classify assigns a task type to a free-form task description and
// decides whether the task needs planning. Classification is total: any
// string, including the empty one, yields exactly one type and a
// complexity flag, never an error.
package classify

import (
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"

	"aide/extract"
	"aide/task"
)

// Decision is the outcome of classifying one description. Signals records
// which heuristics fired, so ambiguous calls (web vs. file) can be audited
// from the logs instead of silently picking a side.
type Decision struct {
	Type         task.Type
	Complex      bool
	Signals      []string
	Reclassified bool
}

var (
	urlRe = regexp.MustCompile(`(?i)\bhttps?://\S+|\bwww\.\S+\.\S+`)

	webVerbRe = regexp.MustCompile(`(?i)\b(browse|visit|go to|gather|find|search|research|look up|scrape|fetch)\b`)

	webNounRe = regexp.MustCompile(`(?i)\b(news|headline|headlines|website|web|internet|online|gaming|tech|sports|finance|article|articles)\b`)

	fileVerbRe = regexp.MustCompile(`(?i)\b(create|write|save|make|compose|draft)\b`)

	fileNounRe = regexp.MustCompile(`(?i)\b(file|document|story|poem|haiku|essay|report|text|note|letter|script|recipe|list|summary)\b`)

	saveRe = regexp.MustCompile(`(?i)\bsave\s+(?:it|this|them|the\s+\w+\s+)?(?:to|as|in)\b`)

	imageRe = regexp.MustCompile(`(?i)\b(analyze|analyse|describe|examine)\b.*\b(image|photo|picture|screenshot)\b`)

	filenameRe = regexp.MustCompile(`\b[\w\-]+\.(txt|md|csv|html|json|doc|docx|pdf)\b`)

	sequencingRe = regexp.MustCompile(`(?i)\b(and then|after that|followed by|and also|additionally|as well as|finally|next,)\b`)

	// Action verbs counted for the complexity check. create/write/save are
	// excluded: a single "write X and save it" is the direct-handler fast
	// path, not a multi-step request.
	actionVerbs = []string{
		"find", "search", "research", "analyze", "organize", "delete",
		"browse", "visit", "gather", "collect", "download", "compile",
		"summarize", "compare", "translate",
	}
)

// Classify assigns a task type and complexity flag to the description.
func Classify(description string) Decision {
	return Logged(description, hclog.NewNullLogger())
}

// Logged is Classify with decision logging, used by the assistant so
// reclassification is observable.
func Logged(description string, log hclog.Logger) Decision {
	d := Decision{Type: task.TypeGeneral}
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return d
	}

	webSignal := false
	if urlRe.MatchString(trimmed) {
		webSignal = true
		d.Signals = append(d.Signals, "url")
	}
	if webVerbRe.MatchString(trimmed) && webNounRe.MatchString(trimmed) {
		webSignal = true
		d.Signals = append(d.Signals, "web_verb+noun")
	}

	fileSignal := false
	if fileVerbRe.MatchString(trimmed) && fileNounRe.MatchString(trimmed) {
		fileSignal = true
		d.Signals = append(d.Signals, "file_verb+noun")
	}
	if saveRe.MatchString(trimmed) {
		fileSignal = true
		d.Signals = append(d.Signals, "save_phrase")
	}

	hasFilename := filenameRe.MatchString(trimmed)
	if hasFilename {
		d.Signals = append(d.Signals, "explicit_filename")
	}

	switch {
	case imageRe.MatchString(trimmed):
		d.Type = task.TypeImageAnalysis
		d.Signals = append(d.Signals, "image_phrase")
	case webSignal && fileSignal:
		// Both fired. A strong file indicator (explicit filename or save
		// verb) means the user ultimately wants a file; the web gathering
		// is the content source, not the primary type.
		if hasFilename || saveRe.MatchString(trimmed) {
			d.Type = task.TypeFileCreation
			d.Reclassified = true
			log.Info("reclassified web task as file creation",
				"description", truncateForLog(trimmed), "signals", d.Signals)
		} else {
			d.Type = task.TypeWebBrowsing
		}
	case webSignal:
		d.Type = task.TypeWebBrowsing
	case fileSignal:
		d.Type = task.TypeFileCreation
	}

	d.Complex = isComplex(trimmed)
	log.Debug("classified task",
		"type", d.Type, "complex", d.Complex, "signals", d.Signals)
	return d
}

// isComplex reports whether the description needs the planner: two or more
// distinct action verbs, an explicit sequencing connective, or multiple
// joined objectives.
func isComplex(description string) bool {
	if sequencingRe.MatchString(description) {
		return true
	}
	lower := strings.ToLower(description)
	count := 0
	for _, verb := range actionVerbs {
		if extract.ContainsWord(lower, verb) {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

// IsDirectFileCreation reports whether a description is a simple file
// request that can skip classification subtleties entirely; used to avoid
// spinning up a workflow for "write a poem and save it".
func IsDirectFileCreation(description string) bool {
	d := Classify(description)
	return d.Type == task.TypeFileCreation && !d.Complex
}

// FilenameHint exposes the extractor's verdict alongside classification,
// for trace logging.
func FilenameHint(description string) string {
	return extract.Filename(description)
}

func truncateForLog(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
