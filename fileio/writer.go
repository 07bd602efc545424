// Package fileio writes generated artifacts under a single configured
// output root. Relative filenames resolve against the root; absolute
// paths and parent-directory escapes are rejected outright.
package fileio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer persists task artifacts below Root.
type Writer struct {
	root string
}

// NewWriter creates a writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve output root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create output root %s: %w", abs, err)
	}
	return &Writer{root: abs}, nil
}

// Root returns the absolute output root directory.
func (w *Writer) Root() string {
	return w.root
}

// Resolve maps a relative artifact name onto an absolute path under the
// root. Names that are absolute or escape the root are an error; this is
// the security boundary for model-derived filenames.
func (w *Writer) Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty filename")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute path %q not allowed", name)
	}
	full := filepath.Join(w.root, filepath.FromSlash(name))
	rel, err := filepath.Rel(w.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes output root", name)
	}
	return full, nil
}

// Write renders content for the filename's extension and writes it
// atomically: content goes to a temp file in the target directory and is
// renamed into place, so a crash mid-write never leaves a partial file.
func (w *Writer) Write(name, content string) (string, error) {
	full, err := w.Resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create parent directory: %w", err)
	}

	rendered := render(content, filepath.Ext(full))

	tmp, err := os.CreateTemp(filepath.Dir(full), "."+filepath.Base(full)+".tmp*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(rendered); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("rename into place: %w", err)
	}
	return full, nil
}

// render adapts plain content to the requested format. Text-like formats
// pass through; html gets a minimal wrapper when the content is bare.
func render(content, ext string) string {
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		if strings.Contains(strings.ToLower(content), "<html") {
			return content
		}
		return "<!DOCTYPE html>\n<html>\n<body>\n<pre>\n" + content + "\n</pre>\n</body>\n</html>\n"
	default:
		// .txt, .md, .csv, .json and anything else: write as-is, with a
		// trailing newline for well-formed text files.
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return content
	}
}
