package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Options selects a persistence backend.
type Options struct {
	Backend string // "memory" or "sqlite"
	Path    string // sqlite database path
}

// New creates a WorkflowStore from options. The zero value yields a
// memory-backed store.
func New(opts Options) (WorkflowStore, error) {
	switch opts.Backend {
	case "", "memory":
		return NewMemoryStore(), nil

	case "sqlite":
		path := opts.Path
		if path == "" {
			path = "aide.db"
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create storage directory %s: %w", dir, err)
			}
		}
		return NewSQLiteStore(path)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (expected 'memory' or 'sqlite')", opts.Backend)
	}
}
