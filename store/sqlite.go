package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"aide/task"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS workflows (
    id TEXT PRIMARY KEY,
    description TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    task_count INTEGER NOT NULL DEFAULT 0,
    payload_json TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_workflows_updated ON workflows(updated_at);
`

// SQLiteStore persists workflows in a local SQLite database. WAL mode
// keeps concurrent readers from blocking the single writer.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, &PersistenceError{Op: "open", Err: err}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "init schema", Err: err}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, wf *task.Workflow) error {
	payload, err := json.Marshal(wf)
	if err != nil {
		return &PersistenceError{Op: "save", ID: wf.ID, Err: err}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workflows (id, description, status, task_count, payload_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status = excluded.status,
		   task_count = excluded.task_count,
		   payload_json = excluded.payload_json,
		   updated_at = excluded.updated_at`,
		wf.ID, wf.Description, string(wf.Status()), len(wf.Tasks), string(payload), wf.CreatedAt, time.Now(),
	)
	if err != nil {
		return &PersistenceError{Op: "save", ID: wf.ID, Err: err}
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*task.Workflow, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload_json FROM workflows WHERE id = ?`, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", ID: id, Err: err}
	}

	var wf task.Workflow
	if err := json.Unmarshal([]byte(payload), &wf); err != nil {
		return nil, &PersistenceError{Op: "load", ID: id, Err: err}
	}
	return &wf, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]WorkflowInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, status, task_count, created_at, updated_at
		 FROM workflows ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	var infos []WorkflowInfo
	for rows.Next() {
		var info WorkflowInfo
		if err := rows.Scan(&info.ID, &info.Description, &info.Status, &info.TaskCount, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, &PersistenceError{Op: "list", Err: err}
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return infos, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = ?`, id)
	if err != nil {
		return &PersistenceError{Op: "delete", ID: id, Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
