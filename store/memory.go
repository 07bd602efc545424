package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"aide/task"
)

// MemoryStore keeps workflows in process memory. Snapshots are deep
// copied through JSON so callers cannot mutate stored state by aliasing.
type MemoryStore struct {
	mu        sync.RWMutex
	workflows map[string][]byte
	updated   map[string]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		workflows: make(map[string][]byte),
		updated:   make(map[string]time.Time),
	}
}

func (s *MemoryStore) Save(ctx context.Context, wf *task.Workflow) error {
	data, err := json.Marshal(wf)
	if err != nil {
		return &PersistenceError{Op: "save", ID: wf.ID, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[wf.ID] = data
	s.updated[wf.ID] = time.Now()
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*task.Workflow, error) {
	s.mu.RLock()
	data, ok := s.workflows[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var wf task.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, &PersistenceError{Op: "load", ID: id, Err: err}
	}
	return &wf, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]WorkflowInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]WorkflowInfo, 0, len(s.workflows))
	for id, data := range s.workflows {
		var wf task.Workflow
		if err := json.Unmarshal(data, &wf); err != nil {
			return nil, &PersistenceError{Op: "list", ID: id, Err: err}
		}
		infos = append(infos, WorkflowInfo{
			ID:          wf.ID,
			Description: wf.Description,
			Status:      string(wf.Status()),
			TaskCount:   len(wf.Tasks),
			CreatedAt:   wf.CreatedAt,
			UpdatedAt:   s.updated[id],
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})
	return infos, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workflows[id]; !ok {
		return ErrNotFound
	}
	delete(s.workflows, id)
	delete(s.updated, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
