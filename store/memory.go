package store

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore keeps records in process memory. Contents are lost on exit.
type MemoryStore struct {
	nextID  atomic.Int64
	mu      sync.RWMutex
	records []WorkflowRecord
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, w *WorkflowRecord) error {
	w.ID = s.nextID.Add(1)
	w.CreatedAt = s.now().UTC()

	rec := *w
	rec.WorkflowJSON = slices.Clone(w.WorkflowJSON)

	s.mu.Lock()
	defer s.mu.Unlock()
	// Concurrent creators may reach the lock out of id order.
	i, _ := slices.BinarySearchFunc(s.records, rec.ID, func(r WorkflowRecord, id int64) int {
		switch {
		case r.ID < id:
			return -1
		case r.ID > id:
			return 1
		}
		return 0
	})
	s.records = slices.Insert(s.records, i, rec)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*WorkflowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.records {
		if s.records[i].ID == id {
			rec := s.records[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) List(_ context.Context) ([]WorkflowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]WorkflowRecord{}, s.records...), nil
}

func (s *MemoryStore) Close() error { return nil }
