package outbox

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory outbox Store for tests and local development.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]Entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory outbox store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[uuid.UUID]Entry),
		now:     time.Now,
	}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Processed = false
	entry.ProcessedAt = nil
	s.entries[entry.ID] = entry

	return nil
}

// FindUnprocessed implements Store.
func (s *MemoryStore) FindUnprocessed(_ context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unprocessed := make([]Entry, 0)
	for _, entry := range s.entries {
		if !entry.Processed {
			unprocessed = append(unprocessed, entry)
		}
	}

	sort.Slice(unprocessed, func(i, j int) bool {
		return unprocessed[i].CreatedAt.Before(unprocessed[j].CreatedAt)
	})

	if limit > 0 && len(unprocessed) > limit {
		unprocessed = unprocessed[:limit]
	}

	return unprocessed, nil
}

// MarkProcessed implements Store.
func (s *MemoryStore) MarkProcessed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok || entry.Processed {
		return nil
	}

	processedAt := s.now()
	entry.Processed = true
	entry.ProcessedAt = &processedAt
	s.entries[id] = entry

	return nil
}

// Checkpoint captures the current state and returns a function restoring it,
// for participation in the memory unit of work.
func (s *MemoryStore) Checkpoint() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[uuid.UUID]Entry, len(s.entries))
	for id, entry := range s.entries {
		saved[id] = entry
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.entries = saved
	}
}
