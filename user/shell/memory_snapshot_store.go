package shell

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/eventfold/aggregatestore-go/user/core"
)

// MemorySnapshotStore is an in-memory SnapshotStore for tests and local development.
type MemorySnapshotStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]core.UserState
}

// NewMemorySnapshotStore creates an empty in-memory snapshot store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{rows: make(map[uuid.UUID]core.UserState)}
}

// Upsert implements SnapshotStore.
func (s *MemorySnapshotStore) Upsert(_ context.Context, state core.UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[state.ID] = state

	return nil
}

// FindByID implements SnapshotStore.
func (s *MemorySnapshotStore) FindByID(_ context.Context, id uuid.UUID) (*core.UserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.rows[id]
	if !ok {
		return nil, nil
	}

	return &state, nil
}

// FindByEmail implements SnapshotStore.
func (s *MemorySnapshotStore) FindByEmail(_ context.Context, email string) (*core.UserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, state := range s.rows {
		if state.Email == email && state.DeletedAt == nil {
			found := state
			return &found, nil
		}
	}

	return nil, nil
}

// FindMany implements SnapshotStore.
func (s *MemorySnapshotStore) FindMany(_ context.Context, page int, pageSize int) ([]core.UserState, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alive := make([]core.UserState, 0, len(s.rows))
	for _, state := range s.rows {
		if state.DeletedAt == nil {
			alive = append(alive, state)
		}
	}

	sort.Slice(alive, func(i, j int) bool {
		return alive[i].CreatedAt.After(alive[j].CreatedAt)
	})

	total := len(alive)
	offset := (page - 1) * pageSize
	if offset >= total {
		return []core.UserState{}, total, nil
	}

	end := offset + pageSize
	if end > total {
		end = total
	}

	return alive[offset:end], total, nil
}

// Checkpoint captures the current state and returns a function restoring it,
// for participation in the memory unit of work.
func (s *MemorySnapshotStore) Checkpoint() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[uuid.UUID]core.UserState, len(s.rows))
	for id, state := range s.rows {
		saved[id] = state
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.rows = saved
	}
}
