package shell

import (
	"context"
	"sync"
)

// UnitOfWork runs a function as one atomic transaction scope: either every write
// performed inside fn is persisted, or none is. The postgres implementation is
// pgtx.Runner; MemoryUnitOfWork serves tests and local development.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// Checkpointer is implemented by the in-memory stores: Checkpoint captures the
// current state and returns a function restoring it.
type Checkpointer interface {
	Checkpoint() func()
}

// MemoryUnitOfWork provides transactional semantics over in-memory stores by
// checkpointing every participant before fn runs and restoring all of them when
// fn fails. A coarse lock serializes scopes, which is acceptable for its
// test/development purpose.
type MemoryUnitOfWork struct {
	mu           sync.Mutex
	participants []Checkpointer
}

// NewMemoryUnitOfWork creates a MemoryUnitOfWork over the given participants.
func NewMemoryUnitOfWork(participants ...Checkpointer) *MemoryUnitOfWork {
	return &MemoryUnitOfWork{participants: participants}
}

// Execute implements UnitOfWork.
func (u *MemoryUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	restores := make([]func(), 0, len(u.participants))
	for _, participant := range u.participants {
		restores = append(restores, participant.Checkpoint())
	}

	err := fn(ctx)
	if err != nil {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
	}

	return err
}
