package save

import (
	"context"
	"sync"
)

// MemoryStore keeps slots in process memory. Used by tests and -backend=memory.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[int64]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: map[int64]Snapshot{}}
}

func (m *MemoryStore) Upsert(ctx context.Context, slot int64, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap.Structures = append([]StructureV1(nil), snap.Structures...)
	m.mu.Lock()
	m.slots[slot] = snap
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Fetch(ctx context.Context, slot int64) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.slots[slot]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	snap.Structures = append([]StructureV1(nil), snap.Structures...)
	return snap, nil
}
