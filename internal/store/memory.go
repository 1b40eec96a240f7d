package store

import (
	"context"
	"sync"

	"github.com/websteralycia/WNBA-Lineup-Lab/internal/models"
)

// MemoryStore implements SnapshotStore using in-memory storage
type MemoryStore struct {
	mu        sync.RWMutex
	namespace string
	snapshots map[string]models.Snapshot
}

// NewMemoryStore creates a new in-memory snapshot store
func NewMemoryStore(namespace string) *MemoryStore {
	return &MemoryStore{
		namespace: namespace,
		snapshots: make(map[string]models.Snapshot),
	}
}

func (m *MemoryStore) Put(ctx context.Context, id string, snap *models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Store a copy so callers cannot mutate the published document
	stored := *snap
	stored.Lineup = make([]models.Player, len(snap.Lineup))
	copy(stored.Lineup, snap.Lineup)

	m.snapshots[m.namespace+"/"+id] = stored
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*models.Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.snapshots[m.namespace+"/"+id]
	if !ok {
		return nil, false, nil
	}

	out := snap
	out.Lineup = make([]models.Player, len(snap.Lineup))
	copy(out.Lineup, snap.Lineup)
	return &out, true, nil
}

// Close is a no-op for the in-memory store
func (m *MemoryStore) Close() error {
	return nil
}
