package cache

import (
	"sync/atomic"

	"github.com/eurofx/rate-service/internal/domain/entity"
)

// SnapshotStore holds the currently published dataset. The dataset is
// treated as an immutable value: Publish swaps a single pointer, so
// concurrent readers never block and never observe a mix of old and new
// per-currency tables. Evict only marks the snapshot stale; Get keeps
// serving the previous dataset until the next Publish, so the store is
// never without a queryable snapshot after the first load.
type SnapshotStore struct {
	snapshot atomic.Pointer[entity.Dataset]
	stale    atomic.Bool
}

// NewSnapshotStore creates an empty store. Get returns nil until the first
// Publish; callers perform the initial load before serving traffic.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Get returns the last successfully published dataset, or nil if nothing
// has been published yet.
func (s *SnapshotStore) Get() entity.Dataset {
	ds := s.snapshot.Load()
	if ds == nil {
		return nil
	}
	return *ds
}

// Publish atomically replaces the snapshot and clears the stale mark.
func (s *SnapshotStore) Publish(dataset entity.Dataset) {
	s.snapshot.Store(&dataset)
	s.stale.Store(false)
}

// Evict marks the store as needing replacement without dropping the
// current snapshot.
func (s *SnapshotStore) Evict() {
	s.stale.Store(true)
}

// Stale reports whether an eviction is pending a Publish.
func (s *SnapshotStore) Stale() bool {
	return s.stale.Load()
}

// Size returns the number of currencies in the current snapshot.
func (s *SnapshotStore) Size() int {
	return len(s.Get())
}
