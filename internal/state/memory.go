package state

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Kensan196948G/fleetmux/pkg/models"
)

// MemoryStore is an in-memory Store for tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	records []models.DispatchRecord
	cursors map[string]int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cursors: make(map[string]int)}
}

// AppendDispatch records one delivery attempt.
func (m *MemoryStore) AppendDispatch(record models.DispatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

// RecentDispatches returns up to limit records, newest first.
func (m *MemoryStore) RecentDispatches(limit int) ([]models.DispatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.DispatchRecord, len(m.records))
	copy(out, m.records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LatestDispatchByRole returns the newest record for every role label.
func (m *MemoryStore) LatestDispatchByRole() (map[string]models.DispatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	latest := make(map[string]models.DispatchRecord)
	for _, r := range m.records {
		if prev, ok := latest[r.Role]; !ok || r.Timestamp.After(prev.Timestamp) {
			latest[r.Role] = r
		}
	}
	return latest, nil
}

// Cursor returns the persisted last-used index for a pool.
func (m *MemoryStore) Cursor(pool string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	last, ok := m.cursors[pool]
	return last, ok, nil
}

// AdvanceCursor rotates the pool cursor under the store lock.
func (m *MemoryStore) AdvanceCursor(pool string, size int) (int, error) {
	if size < 1 {
		return 0, fmt.Errorf("advance cursor for pool %q: size %d", pool, size)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	last, ok := m.cursors[pool]
	if !ok {
		last = -1
	}
	next := (last + 1) % size
	m.cursors[pool] = next
	return next, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }

// Records returns a copy of everything appended, in insertion order.
// Test helper.
func (m *MemoryStore) Records() []models.DispatchRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DispatchRecord, len(m.records))
	copy(out, m.records)
	return out
}
