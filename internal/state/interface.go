package state

import "github.com/Kensan196948G/fleetmux/pkg/models"

// Store is the narrow persistence interface the orchestrator and allocator
// depend on. Production uses the SQLite DB; tests use MemoryStore.
type Store interface {
	// AppendDispatch records one delivery attempt. Append-only; records are
	// never mutated or deleted.
	AppendDispatch(record models.DispatchRecord) error

	// RecentDispatches returns up to limit records, newest first.
	RecentDispatches(limit int) ([]models.DispatchRecord, error)

	// LatestDispatchByRole returns the most recent record for each role
	// label that appears in the log.
	LatestDispatchByRole() (map[string]models.DispatchRecord, error)

	// Cursor returns the persisted last-used index for a pool and whether
	// the pool has been seen before.
	Cursor(pool string) (int, bool, error)

	// AdvanceCursor atomically computes (last+1) mod size, persists it as
	// the new last index, and returns it. The read-modify-write is
	// serialized against concurrent allocators.
	AdvanceCursor(pool string, size int) (int, error)

	// Close releases the store.
	Close() error
}

// Compile-time checks.
var (
	_ Store = (*DB)(nil)
	_ Store = (*MemoryStore)(nil)
)
