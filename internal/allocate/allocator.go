// Package allocate assigns undifferentiated work items across a worker pool
// in rotation. The rotation cursor is persisted so it survives process
// restarts, and the cursor advances once per issued delivery attempt whether
// or not the delivery ultimately succeeds.
package allocate

import (
	"errors"
	"fmt"

	"github.com/Kensan196948G/fleetmux/internal/state"
	"github.com/Kensan196948G/fleetmux/pkg/models"
)

// ErrEmptyPool indicates a round-robin pool with no members. This is a
// configuration error and aborts the operation.
var ErrEmptyPool = errors.New("allocation pool is empty")

// GeneralPool is the pool name for undifferentiated worker allocation.
const GeneralPool = "general"

// Allocator hands out pool members in rotation, one per call.
type Allocator struct {
	store state.Store
}

// New creates an Allocator backed by the given store.
func New(store state.Store) *Allocator {
	return &Allocator{store: store}
}

// Next returns the next worker in rotation for the pool and persists the
// advanced cursor. The cursor movement is atomic with respect to concurrent
// allocators (the store serializes the read-modify-write).
func (a *Allocator) Next(pool string, workers []models.Address) (models.Address, error) {
	if len(workers) == 0 {
		return models.Address{}, fmt.Errorf("%w: %q", ErrEmptyPool, pool)
	}
	next, err := a.store.AdvanceCursor(pool, len(workers))
	if err != nil {
		return models.Address{}, fmt.Errorf("rotate pool %q: %w", pool, err)
	}
	return workers[next], nil
}
