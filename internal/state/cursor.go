package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Cursor returns the persisted last-used index for a pool.
func (db *DB) Cursor(pool string) (int, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var last int
	err := db.conn.QueryRow(
		"SELECT last_index FROM allocation_cursors WHERE pool = ?", pool,
	).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read cursor for pool %q: %w", pool, err)
	}
	return last, true, nil
}

// AdvanceCursor atomically rotates the pool cursor: next = (last+1) mod size.
// The whole read-modify-write runs in one transaction, so concurrent CLI
// invocations cannot hand the same index to two allocators.
func (db *DB) AdvanceCursor(pool string, size int) (int, error) {
	if size < 1 {
		return 0, fmt.Errorf("advance cursor for pool %q: size %d", pool, size)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin cursor transaction: %w", err)
	}

	var last int
	err = tx.QueryRow(
		"SELECT last_index FROM allocation_cursors WHERE pool = ?", pool,
	).Scan(&last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Fresh pool: the first allocation goes to index 0.
		last = -1
	case err != nil:
		tx.Rollback()
		return 0, fmt.Errorf("read cursor for pool %q: %w", pool, err)
	}

	next := (last + 1) % size
	_, err = tx.Exec(`
		INSERT INTO allocation_cursors (pool, last_index, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(pool) DO UPDATE SET last_index = excluded.last_index, updated_at = excluded.updated_at
	`, pool, next, formatTime(time.Now()))
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("persist cursor for pool %q: %w", pool, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit cursor for pool %q: %w", pool, err)
	}
	return next, nil
}
