package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Kensan196948G/fleetmux/pkg/models"
)

// AppendDispatch inserts one audit record. A single INSERT is atomic, so a
// crashed invocation can never leave a partial entry behind.
func (db *DB) AppendDispatch(record models.DispatchRecord) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	ts := record.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := db.conn.Exec(`
		INSERT INTO dispatch_log (id, ts, operation, role, session, pane, preview, mode, outcome, retries, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, formatTime(ts), record.Operation, record.Role,
		record.Address.Session, record.Address.Pane, record.Preview,
		string(record.Mode), string(record.Outcome), record.Retries, record.Error)
	if err != nil {
		return fmt.Errorf("append dispatch record: %w", err)
	}
	return nil
}

// RecentDispatches returns up to limit records, newest first.
func (db *DB) RecentDispatches(limit int) ([]models.DispatchRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(`
		SELECT id, ts, operation, role, session, pane, preview, mode, outcome, retries, COALESCE(error, '')
		FROM dispatch_log ORDER BY ts DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent dispatches: %w", err)
	}
	defer rows.Close()

	return scanDispatchRows(rows)
}

// LatestDispatchByRole returns the newest record for every role label.
func (db *DB) LatestDispatchByRole() (map[string]models.DispatchRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(`
		SELECT id, ts, operation, role, session, pane, preview, mode, outcome, retries, COALESCE(error, '')
		FROM dispatch_log
		WHERE ts = (SELECT MAX(d2.ts) FROM dispatch_log d2 WHERE d2.role = dispatch_log.role)
	`)
	if err != nil {
		return nil, fmt.Errorf("query latest dispatches: %w", err)
	}
	defer rows.Close()

	records, err := scanDispatchRows(rows)
	if err != nil {
		return nil, err
	}
	latest := make(map[string]models.DispatchRecord, len(records))
	for _, r := range records {
		if prev, ok := latest[r.Role]; !ok || r.Timestamp.After(prev.Timestamp) {
			latest[r.Role] = r
		}
	}
	return latest, nil
}

// scanDispatchRows converts query rows into records.
func scanDispatchRows(rows *sql.Rows) ([]models.DispatchRecord, error) {
	var records []models.DispatchRecord
	for rows.Next() {
		var r models.DispatchRecord
		var ts, mode, outcome string
		if err := rows.Scan(&r.ID, &ts, &r.Operation, &r.Role,
			&r.Address.Session, &r.Address.Pane, &r.Preview,
			&mode, &outcome, &r.Retries, &r.Error); err != nil {
			return nil, fmt.Errorf("scan dispatch record: %w", err)
		}
		parsed, err := parseTime(ts)
		if err != nil {
			return nil, fmt.Errorf("parse record timestamp %q: %w", ts, err)
		}
		r.Timestamp = parsed
		r.Mode = models.DeliveryMode(mode)
		r.Outcome = models.DispatchOutcome(outcome)
		records = append(records, r)
	}
	return records, rows.Err()
}
