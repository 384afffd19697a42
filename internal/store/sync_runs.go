package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordSyncRun inserts run into the audit trail and returns its row ID.
// An empty RunID is filled with a new random UUID.
func (q *Queries) RecordSyncRun(run *SyncRun) (int64, error) {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	result, err := q.q.Exec(
		`INSERT INTO sync_runs (run_id, started_at, mode, days_synced, total_xp, level, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.StartedAt.UTC().Format(time.RFC3339), run.Mode,
		run.DaysSynced, run.TotalXP, run.Level, run.DurationMS,
	)
	if err != nil {
		return 0, fmt.Errorf("recording sync run: %w", err)
	}
	run.ID, err = result.LastInsertId()
	return run.ID, err
}

// GetLatestSyncRun returns the most recent sync run, or nil if none exist.
func (q *Queries) GetLatestSyncRun() (*SyncRun, error) {
	row := q.q.QueryRow(
		`SELECT id, run_id, started_at, mode, days_synced, total_xp, level, duration_ms
		FROM sync_runs ORDER BY id DESC LIMIT 1`,
	)
	return scanSyncRun(row)
}

// ListSyncRuns returns up to limit runs, newest first.
func (q *Queries) ListSyncRuns(limit int) ([]SyncRun, error) {
	rows, err := q.q.Query(
		`SELECT id, run_id, started_at, mode, days_synced, total_xp, level, duration_ms
		FROM sync_runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []SyncRun
	for rows.Next() {
		r, err := scanSyncRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

func scanSyncRun(row rowScanner) (*SyncRun, error) {
	var r SyncRun
	var startedAt string
	err := row.Scan(&r.ID, &r.RunID, &startedAt, &r.Mode, &r.DaysSynced, &r.TotalXP, &r.Level, &r.DurationMS)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	return &r, nil
}
