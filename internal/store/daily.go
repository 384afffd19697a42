package store

import (
	"database/sql"
	"fmt"
)

const dailyStatColumns = `date, total_xp, base_xp, multiplier, messages, sessions, tool_calls,
	projects, edits, commits, unique_tools, streak_day`

// UpsertDailyStat inserts or replaces the row for ds.Date.
func (q *Queries) UpsertDailyStat(ds *DailyStat) error {
	_, err := q.q.Exec(
		`INSERT INTO daily_stats (`+dailyStatColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			total_xp = excluded.total_xp,
			base_xp = excluded.base_xp,
			multiplier = excluded.multiplier,
			messages = excluded.messages,
			sessions = excluded.sessions,
			tool_calls = excluded.tool_calls,
			projects = excluded.projects,
			edits = excluded.edits,
			commits = excluded.commits,
			unique_tools = excluded.unique_tools,
			streak_day = excluded.streak_day`,
		ds.Date, ds.TotalXP, ds.BaseXP, ds.Multiplier, ds.Messages, ds.Sessions, ds.ToolCalls,
		ds.Projects, ds.Edits, ds.Commits, ds.UniqueTools, ds.StreakDay,
	)
	if err != nil {
		return fmt.Errorf("upserting daily stat %s: %w", ds.Date, err)
	}
	return nil
}

// DailyStatsRange returns the days in [start, end] ordered by date. Empty
// bounds are open.
func (q *Queries) DailyStatsRange(start, end string) ([]DailyStat, error) {
	if end == "" {
		end = "9999-12-31"
	}
	rows, err := q.q.Query(
		`SELECT `+dailyStatColumns+` FROM daily_stats
		WHERE date >= ? AND date <= ? ORDER BY date`,
		start, end,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var stats []DailyStat
	for rows.Next() {
		ds, err := scanDailyStat(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, *ds)
	}
	return stats, rows.Err()
}

// LatestDailyStat returns the most recent day, or nil if none exist.
func (q *Queries) LatestDailyStat() (*DailyStat, error) {
	row := q.q.QueryRow(`SELECT ` + dailyStatColumns + ` FROM daily_stats ORDER BY date DESC LIMIT 1`)
	ds, err := scanDailyStat(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ds, err
}

// StreakDatesBefore returns the streak-qualifying dates strictly before
// date, ascending. An empty date returns all of them.
func (q *Queries) StreakDatesBefore(date string) ([]string, error) {
	if date == "" {
		date = "9999-12-31~"
	}
	rows, err := q.q.Query(
		"SELECT date FROM daily_stats WHERE streak_day AND date < ? ORDER BY date",
		date,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// CountDailyStats returns how many days are stored.
func (q *Queries) CountDailyStats() (int, error) {
	var n int
	err := q.q.QueryRow("SELECT COUNT(*) FROM daily_stats").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDailyStat(row rowScanner) (*DailyStat, error) {
	var ds DailyStat
	err := row.Scan(
		&ds.Date, &ds.TotalXP, &ds.BaseXP, &ds.Multiplier, &ds.Messages, &ds.Sessions, &ds.ToolCalls,
		&ds.Projects, &ds.Edits, &ds.Commits, &ds.UniqueTools, &ds.StreakDay,
	)
	if err != nil {
		return nil, err
	}
	return &ds, nil
}
