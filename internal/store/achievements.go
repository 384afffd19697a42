package store

import (
	"database/sql"
	"fmt"
	"time"
)

// GetAchievements returns every stored achievement ordered by ID.
func (q *Queries) GetAchievements() ([]AchievementRecord, error) {
	rows, err := q.q.Query("SELECT id, name, unlocked_at, progress FROM achievements ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []AchievementRecord
	for rows.Next() {
		var (
			a        AchievementRecord
			unlocked sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Name, &unlocked, &a.Progress); err != nil {
			return nil, err
		}
		if unlocked.Valid {
			if t, err := time.Parse(time.RFC3339, unlocked.String); err == nil {
				a.UnlockedAt = &t
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UnlockAchievement marks an achievement unlocked at the given time with
// progress 1. An achievement that is already unlocked keeps its original
// date.
func (q *Queries) UnlockAchievement(id, name string, at time.Time) error {
	_, err := q.q.Exec(
		`INSERT INTO achievements (id, name, unlocked_at, progress) VALUES (?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			unlocked_at = excluded.unlocked_at,
			progress = 1
		WHERE achievements.unlocked_at IS NULL`,
		id, name, at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("unlocking achievement %s: %w", id, err)
	}
	return nil
}

// SetAchievementProgress records progress for a locked achievement.
// Unlocked achievements are left untouched.
func (q *Queries) SetAchievementProgress(id, name string, progress float64) error {
	_, err := q.q.Exec(
		`INSERT INTO achievements (id, name, progress) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			progress = excluded.progress
		WHERE achievements.unlocked_at IS NULL`,
		id, name, progress,
	)
	if err != nil {
		return fmt.Errorf("updating achievement %s: %w", id, err)
	}
	return nil
}
