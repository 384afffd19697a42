package store

import "time"

// DailyStat is one persisted day of activity with its XP result.
type DailyStat struct {
	Date        string  `json:"date"`
	TotalXP     int     `json:"total_xp"`
	BaseXP      int     `json:"base_xp"`
	Multiplier  float64 `json:"multiplier"`
	Messages    int     `json:"messages"`
	Sessions    int     `json:"sessions"`
	ToolCalls   int     `json:"tool_calls"`
	Projects    int     `json:"projects"`
	Edits       int     `json:"edits"`
	Commits     int     `json:"commits"`
	UniqueTools int     `json:"unique_tools"`
	StreakDay   bool    `json:"streak_day"`
}

// EngagementRecord is one rated day of engagement history.
type EngagementRecord struct {
	Date         string  `json:"date"`
	Mu           float64 `json:"mu"`
	Phi          float64 `json:"phi"`
	Sigma        float64 `json:"sigma"`
	QualityScore float64 `json:"quality_score"`
	MuBefore     float64 `json:"mu_before"`
	PhiBefore    float64 `json:"phi_before"`
	Tier         string  `json:"tier"`
}

// AchievementRecord is the persisted state of one achievement.
type AchievementRecord struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
	Progress   float64    `json:"progress"`
}

// SyncRun is one row of the sync audit trail.
type SyncRun struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	Mode       string    `json:"mode"`
	DaysSynced int       `json:"days_synced"`
	TotalXP    int       `json:"total_xp"`
	Level      int       `json:"level"`
	DurationMS int64     `json:"duration_ms"`
}
