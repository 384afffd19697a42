package engine

import (
	"math"

	"github.com/blackwell-systems/clauderank/internal/claude"
)

// Per-unit XP weights for each activity category.
const (
	XPPerSession  = 10
	XPPerMessage  = 1
	XPPerToolCall = 2
	XPPerProject  = 5
	XPPerEdit     = 3
	XPPerCommit   = 5
)

const (
	// DailyXPCap is the hard ceiling on base XP for a single day.
	DailyXPCap = 800
	// DiminishingThreshold is the raw XP above which gains count at half rate.
	DiminishingThreshold = 500
	// FirstSessionBonus multiplies XP for the first session of a day.
	FirstSessionBonus = 1.5
	// MinToolCallsForStreak is the tool-call floor for a day to build a streak.
	MinToolCallsForStreak = 5
)

// streakTiers is ordered by descending threshold.
var streakTiers = []struct {
	days int
	mult float64
}{
	{30, 2.0},
	{14, 1.5},
	{7, 1.25},
}

// XPBreakdown is the weighted raw XP contributed by each category.
type XPBreakdown struct {
	Sessions  int `json:"sessions"`
	Messages  int `json:"messages"`
	ToolCalls int `json:"tool_calls"`
	Projects  int `json:"projects"`
	Edits     int `json:"edits"`
	Commits   int `json:"commits"`
}

// Raw returns the weighted sum before diminishing returns and the cap.
func (b XPBreakdown) Raw() int {
	return b.Sessions + b.Messages + b.ToolCalls + b.Projects + b.Edits + b.Commits
}

// DailyXP is the XP earned on one day.
type DailyXP struct {
	Date       string      `json:"date"`
	BaseXP     int         `json:"base_xp"`
	Multiplier float64     `json:"multiplier"`
	FinalXP    int         `json:"final_xp"`
	Breakdown  XPBreakdown `json:"breakdown"`
}

// StreakMultiplier returns the multiplier for the highest streak threshold
// reached by streakDays.
func StreakMultiplier(streakDays int) float64 {
	for _, t := range streakTiers {
		if streakDays >= t.days {
			return t.mult
		}
	}
	return 1.0
}

// CalculateDailyXP converts one day's activity counters into XP. Negative
// counts are treated as zero.
func CalculateDailyXP(a claude.DailyActivity, firstSession bool, streakDays int) DailyXP {
	sessions := nonNegative(a.SessionCount)
	b := XPBreakdown{
		Sessions:  sessions * XPPerSession,
		Messages:  nonNegative(a.MessageCount) * XPPerMessage,
		ToolCalls: nonNegative(a.ToolCallCount) * XPPerToolCall,
		Projects:  nonNegative(a.ProjectCount) * XPPerProject,
		Edits:     nonNegative(a.EditCount) * XPPerEdit,
		Commits:   nonNegative(a.CommitCount) * XPPerCommit,
	}

	base := applyDiminishingReturns(b.Raw())
	if base > DailyXPCap {
		base = DailyXPCap
	}

	mult := StreakMultiplier(streakDays)
	if firstSession && sessions > 0 {
		mult *= FirstSessionBonus
	}

	return DailyXP{
		Date:       a.Date,
		BaseXP:     base,
		Multiplier: mult,
		FinalXP:    int(math.Floor(float64(base) * mult)),
		Breakdown:  b,
	}
}

// applyDiminishingReturns counts raw XP above the threshold at 50%, floored.
func applyDiminishingReturns(raw int) int {
	if raw <= DiminishingThreshold {
		return raw
	}
	return DiminishingThreshold + (raw-DiminishingThreshold)/2
}

// TotalXP sums the final XP of every day.
func TotalXP(days []DailyXP) int {
	total := 0
	for _, d := range days {
		total += d.FinalXP
	}
	return total
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
