package engine

import "time"

const (
	// MaxFreezes is the most freeze credits that can be banked.
	MaxFreezes = 3
	// FreezeEveryDays is the streak length that earns one freeze credit.
	FreezeEveryDays = 7

	graceFullHours    = 24
	gracePartialHours = 48
	gracePartialRatio = 0.75
)

// StreakState summarizes consecutive-day activity as of a reference date.
type StreakState struct {
	CurrentStreak  int    `json:"current_streak"`
	LongestStreak  int    `json:"longest_streak"`
	FreezeCount    int    `json:"freeze_count"`
	LastActiveDate string `json:"last_active_date,omitempty"`
	IsActiveToday  bool   `json:"is_active_today"`
}

// CalculateStreak computes streak state from the full set of active dates.
// A streak ending yesterday is still current; the caller decides whether a
// recovery policy applies to longer gaps.
func CalculateStreak(active DateSet, ref time.Time) StreakState {
	if len(active) == 0 {
		return StreakState{}
	}

	today := Day(ref)
	sorted := active.Sorted()

	s := StreakState{
		LastActiveDate: sorted[len(sorted)-1],
		IsActiveToday:  active.HasDay(today),
	}

	switch yesterday := today.AddDate(0, 0, -1); {
	case s.IsActiveToday:
		s.CurrentStreak = runEndingAt(active, today)
	case active.HasDay(yesterday):
		s.CurrentStreak = runEndingAt(active, yesterday)
	}

	s.LongestStreak = max(longestRun(sorted), s.CurrentStreak)
	s.FreezeCount = EarnFreeze(s.LongestStreak, 0)
	return s
}

// StreakEndingOn returns the run of consecutive active days ending on date,
// or 0 if date is not active or not a valid date.
func StreakEndingOn(active DateSet, date string) int {
	day, ok := ParseDate(date)
	if !ok {
		return 0
	}
	return runEndingAt(active, day)
}

// runEndingAt counts consecutive active days walking backward from day.
func runEndingAt(active DateSet, day time.Time) int {
	n := 0
	for active.HasDay(day) {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

// longestRun returns the length of the longest run of consecutive dates in
// an ascending list.
func longestRun(sorted []string) int {
	longest, run := 0, 0
	var prev time.Time
	for i, d := range sorted {
		t, ok := ParseDate(d)
		if !ok {
			continue
		}
		if i > 0 && DaysBetween(prev, t) == 1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
		prev = t
	}
	return longest
}

// EarnFreeze adds one freeze per completed week of streak to current,
// capped at MaxFreezes.
func EarnFreeze(streakDays, current int) int {
	return min(current+streakDays/FreezeEveryDays, MaxFreezes)
}

// ApplyFreeze spends a freeze credit to cover one missed day. Without a
// credit the current streak breaks. The longest streak is never changed.
func ApplyFreeze(s StreakState) StreakState {
	s.IsActiveToday = false
	if s.FreezeCount > 0 {
		s.FreezeCount--
		return s
	}
	s.CurrentStreak = 0
	return s
}

// ApplyGracePeriod reduces the current streak by the hours elapsed since the
// last activity. Past 48 hours the streak is gone.
func ApplyGracePeriod(s StreakState, hoursSinceActive float64) StreakState {
	switch {
	case hoursSinceActive <= graceFullHours:
	case hoursSinceActive <= gracePartialHours:
		s.CurrentStreak = int(float64(s.CurrentStreak) * gracePartialRatio)
	default:
		s.CurrentStreak = 0
	}
	return s
}
