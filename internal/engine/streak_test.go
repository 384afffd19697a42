package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var streakRef = time.Date(2026, 1, 10, 15, 30, 0, 0, time.UTC)

func dateRange(start string, n int) []string {
	day, _ := ParseDate(start)
	out := make([]string, n)
	for i := range out {
		out[i] = FormatDate(day.AddDate(0, 0, i))
	}
	return out
}

func TestCalculateStreak_Empty(t *testing.T) {
	assert.Equal(t, StreakState{}, CalculateStreak(NewDateSet(), streakRef))
	assert.Equal(t, StreakState{}, CalculateStreak(nil, streakRef))
}

func TestCalculateStreak(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  StreakState
	}{
		{
			name:  "active today",
			dates: dateRange("2026-01-08", 3),
			want:  StreakState{CurrentStreak: 3, LongestStreak: 3, LastActiveDate: "2026-01-10", IsActiveToday: true},
		},
		{
			name:  "ends yesterday",
			dates: dateRange("2026-01-07", 3),
			want:  StreakState{CurrentStreak: 3, LongestStreak: 3, LastActiveDate: "2026-01-09"},
		},
		{
			name:  "broken",
			dates: dateRange("2026-01-05", 3),
			want:  StreakState{CurrentStreak: 0, LongestStreak: 3, LastActiveDate: "2026-01-07"},
		},
		{
			name:  "longest before gap",
			dates: append(dateRange("2025-12-01", 14), "2026-01-09", "2026-01-10"),
			want:  StreakState{CurrentStreak: 2, LongestStreak: 14, FreezeCount: 2, LastActiveDate: "2026-01-10", IsActiveToday: true},
		},
		{
			name:  "freezes capped",
			dates: dateRange("2025-12-12", 30),
			want:  StreakState{CurrentStreak: 30, LongestStreak: 30, FreezeCount: MaxFreezes, LastActiveDate: "2026-01-10", IsActiveToday: true},
		},
		{
			name:  "single day",
			dates: []string{"2026-01-10"},
			want:  StreakState{CurrentStreak: 1, LongestStreak: 1, LastActiveDate: "2026-01-10", IsActiveToday: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateStreak(NewDateSet(tt.dates...), streakRef)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.LongestStreak, got.CurrentStreak)
		})
	}
}

func TestCalculateStreak_Idempotent(t *testing.T) {
	active := NewDateSet(append(dateRange("2025-11-01", 9), dateRange("2026-01-03", 8)...)...)

	first := CalculateStreak(active, streakRef)
	second := CalculateStreak(active, streakRef)

	assert.Equal(t, first, second)
	assert.Len(t, active, 17)
}

func TestApplyFreeze(t *testing.T) {
	s := StreakState{CurrentStreak: 12, LongestStreak: 20, FreezeCount: 2, LastActiveDate: "2026-01-08", IsActiveToday: true}

	got := ApplyFreeze(s)
	assert.Equal(t, 12, got.CurrentStreak)
	assert.Equal(t, 1, got.FreezeCount)
	assert.Equal(t, 20, got.LongestStreak)
	assert.False(t, got.IsActiveToday)

	s.FreezeCount = 0
	got = ApplyFreeze(s)
	assert.Equal(t, 0, got.CurrentStreak)
	assert.Equal(t, 0, got.FreezeCount)
	assert.Equal(t, 20, got.LongestStreak)
}

func TestApplyGracePeriod(t *testing.T) {
	s := StreakState{CurrentStreak: 10, LongestStreak: 15, FreezeCount: 2}
	tests := []struct {
		hours float64
		want  int
	}{
		{0, 10},
		{24, 10},
		{24.5, 7},
		{48, 7},
		{48.01, 0},
		{500, 0},
	}
	for _, tt := range tests {
		got := ApplyGracePeriod(s, tt.hours)
		assert.Equal(t, tt.want, got.CurrentStreak, "hours=%v", tt.hours)
		assert.Equal(t, 15, got.LongestStreak)
		assert.Equal(t, 2, got.FreezeCount)
	}
}

func TestEarnFreeze(t *testing.T) {
	assert.Equal(t, 0, EarnFreeze(6, 0))
	assert.Equal(t, 1, EarnFreeze(7, 0))
	assert.Equal(t, 3, EarnFreeze(21, 0))
	assert.Equal(t, 3, EarnFreeze(100, 0))
	assert.Equal(t, 3, EarnFreeze(14, 2))
}

func TestStreakEndingOn(t *testing.T) {
	active := NewDateSet("2026-02-01", "2026-02-02", "2026-02-03", "2026-02-05")
	assert.Equal(t, 3, StreakEndingOn(active, "2026-02-03"))
	assert.Equal(t, 1, StreakEndingOn(active, "2026-02-05"))
	assert.Equal(t, 0, StreakEndingOn(active, "2026-02-04"))
	assert.Equal(t, 0, StreakEndingOn(active, "garbage"))
}
