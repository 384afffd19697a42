package engine

import (
	"fmt"
	"sort"
	"time"
)

// Wrapped periods.
const (
	PeriodMonth   = "month"
	PeriodYear    = "year"
	PeriodAllTime = "all-time"
)

// allTimeStart sorts before any real date.
const allTimeStart = "0000-01-01"

// DayRecord is one persisted day as the wrapped summary consumes it.
type DayRecord struct {
	Date      string
	XP        int
	Messages  int
	Sessions  int
	ToolCalls int
	StreakDay bool
}

// ToolCount pairs a tool name with its invocation count.
type ToolCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Wrapped summarizes activity over a period.
type Wrapped struct {
	Period         string      `json:"period"`
	Start          string      `json:"start"`
	End            string      `json:"end"`
	TotalXPEarned  int         `json:"total_xp_earned"`
	TotalMessages  int         `json:"total_messages"`
	TotalSessions  int         `json:"total_sessions"`
	TotalToolCalls int         `json:"total_tool_calls"`
	ActiveDays     int         `json:"active_days"`
	TotalDays      int         `json:"total_days"`
	AvgXPPerDay    int         `json:"avg_xp_per_day"`
	BusiestDay     string      `json:"busiest_day,omitempty"`
	BusiestDayXP   int         `json:"busiest_day_xp"`
	BusiestHour    *int        `json:"busiest_hour"`
	PeriodStreak   int         `json:"period_streak"`
	TopTools       []ToolCount `json:"top_tools"`
	CurrentLevel   int         `json:"current_level"`
	PrestigeCount  int         `json:"prestige_count"`
	ProjectsCount  int         `json:"projects_count"`
	LifetimeXP     int         `json:"lifetime_xp"`
	LongestStreak  int         `json:"longest_streak"`
	MemberSince    string      `json:"member_since"`
}

// WrappedProfile carries the lifetime figures copied into every summary.
type WrappedProfile struct {
	Level         int
	PrestigeCount int
	TotalXP       int
	LongestStreak int
	MemberSince   string
}

// PeriodDates returns the inclusive date range for a period relative to ref.
func PeriodDates(period string, ref time.Time) (start, end string, err error) {
	day := Day(ref)
	switch period {
	case PeriodMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return FormatDate(first), FormatDate(first.AddDate(0, 1, -1)), nil
	case PeriodYear:
		return fmt.Sprintf("%04d-01-01", day.Year()), fmt.Sprintf("%04d-12-31", day.Year()), nil
	case PeriodAllTime:
		return allTimeStart, FormatDate(day), nil
	default:
		return "", "", fmt.Errorf("unknown period %q (want %s, %s or %s)", period, PeriodMonth, PeriodYear, PeriodAllTime)
	}
}

// AggregateWrapped builds a period summary from the days inside the period.
// hourCounts maps hour-of-day strings to session counts.
func AggregateWrapped(days []DayRecord, p WrappedProfile, toolUsage map[string]int, projects int, hourCounts map[string]int) Wrapped {
	w := Wrapped{
		CurrentLevel:  max(p.Level, 1),
		PrestigeCount: p.PrestigeCount,
		ProjectsCount: projects,
		LifetimeXP:    p.TotalXP,
		LongestStreak: p.LongestStreak,
		MemberSince:   p.MemberSince,
		TopTools:      []ToolCount{},
	}
	if w.MemberSince == "" {
		w.MemberSince = "unknown"
	}
	if len(days) == 0 {
		w.ProjectsCount = 0
		return w
	}

	streakDays := NewDateSet()
	for _, d := range days {
		w.TotalXPEarned += d.XP
		w.TotalMessages += d.Messages
		w.TotalSessions += d.Sessions
		w.TotalToolCalls += d.ToolCalls
		if d.StreakDay {
			w.ActiveDays++
			streakDays.Add(d.Date)
		}
		if w.BusiestDay == "" || d.XP > w.BusiestDayXP {
			w.BusiestDay, w.BusiestDayXP = d.Date, d.XP
		}
	}
	w.TotalDays = len(days)
	if w.ActiveDays > 0 {
		w.AvgXPPerDay = w.TotalXPEarned / w.ActiveDays
	}
	w.BusiestHour = BusiestHour(hourCounts)
	w.PeriodStreak = longestRun(streakDays.Sorted())
	w.TopTools = TopTools(toolUsage, 5)
	return w
}

// TopTools returns the n most used tools, ties broken by name.
func TopTools(usage map[string]int, n int) []ToolCount {
	out := make([]ToolCount, 0, len(usage))
	for name, c := range usage {
		out = append(out, ToolCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// BusiestHour returns the earliest hour with the highest count, or nil when
// every hour is zero.
func BusiestHour(hourCounts map[string]int) *int {
	best, bestCount := -1, 0
	for h := 0; h < 24; h++ {
		if c := HourBuckets(hourCounts, h, h); c > bestCount {
			best, bestCount = h, c
		}
	}
	if best < 0 {
		return nil
	}
	return &best
}
