package engine

import (
	"sort"
	"time"

	"github.com/blackwell-systems/clauderank/internal/claude"
)

// dayList is an immutable list of qualifying days, most recent first.
// Replay states share their tails, so stepping never mutates an earlier state.
type dayList struct {
	day  time.Time
	next *dayList
}

// XPReplay is the state carried between days of a historical XP replay.
// The zero value replays with no previously known active dates.
type XPReplay struct {
	known  DateSet
	earned *dayList
}

// NewXPReplay starts a replay seeded with dates already known to be active.
// The set is read but never modified.
func NewXPReplay(known DateSet) XPReplay {
	return XPReplay{known: known}
}

// Step computes XP for one day and returns the state for the next day.
// Days must be stepped in ascending date order.
func (r XPReplay) Step(a claude.DailyActivity) (XPReplay, DailyXP) {
	day, ok := ParseDate(a.Date)
	if !ok {
		return r, CalculateDailyXP(a, true, 0)
	}

	result := CalculateDailyXP(a, true, r.priorStreak(day))

	if QualifiesForStreak(a) {
		r.earned = &dayList{day: day, next: r.earned}
	}
	return r, result
}

// Active reports whether d is known or has qualified during this replay.
func (r XPReplay) Active(d string) bool {
	if r.known.Has(d) {
		return true
	}
	for n := r.earned; n != nil; n = n.next {
		if FormatDate(n.day) == d {
			return true
		}
	}
	return false
}

// priorStreak counts consecutive active days ending the day before day.
func (r XPReplay) priorStreak(day time.Time) int {
	streak := 0
	cursor := day.AddDate(0, 0, -1)
	n := r.earned
	for {
		for n != nil && n.day.After(cursor) {
			n = n.next
		}
		matched := n != nil && n.day.Equal(cursor)
		if !matched && !r.known.HasDay(cursor) {
			return streak
		}
		if matched {
			n = n.next
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
}

// CalculateHistoricalXP replays activities in ascending date order and
// returns one result per activity. Input order does not affect the output.
func CalculateHistoricalXP(acts []claude.DailyActivity, known DateSet) []DailyXP {
	sorted := SortActivities(acts)
	results := make([]DailyXP, 0, len(sorted))
	r := NewXPReplay(known)
	var res DailyXP
	for _, a := range sorted {
		r, res = r.Step(a)
		results = append(results, res)
	}
	return results
}

// QualifiesForStreak reports whether a day counts toward streaks. Trivial
// sessions with fewer than MinToolCallsForStreak tool calls do not.
func QualifiesForStreak(a claude.DailyActivity) bool {
	return a.SessionCount > 0 && a.ToolCallCount >= MinToolCallsForStreak
}

// SortActivities returns a copy of acts sorted by date ascending.
func SortActivities(acts []claude.DailyActivity) []claude.DailyActivity {
	sorted := make([]claude.DailyActivity, len(acts))
	copy(sorted, acts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	return sorted
}
