// Package engine implements the progression rules for clauderank: daily XP,
// historical XP replay, streaks, levels, tiers, prestige, achievements and
// wrapped summaries. Everything here is a pure function of its inputs.
package engine

import (
	"sort"
	"time"
)

// DateLayout is the calendar date format used for every stored date.
const DateLayout = "2006-01-02"

// DateSet is a set of calendar dates in YYYY-MM-DD form.
type DateSet map[string]struct{}

// NewDateSet returns a set containing the given dates. Unparsable dates are
// dropped.
func NewDateSet(dates ...string) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// Add inserts d if it is a valid calendar date.
func (s DateSet) Add(d string) {
	if t, ok := ParseDate(d); ok {
		s[FormatDate(t)] = struct{}{}
	}
}

// Has reports whether d is in the set.
func (s DateSet) Has(d string) bool {
	_, ok := s[d]
	return ok
}

// HasDay reports whether the calendar day of t is in the set.
func (s DateSet) HasDay(t time.Time) bool {
	return s.Has(FormatDate(t))
}

// Sorted returns the dates in ascending order.
func (s DateSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the set.
func (s DateSet) Clone() DateSet {
	out := make(DateSet, len(s))
	for d := range s {
		out[d] = struct{}{}
	}
	return out
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate formats the calendar day of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Day truncates t to its calendar day, keeping the wall date of t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
