package ranker

import (
	"time"

	"github.com/blackwell-systems/clauderank/internal/config"
	"github.com/blackwell-systems/clauderank/internal/engine"
)

// RecoverStreak applies the configured recovery policy to a streak that the
// base calculation has already broken. A streak that is still current, or
// the none policy, leaves s unchanged.
//
// freeze spends one credit per missed day and keeps the run ending on the
// last active date if enough credits are banked. grace measures hours from
// the end of the last active day and scales the run accordingly.
func RecoverStreak(s engine.StreakState, active engine.DateSet, now time.Time, policy string) engine.StreakState {
	if s.CurrentStreak > 0 || s.LastActiveDate == "" {
		return s
	}
	last, ok := engine.ParseDate(s.LastActiveDate)
	if !ok {
		return s
	}
	run := engine.StreakEndingOn(active, s.LastActiveDate)

	switch policy {
	case config.RecoveryFreeze:
		missed := engine.DaysBetween(last, engine.Day(now)) - 1
		if missed < 1 || missed > s.FreezeCount {
			return s
		}
		s.CurrentStreak = run
		for range missed {
			s = engine.ApplyFreeze(s)
		}
	case config.RecoveryGrace:
		end := time.Date(last.Year(), last.Month(), last.Day()+1, 0, 0, 0, 0, now.Location())
		s.CurrentStreak = run
		s = engine.ApplyGracePeriod(s, now.Sub(end).Hours())
	}
	return s
}
