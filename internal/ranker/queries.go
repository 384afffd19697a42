package ranker

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/clauderank/internal/claude"
	"github.com/blackwell-systems/clauderank/internal/engine"
	"github.com/blackwell-systems/clauderank/internal/store"
)

// Achievements returns every catalog entry with its stored progress. Entries
// never evaluated show zero progress.
func (s *Service) Achievements(_ context.Context) ([]engine.AchievementStatus, error) {
	stored, err := storedAchievements(s.db)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]engine.AchievementStatus, len(stored))
	for _, st := range stored {
		byID[st.Def.ID] = st
	}
	out := make([]engine.AchievementStatus, 0, len(engine.Achievements))
	for _, def := range engine.Achievements {
		st, ok := byID[def.ID]
		if !ok {
			st = engine.AchievementStatus{Def: def}
		}
		out = append(out, st)
	}
	return out, nil
}

// History returns stored days in [start, end]. Empty bounds are open.
func (s *Service) History(_ context.Context, start, end string) ([]store.DailyStat, error) {
	days, err := s.db.DailyStatsRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("reading days: %w", err)
	}
	return days, nil
}

// EngagementHistory returns rated days in [start, end].
func (s *Service) EngagementHistory(_ context.Context, start, end string) ([]store.EngagementRecord, error) {
	rows, err := s.db.EngagementRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("reading engagement: %w", err)
	}
	return rows, nil
}

// Wrapped summarizes a month, a year or all time. Tool usage and hour
// buckets come from the Claude data directory; it is read only for the
// transcripts that can fall inside the period.
func (s *Service) Wrapped(ctx context.Context, period string) (*engine.Wrapped, error) {
	now := s.opts.Now().In(s.opts.Location)
	start, end, err := engine.PeriodDates(period, now)
	if err != nil {
		return nil, err
	}

	p, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := s.db.DailyStatsRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("reading days: %w", err)
	}
	days := make([]engine.DayRecord, len(stored))
	for i, d := range stored {
		days[i] = engine.DayRecord{
			Date: d.Date, XP: d.TotalXP, Messages: d.Messages,
			Sessions: d.Sessions, ToolCalls: d.ToolCalls, StreakDay: d.StreakDay,
		}
	}

	opts := claude.IngestOptions{Location: s.opts.Location}
	if t, ok := engine.ParseDate(start); ok && period != engine.PeriodAllTime {
		opts.TranscriptsSince = t
	}
	tools := map[string]int{}
	var hours map[string]int
	projects := 0
	act, err := claude.Ingest(ctx, s.opts.ClaudeHome, opts)
	if err != nil {
		s.opts.Logger.Warn("reading Claude data for wrapped", "error", err)
	} else if act != nil {
		for date, dt := range act.Tools.ByDay {
			if date < start || date > end {
				continue
			}
			for name, n := range dt.Tools {
				tools[name] += n
			}
		}
		hours = act.Stats.HourCounts
		projects = claude.ProjectsBetween(act.History, s.opts.Location, start, end)
		if period == engine.PeriodAllTime && projects == 0 {
			projects = len(act.Projects)
		}
	}

	w := engine.AggregateWrapped(days, engine.WrappedProfile{
		Level:         p.Level,
		PrestigeCount: p.PrestigeCount,
		TotalXP:       p.TotalXP,
		LongestStreak: p.LongestStreak,
		MemberSince:   p.MemberSince,
	}, tools, projects, hours)
	w.Period, w.Start, w.End = period, start, end
	return &w, nil
}
