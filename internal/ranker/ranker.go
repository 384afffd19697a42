// Package ranker ties ingestion, the pure rank engines and the store
// together. It is the only package that writes rank state.
package ranker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blackwell-systems/clauderank/internal/claude"
	"github.com/blackwell-systems/clauderank/internal/config"
	"github.com/blackwell-systems/clauderank/internal/engine"
	"github.com/blackwell-systems/clauderank/internal/export"
	"github.com/blackwell-systems/clauderank/internal/logger"
	"github.com/blackwell-systems/clauderank/internal/rating"
	"github.com/blackwell-systems/clauderank/internal/store"
)

var (
	// ErrNoData is returned when Claude Code has not written a stats cache yet.
	ErrNoData = errors.New("no Claude Code usage data found")
	// ErrCannotPrestige is returned when prestige is requested below the
	// required XP.
	ErrCannotPrestige = errors.New("not enough XP to prestige")
)

// Sync modes recorded in the audit trail.
const (
	ModeFull        = "full"
	ModeIncremental = "incremental"
)

// Options configures a Service.
type Options struct {
	// ClaudeHome is the Claude Code data directory.
	ClaudeHome string
	// DataDir receives rank.json and badge.svg after every write. Empty
	// disables the derived files.
	DataDir string
	// Recovery is the streak recovery policy: none, freeze or grace.
	Recovery string
	// Location decides calendar days. Nil means time.Local.
	Location *time.Location
	// Now is the clock. Nil means time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Service runs syncs and reads rank state.
type Service struct {
	db   *store.DB
	opts Options
}

// New returns a Service over db.
func New(db *store.DB, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Recovery == "" {
		opts.Recovery = config.RecoveryNone
	}
	return &Service{db: db, opts: opts}
}

// SyncResult summarizes one sync.
type SyncResult struct {
	RunID           string                  `json:"run_id"`
	Mode            string                  `json:"mode"`
	DaysSynced      int                     `json:"days_synced"`
	TotalXP         int                     `json:"total_xp"`
	PreviousXP      int                     `json:"previous_xp"`
	Level           int                     `json:"level"`
	PreviousLevel   int                     `json:"previous_level"`
	TierName        string                  `json:"tier_name"`
	Streak          engine.StreakState      `json:"streak"`
	ERMu            float64                 `json:"er_mu"`
	ERTier          string                  `json:"er_tier"`
	NewAchievements []engine.AchievementDef `json:"new_achievements"`
	TotalUnlocked   int                     `json:"total_achievements_unlocked"`
}

// LeveledUp reports whether the sync raised the level.
func (r *SyncResult) LeveledUp() bool {
	return r.Level > r.PreviousLevel
}

// Sync replays the full activity history from scratch and rewrites every
// derived row.
func (s *Service) Sync(ctx context.Context) (*SyncResult, error) {
	start := s.opts.Now()
	act, err := s.ingest(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	days := engine.SortActivities(act.Days)

	var res *SyncResult
	err = s.db.WithTx(func(tx *store.Tx) error {
		xpRows := engine.CalculateHistoricalXP(days, engine.NewDateSet())
		erRows := rating.CalculateHistoricalER(days)
		if err := writeDays(tx, days, xpRows, erRows); err != nil {
			return err
		}
		res, err = s.finish(tx, act, ModeFull, len(days), start)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, s.rebuild()
}

// IncrementalSync replays only from the most recent stored day onward,
// seeding the replay with stored streak days and the last rating before
// that day. It falls back to Sync when nothing is stored yet.
func (s *Service) IncrementalSync(ctx context.Context) (*SyncResult, error) {
	latest, err := s.db.LatestDailyStat()
	if err != nil {
		return nil, fmt.Errorf("reading latest day: %w", err)
	}
	if latest == nil {
		return s.Sync(ctx)
	}

	cutoff := latest.Date
	// Transcripts last written before the cutoff day hold no tool use for
	// the days being replayed.
	since, err := time.ParseInLocation(engine.DateLayout, cutoff, s.opts.Location)
	if err != nil {
		return nil, fmt.Errorf("stored date %q: %w", cutoff, err)
	}

	start := s.opts.Now()
	act, err := s.ingest(ctx, since)
	if err != nil {
		return nil, err
	}

	var pending []claude.DailyActivity
	for _, a := range engine.SortActivities(act.Days) {
		if a.Date >= cutoff {
			pending = append(pending, a)
		}
	}

	var res *SyncResult
	err = s.db.WithTx(func(tx *store.Tx) error {
		known, err := tx.StreakDatesBefore(cutoff)
		if err != nil {
			return fmt.Errorf("reading streak days: %w", err)
		}
		prev, err := tx.LatestEngagementBefore(cutoff)
		if err != nil {
			return fmt.Errorf("reading engagement: %w", err)
		}

		xp := engine.NewXPReplay(engine.NewDateSet(known...))
		er := rating.NewReplay(rating.NewState(), "")
		if prev != nil {
			er = rating.NewReplay(rating.State{
				Mu: prev.Mu, Phi: prev.Phi, Sigma: prev.Sigma, LastRatedDate: prev.Date,
			}, prev.Tier)
		}

		xpRows := make([]engine.DailyXP, 0, len(pending))
		var erRows []rating.DayResult
		for _, a := range pending {
			var x engine.DailyXP
			xp, x = xp.Step(a)
			xpRows = append(xpRows, x)

			var (
				r  rating.DayResult
				ok bool
			)
			if er, r, ok = er.Step(a); ok {
				erRows = append(erRows, r)
			}
		}
		if err := writeDays(tx, pending, xpRows, erRows); err != nil {
			return err
		}
		res, err = s.finish(tx, act, ModeIncremental, len(pending), start)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, s.rebuild()
}

// ingest reads the Claude data directory. A non-zero since skips older
// transcripts.
func (s *Service) ingest(ctx context.Context, since time.Time) (*claude.Activity, error) {
	act, err := claude.Ingest(ctx, s.opts.ClaudeHome, claude.IngestOptions{
		Location:         s.opts.Location,
		TranscriptsSince: since,
	})
	if err != nil {
		return nil, fmt.Errorf("reading Claude data: %w", err)
	}
	if act == nil {
		return nil, ErrNoData
	}
	s.opts.Logger.Debug("ingested activity", "days", len(act.Days), "projects", len(act.Projects))
	return act, nil
}

// writeDays upserts one daily_stats row per activity and one
// engagement_history row per rated day. xpRows is parallel to days.
func writeDays(tx *store.Tx, days []claude.DailyActivity, xpRows []engine.DailyXP, erRows []rating.DayResult) error {
	for i, a := range days {
		x := xpRows[i]
		if err := tx.UpsertDailyStat(&store.DailyStat{
			Date:        a.Date,
			TotalXP:     x.FinalXP,
			BaseXP:      x.BaseXP,
			Multiplier:  x.Multiplier,
			Messages:    a.MessageCount,
			Sessions:    a.SessionCount,
			ToolCalls:   a.ToolCallCount,
			Projects:    a.ProjectCount,
			Edits:       a.EditCount,
			Commits:     a.CommitCount,
			UniqueTools: a.UniqueToolCount,
			StreakDay:   engine.QualifiesForStreak(a),
		}); err != nil {
			return err
		}
	}
	for _, r := range erRows {
		if err := tx.UpsertEngagement(&store.EngagementRecord{
			Date:         r.Date,
			Mu:           r.Mu,
			Phi:          r.Phi,
			Sigma:        r.Sigma,
			QualityScore: r.QualityScore,
			MuBefore:     r.MuBefore,
			PhiBefore:    r.PhiBefore,
			Tier:         r.Tier,
		}); err != nil {
			return err
		}
	}
	return nil
}

// finish recomputes the aggregates from the stored history, updates
// achievements and the profile, and records the run. It runs inside the
// sync transaction.
func (s *Service) finish(tx *store.Tx, act *claude.Activity, mode string, synced int, start time.Time) (*SyncResult, error) {
	now := s.opts.Now().In(s.opts.Location)

	kv, err := tx.AllProfile()
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	before := decodeProfile(kv)

	stored, err := tx.DailyStatsRange("", "")
	if err != nil {
		return nil, fmt.Errorf("reading days: %w", err)
	}
	total := 0
	for _, d := range stored {
		total += d.TotalXP
	}

	dates, err := tx.StreakDatesBefore("")
	if err != nil {
		return nil, fmt.Errorf("reading streak days: %w", err)
	}
	active := engine.NewDateSet(dates...)
	streak := engine.CalculateStreak(active, now)
	streak = RecoverStreak(streak, active, now, s.opts.Recovery)

	er, err := tx.LatestEngagementBefore("")
	if err != nil {
		return nil, fmt.Errorf("reading engagement: %w", err)
	}

	stats := achievementStats(act, streak)
	prev, err := storedAchievements(tx)
	if err != nil {
		return nil, err
	}
	today := now.UTC()
	cur := engine.MergeAchievements(prev, engine.CheckAchievements(stats), engine.FormatDate(today))
	unlocked := 0
	for _, st := range cur {
		if st.Unlocked {
			unlocked++
			err = tx.UnlockAchievement(st.Def.ID, st.Def.Name, today)
		} else {
			err = tx.SetAchievementProgress(st.Def.ID, st.Def.Name, st.Progress)
		}
		if err != nil {
			return nil, err
		}
	}

	p := before
	p.TotalXP = total
	lp := engine.Progress(total, p.PrestigeCount)
	p.Level, p.TierName, p.TierColor = lp.Level, lp.Tier.Name, lp.Tier.Color
	p.XPInLevel, p.XPForNext = lp.XPInLevel, lp.XPForNext
	p.CurrentStreak = streak.CurrentStreak
	p.LongestStreak = streak.LongestStreak
	p.FreezeCount = streak.FreezeCount
	p.LastActiveDate = streak.LastActiveDate
	p.TotalSessions = stats.TotalSessions
	p.TotalMessages = stats.TotalMessages
	p.TotalToolCalls = stats.TotalToolCalls
	p.UniqueProjects = stats.UniqueProjects
	p.DaysSynced = len(stored)
	p.AchievementsUnlocked = unlocked
	p.LastSync = now.UTC().Format(time.RFC3339)
	p.MemberSince = act.Stats.FirstSessionDate
	if er != nil {
		p.ERMu, p.ERPhi, p.ERSigma, p.ERTier, p.ERLastRated = er.Mu, er.Phi, er.Sigma, er.Tier, er.Date
	}
	if err := tx.SetProfileValues(p.encode()); err != nil {
		return nil, err
	}

	run := &store.SyncRun{
		StartedAt:  start,
		Mode:       mode,
		DaysSynced: synced,
		TotalXP:    total,
		Level:      p.Level,
		DurationMS: s.opts.Now().Sub(start).Milliseconds(),
	}
	if _, err := tx.RecordSyncRun(run); err != nil {
		return nil, err
	}

	res := &SyncResult{
		RunID:           run.RunID,
		Mode:            mode,
		DaysSynced:      synced,
		TotalXP:         total,
		PreviousXP:      before.TotalXP,
		Level:           p.Level,
		PreviousLevel:   before.Level,
		TierName:        p.TierName,
		Streak:          streak,
		ERMu:            p.ERMu,
		ERTier:          p.ERTier,
		NewAchievements: engine.NewlyUnlocked(prev, cur),
		TotalUnlocked:   unlocked,
	}
	if !before.Synced() {
		// A first sync is not a level-up from level 1.
		res.PreviousLevel = p.Level
	}
	s.opts.Logger.Info("sync complete",
		"run_id", run.RunID, "mode", mode, "days", synced,
		"total_xp", total, "level", p.Level, "new_achievements", len(res.NewAchievements))
	return res, nil
}

// achievementStats builds the lifetime snapshot achievements are checked
// against. Hours 0-4 count as night sessions and 5-6 as early ones.
func achievementStats(act *claude.Activity, streak engine.StreakState) engine.AchievementStats {
	st := act.Stats
	return engine.AchievementStats{
		TotalSessions:          st.TotalSessions,
		TotalMessages:          st.TotalMessages,
		TotalToolCalls:         st.TotalToolCalls(),
		NightSessions:          engine.HourBuckets(st.HourCounts, 0, 4),
		EarlySessions:          engine.HourBuckets(st.HourCounts, 5, 6),
		CurrentStreak:          streak.CurrentStreak,
		LongestStreak:          streak.LongestStreak,
		UniqueProjects:         len(act.Projects),
		LongestSessionMessages: st.LongestSession.MessageCount,
	}
}

// storedAchievements converts stored rows into statuses. Rows for IDs no
// longer in the catalog are ignored.
func storedAchievements(q interface {
	GetAchievements() ([]store.AchievementRecord, error)
}) ([]engine.AchievementStatus, error) {
	rows, err := q.GetAchievements()
	if err != nil {
		return nil, fmt.Errorf("reading achievements: %w", err)
	}
	out := make([]engine.AchievementStatus, 0, len(rows))
	for _, r := range rows {
		def, ok := engine.AchievementByID(r.ID)
		if !ok {
			continue
		}
		st := engine.AchievementStatus{Def: def, Progress: r.Progress}
		if r.UnlockedAt != nil {
			st.Unlocked, st.Progress = true, 1
			st.UnlockedAt = engine.FormatDate(r.UnlockedAt.UTC())
		}
		out = append(out, st)
	}
	return out, nil
}

// rebuild regenerates the derived files from the committed profile. A
// failure here does not undo the sync.
func (s *Service) rebuild() error {
	if s.opts.DataDir == "" {
		return nil
	}
	p, err := s.Profile(context.Background())
	if err != nil {
		return err
	}
	if err := export.Rebuild(s.opts.DataDir, p.Snapshot(s.opts.Now())); err != nil {
		return fmt.Errorf("rebuilding %s: %w", export.SnapshotFile, err)
	}
	return nil
}

// Profile returns the stored profile. A store that was never synced yields
// a fresh level-1 profile.
func (s *Service) Profile(_ context.Context) (Profile, error) {
	kv, err := s.db.AllProfile()
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile: %w", err)
	}
	return decodeProfile(kv), nil
}
