package store

import (
	"errors"
	"testing"
	"time"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTest(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != currentSchemaVersion {
		t.Errorf("version = %d, want %d", v, currentSchemaVersion)
	}
}

func TestOpen_File(t *testing.T) {
	db, err := Open(t.TempDir() + "/nested/rank.db")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = db.Close() }()
	if err := db.SetProfile("k", "v"); err != nil {
		t.Fatalf("SetProfile: %v", err)
	}
}

func TestDailyStats_UpsertAndRange(t *testing.T) {
	db := openTest(t)
	days := []DailyStat{
		{Date: "2026-01-03", TotalXP: 30, BaseXP: 30, Multiplier: 1, Sessions: 1, ToolCalls: 2},
		{Date: "2026-01-01", TotalXP: 10, BaseXP: 10, Multiplier: 1, Sessions: 1, ToolCalls: 9, StreakDay: true},
		{Date: "2026-01-02", TotalXP: 20, BaseXP: 16, Multiplier: 1.25, Sessions: 2, ToolCalls: 7, StreakDay: true},
	}
	for i := range days {
		if err := db.UpsertDailyStat(&days[i]); err != nil {
			t.Fatalf("UpsertDailyStat: %v", err)
		}
	}

	// Replacing a row keeps one row per date.
	days[0].TotalXP = 99
	if err := db.UpsertDailyStat(&days[0]); err != nil {
		t.Fatalf("UpsertDailyStat: %v", err)
	}
	n, err := db.CountDailyStats()
	if err != nil || n != 3 {
		t.Fatalf("CountDailyStats = %d, %v; want 3", n, err)
	}

	got, err := db.DailyStatsRange("2026-01-02", "")
	if err != nil {
		t.Fatalf("DailyStatsRange: %v", err)
	}
	if len(got) != 2 || got[0].Date != "2026-01-02" || got[1].TotalXP != 99 {
		t.Errorf("range = %+v", got)
	}
	if got[0].Multiplier != 1.25 || !got[0].StreakDay {
		t.Errorf("row round trip lost fields: %+v", got[0])
	}

	latest, err := db.LatestDailyStat()
	if err != nil || latest == nil || latest.Date != "2026-01-03" {
		t.Errorf("LatestDailyStat = %+v, %v", latest, err)
	}

	dates, err := db.StreakDatesBefore("2026-01-02")
	if err != nil {
		t.Fatalf("StreakDatesBefore: %v", err)
	}
	if len(dates) != 1 || dates[0] != "2026-01-01" {
		t.Errorf("StreakDatesBefore = %v, want [2026-01-01]", dates)
	}
	all, _ := db.StreakDatesBefore("")
	if len(all) != 2 {
		t.Errorf("all streak dates = %v, want 2", all)
	}
}

func TestLatestDailyStat_Empty(t *testing.T) {
	db := openTest(t)
	ds, err := db.LatestDailyStat()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds != nil {
		t.Errorf("expected nil, got %+v", ds)
	}
}

func TestEngagement(t *testing.T) {
	db := openTest(t)
	for _, r := range []EngagementRecord{
		{Date: "2026-01-01", Mu: 1510, Phi: 300, Sigma: 0.06, QualityScore: 0.6, MuBefore: 1500, PhiBefore: 350, Tier: "Observer"},
		{Date: "2026-01-05", Mu: 1530, Phi: 280, Sigma: 0.06, QualityScore: 0.7, MuBefore: 1510, PhiBefore: 300, Tier: "Observer"},
	} {
		if err := db.UpsertEngagement(&r); err != nil {
			t.Fatalf("UpsertEngagement: %v", err)
		}
	}

	prev, err := db.LatestEngagementBefore("2026-01-05")
	if err != nil || prev == nil || prev.Date != "2026-01-01" {
		t.Fatalf("LatestEngagementBefore = %+v, %v", prev, err)
	}
	last, _ := db.LatestEngagementBefore("")
	if last == nil || last.Mu != 1530 {
		t.Errorf("latest = %+v, want mu 1530", last)
	}
	none, err := db.LatestEngagementBefore("2026-01-01")
	if err != nil || none != nil {
		t.Errorf("before first = %+v, %v; want nil", none, err)
	}

	rng, err := db.EngagementRange("", "2026-01-04")
	if err != nil || len(rng) != 1 {
		t.Errorf("EngagementRange = %+v, %v", rng, err)
	}
}

func TestAchievements_UnlockIsPinned(t *testing.T) {
	db := openTest(t)
	first := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	if err := db.SetAchievementProgress("streak_7", "Week Warrior", 0.5); err != nil {
		t.Fatalf("SetAchievementProgress: %v", err)
	}
	if err := db.UnlockAchievement("streak_7", "Week Warrior", first); err != nil {
		t.Fatalf("UnlockAchievement: %v", err)
	}
	// Neither a later unlock nor a progress update may move it.
	if err := db.UnlockAchievement("streak_7", "Week Warrior", first.AddDate(0, 1, 0)); err != nil {
		t.Fatalf("UnlockAchievement: %v", err)
	}
	if err := db.SetAchievementProgress("streak_7", "Week Warrior", 0.2); err != nil {
		t.Fatalf("SetAchievementProgress: %v", err)
	}

	got, err := db.GetAchievements()
	if err != nil {
		t.Fatalf("GetAchievements: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	a := got[0]
	if a.Progress != 1 {
		t.Errorf("Progress = %v, want 1", a.Progress)
	}
	if a.UnlockedAt == nil || !a.UnlockedAt.Equal(first) {
		t.Errorf("UnlockedAt = %v, want %v", a.UnlockedAt, first)
	}
}

func TestProfile(t *testing.T) {
	db := openTest(t)
	if _, ok, err := db.GetProfile("total_xp"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if err := db.SetProfileValues(map[string]string{"total_xp": "100", "level": "2"}); err != nil {
		t.Fatalf("SetProfileValues: %v", err)
	}
	if err := db.SetProfile("total_xp", "150"); err != nil {
		t.Fatalf("SetProfile: %v", err)
	}
	v, ok, err := db.GetProfile("total_xp")
	if err != nil || !ok || v != "150" {
		t.Errorf("GetProfile = %q, %v, %v", v, ok, err)
	}
	all, err := db.AllProfile()
	if err != nil || len(all) != 2 || all["level"] != "2" {
		t.Errorf("AllProfile = %v, %v", all, err)
	}
}

func TestSyncRuns(t *testing.T) {
	db := openTest(t)
	if r, err := db.GetLatestSyncRun(); err != nil || r != nil {
		t.Fatalf("empty GetLatestSyncRun = %+v, %v", r, err)
	}
	run := &SyncRun{Mode: "full", DaysSynced: 5, TotalXP: 1650, Level: 8, DurationMS: 12}
	if _, err := db.RecordSyncRun(run); err != nil {
		t.Fatalf("RecordSyncRun: %v", err)
	}
	if run.RunID == "" {
		t.Error("RunID not assigned")
	}
	if _, err := db.RecordSyncRun(&SyncRun{Mode: "incremental", DaysSynced: 1}); err != nil {
		t.Fatalf("RecordSyncRun: %v", err)
	}

	latest, err := db.GetLatestSyncRun()
	if err != nil || latest == nil || latest.Mode != "incremental" {
		t.Errorf("latest = %+v, %v", latest, err)
	}
	runs, err := db.ListSyncRuns(10)
	if err != nil || len(runs) != 2 || runs[1].RunID != run.RunID {
		t.Errorf("ListSyncRuns = %+v, %v", runs, err)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := openTest(t)
	boom := errors.New("boom")
	err := db.WithTx(func(tx *Tx) error {
		if err := tx.SetProfile("level", "9"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, ok, _ := db.GetProfile("level"); ok {
		t.Error("write survived rollback")
	}

	if err := db.WithTx(func(tx *Tx) error { return tx.SetProfile("level", "3") }); err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if v, _, _ := db.GetProfile("level"); v != "3" {
		t.Errorf("level = %q, want 3", v)
	}
}
