package claude

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestIngest_MergesSources(t *testing.T) {
	home := t.TempDir()
	stats := `{
		"dailyActivity": [
			{"date":"2026-01-15","messageCount":40,"sessionCount":2,"toolCallCount":30},
			{"date":"2026-01-16","messageCount":10,"sessionCount":1,"toolCallCount":8,"projectCount":7}
		],
		"totalSessions": 3,
		"totalMessages": 50
	}`
	if err := os.WriteFile(filepath.Join(home, "stats-cache.json"), []byte(stats), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ts := time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC).UnixMilli()
	history := `{"display":"a","timestamp":` + itoa(ts) + `,"project":"/p1","sessionId":"s1"}
{"display":"b","timestamp":` + itoa(ts+1) + `,"project":"/p2","sessionId":"s1"}
`
	if err := os.WriteFile(filepath.Join(home, "history.jsonl"), []byte(history), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	writeJSONL(t, filepath.Join(home, "projects", "h"), "s1.jsonl",
		toolUseLine("2026-01-15T10:00:00Z",
			`{"type":"tool_use","name":"Edit"}`,
			`{"type":"tool_use","name":"Read"}`))

	act, err := Ingest(context.Background(), home, IngestOptions{Location: time.UTC})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act == nil {
		t.Fatal("expected activity")
	}
	if len(act.Days) != 2 {
		t.Fatalf("Days = %d, want 2", len(act.Days))
	}

	d1 := act.Days[0]
	if d1.UniqueToolCount != 2 || d1.EditCount != 1 || d1.ProjectCount != 0 {
		t.Errorf("day 1 = %+v", d1)
	}
	d2 := act.Days[1]
	if d2.ProjectCount != 7 {
		t.Errorf("existing ProjectCount overwritten: %d", d2.ProjectCount)
	}
	if len(act.Projects) != 2 {
		t.Errorf("Projects = %v, want 2", act.Projects)
	}
	if act.Tools.Totals["Edit"] != 1 {
		t.Errorf("Totals[Edit] = %d, want 1", act.Tools.Totals["Edit"])
	}
	if act.Stats.DailyActivity[0].UniqueToolCount != 0 {
		t.Error("Ingest must not modify the parsed stats cache")
	}
}

func TestIngest_NoStatsCache(t *testing.T) {
	act, err := Ingest(context.Background(), t.TempDir(), IngestOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act != nil {
		t.Errorf("expected nil activity, got %+v", act)
	}
}

func TestIngest_ProjectDirFallback(t *testing.T) {
	home := t.TempDir()
	if err := os.WriteFile(filepath.Join(home, "stats-cache.json"), []byte(`{}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, name := range []string{"-home-a", "-home-b"} {
		if err := os.MkdirAll(filepath.Join(home, "projects", name), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	act, err := Ingest(context.Background(), home, IngestOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(act.Projects) != 2 {
		t.Errorf("Projects = %v, want 2 from project dirs", act.Projects)
	}
}

func TestProjectDirNames(t *testing.T) {
	home := t.TempDir()
	names, err := projectDirNames(home)
	if err != nil || names != nil {
		t.Fatalf("missing projects dir: got %v, %v; want nil, nil", names, err)
	}

	projDir := filepath.Join(home, "projects")
	if err := os.MkdirAll(filepath.Join(projDir, "-home-dev-api"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(projDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	names, err = projectDirNames(home)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 1 || names[0] != "-home-dev-api" {
		t.Errorf("names = %v, want [-home-dev-api]", names)
	}
}

func TestIngest_InvalidStats(t *testing.T) {
	home := t.TempDir()
	if err := os.WriteFile(filepath.Join(home, "stats-cache.json"), []byte(`{broken`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Ingest(context.Background(), home, IngestOptions{}); err == nil {
		t.Fatal("expected error for corrupt stats cache")
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
