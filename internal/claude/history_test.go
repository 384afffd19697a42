package claude

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseHistory_ValidEntries(t *testing.T) {
	dir := t.TempDir()
	data := `{"display":"help me refactor","timestamp":1700000000,"project":"/home/user/proj","sessionId":"s1"}
{"display":"fix the bug","timestamp":1700001000,"project":"/home/user/proj","sessionId":"s2"}
{"display":"write tests","timestamp":1700002000,"project":"/home/user/other","sessionId":"s3"}
`
	if err := os.WriteFile(filepath.Join(dir, "history.jsonl"), []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	entries, err := ParseHistory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Display != "help me refactor" {
		t.Errorf("entries[0].Display = %q, want %q", entries[0].Display, "help me refactor")
	}
	if entries[1].SessionID != "s2" {
		t.Errorf("entries[1].SessionID = %q, want %q", entries[1].SessionID, "s2")
	}
	if entries[2].Timestamp != 1700002000 {
		t.Errorf("entries[2].Timestamp = %d, want 1700002000", entries[2].Timestamp)
	}
}

func TestParseHistory_MissingFile(t *testing.T) {
	dir := t.TempDir()
	entries, err := ParseHistory(dir)
	if err != nil {
		t.Fatalf("expected nil error for missing file, got: %v", err)
	}
	if entries != nil {
		t.Errorf("expected nil entries, got %v", entries)
	}
}

func TestParseHistory_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "history.jsonl"), []byte(""), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	entries, err := ParseHistory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
}

func TestParseHistory_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	data := `{"display":"good line","timestamp":1700000000,"sessionId":"s1"}
not valid json
{"display":"another good","timestamp":1700001000,"sessionId":"s2"}
`
	if err := os.WriteFile(filepath.Join(dir, "history.jsonl"), []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	entries, err := ParseHistory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (malformed skipped), got %d", len(entries))
	}
}

func TestParseHistory_SkipsEmptyLines(t *testing.T) {
	dir := t.TempDir()
	data := `{"display":"first","timestamp":1700000000,"sessionId":"s1"}

{"display":"second","timestamp":1700001000,"sessionId":"s2"}
`
	if err := os.WriteFile(filepath.Join(dir, "history.jsonl"), []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	entries, err := ParseHistory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestHistoryEntryTime(t *testing.T) {
	tests := []struct {
		name string
		ts   int64
		want time.Time
	}{
		{"milliseconds", 1768471200000, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)},
		{"seconds", 1768471200, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)},
		{"zero", 0, time.Time{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := HistoryEntry{Timestamp: tc.ts}.Time()
			if !got.Equal(tc.want) {
				t.Errorf("Time() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUniqueProjects(t *testing.T) {
	entries := []HistoryEntry{
		{Project: "/home/user/proj"},
		{Project: "/home/user/other"},
		{Project: "/home/user/proj/"},
		{Project: ""},
		{Project: "/home/user/third"},
	}

	got := UniqueProjects(entries)
	want := []string{"/home/user/proj", "/home/user/other", "/home/user/third"}
	if len(got) != len(want) {
		t.Fatalf("UniqueProjects = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("UniqueProjects[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestProjectsByDay(t *testing.T) {
	day1 := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC).UnixMilli()
	day2 := time.Date(2026, 1, 16, 23, 30, 0, 0, time.UTC).UnixMilli()
	entries := []HistoryEntry{
		{Project: "/a", Timestamp: day1},
		{Project: "/b", Timestamp: day1 + 1000},
		{Project: "/a/", Timestamp: day1 + 2000},
		{Project: "/a", Timestamp: day2},
		{Project: "", Timestamp: day2},
		{Project: "/c"},
	}

	got := ProjectsByDay(entries, time.UTC)
	if got["2026-01-15"] != 2 {
		t.Errorf("2026-01-15 = %d, want 2", got["2026-01-15"])
	}
	if got["2026-01-16"] != 1 {
		t.Errorf("2026-01-16 = %d, want 1", got["2026-01-16"])
	}
	if len(got) != 2 {
		t.Errorf("expected 2 days, got %d", len(got))
	}

	east := time.FixedZone("UTC+2", 2*60*60)
	shifted := ProjectsByDay(entries, east)
	if shifted["2026-01-17"] != 1 {
		t.Errorf("shifted 2026-01-17 = %d, want 1", shifted["2026-01-17"])
	}
}

func TestProjectsBetween(t *testing.T) {
	jan := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC).UnixMilli()
	feb := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC).UnixMilli()
	entries := []HistoryEntry{
		{Project: "/a", Timestamp: jan},
		{Project: "/b", Timestamp: jan},
		{Project: "/a", Timestamp: feb},
		{Project: "/c", Timestamp: feb},
	}

	if got := ProjectsBetween(entries, time.UTC, "2026-01-01", "2026-01-31"); got != 2 {
		t.Errorf("January = %d, want 2", got)
	}
	if got := ProjectsBetween(entries, time.UTC, "2026-01-01", "2026-12-31"); got != 3 {
		t.Errorf("year = %d, want 3", got)
	}
	if got := ProjectsBetween(entries, time.UTC, "2025-01-01", "2025-12-31"); got != 0 {
		t.Errorf("2025 = %d, want 0", got)
	}
}
