package claude

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// helper to write a JSONL file in a temp dir and return its path.
func writeJSONL(t *testing.T, dir, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func toolUseLine(ts string, blocks ...string) string {
	return `{"type":"assistant","timestamp":"` + ts + `","message":{"role":"assistant","content":[` + strings.Join(blocks, ",") + `]}}`
}

func TestParseToolUsage_CountsByDay(t *testing.T) {
	claudeDir := t.TempDir()
	jsonl := strings.Join([]string{
		toolUseLine("2026-01-15T10:00:00Z",
			`{"type":"tool_use","id":"t1","name":"Read","input":{"file_path":"a.go"}}`,
			`{"type":"tool_use","id":"t2","name":"Edit","input":{}}`,
			`{"type":"text","text":"done"}`),
		toolUseLine("2026-01-15T11:00:00Z",
			`{"type":"tool_use","id":"t3","name":"Bash","input":{"command":"git commit -m 'fix'"}}`,
			`{"type":"tool_use","id":"t4","name":"Bash","input":{"command":"go test ./..."}}`),
		toolUseLine("2026-01-16T08:00:00Z",
			`{"type":"tool_use","id":"t5","name":"Write","input":{}}`),
		`{"type":"user","timestamp":"2026-01-16T08:01:00Z","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t5"}]}}`,
		`not json`,
	}, "\n")
	writeJSONL(t, filepath.Join(claudeDir, "projects", "abc123"), "sess1.jsonl", jsonl)

	usage, err := ParseToolUsage(claudeDir, time.Time{}, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if usage.Totals["Bash"] != 2 {
		t.Errorf("Totals[Bash] = %d, want 2", usage.Totals["Bash"])
	}
	if usage.Totals["Read"] != 1 {
		t.Errorf("Totals[Read] = %d, want 1", usage.Totals["Read"])
	}

	d1 := usage.ByDay["2026-01-15"]
	if d1 == nil {
		t.Fatal("missing 2026-01-15")
	}
	if len(d1.Tools) != 3 {
		t.Errorf("unique tools = %d, want 3", len(d1.Tools))
	}
	if d1.Edits != 1 {
		t.Errorf("Edits = %d, want 1", d1.Edits)
	}
	if d1.Commits != 1 {
		t.Errorf("Commits = %d, want 1", d1.Commits)
	}

	d2 := usage.ByDay["2026-01-16"]
	if d2 == nil || d2.Edits != 1 || d2.Commits != 0 {
		t.Errorf("2026-01-16 = %+v, want 1 edit and 0 commits", d2)
	}
}

func TestParseToolUsage_SkipsOldTranscripts(t *testing.T) {
	claudeDir := t.TempDir()
	dir := filepath.Join(claudeDir, "projects", "p")
	path := writeJSONL(t, dir, "old.jsonl", toolUseLine("2025-01-01T10:00:00Z", `{"type":"tool_use","name":"Read"}`))
	old := time.Now().Add(-90 * 24 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	writeJSONL(t, dir, "new.jsonl", toolUseLine("2026-01-01T10:00:00Z", `{"type":"tool_use","name":"Grep"}`))

	usage, err := ParseToolUsage(claudeDir, time.Now().Add(-30*24*time.Hour), time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usage.Totals["Read"] != 0 {
		t.Errorf("old transcript should be skipped, Read = %d", usage.Totals["Read"])
	}
	if usage.Totals["Grep"] != 1 {
		t.Errorf("Grep = %d, want 1", usage.Totals["Grep"])
	}
}

func TestParseToolUsage_MissingProjectsDir(t *testing.T) {
	usage, err := ParseToolUsage(t.TempDir(), time.Time{}, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(usage.Totals) != 0 || len(usage.ByDay) != 0 {
		t.Errorf("expected empty usage, got %+v", usage)
	}
}

func TestWalkTranscriptEntries_PassesSessionAndProject(t *testing.T) {
	claudeDir := t.TempDir()
	writeJSONL(t, filepath.Join(claudeDir, "projects", "hash-1"), "sess-a.jsonl", `{"type":"user"}`+"\n"+`{"type":"assistant"}`)
	writeJSONL(t, filepath.Join(claudeDir, "projects", "hash-1"), "notes.txt", `{"type":"user"}`)

	var seen []string
	err := WalkTranscriptEntries(claudeDir, time.Time{}, func(e TranscriptEntry, sessionID, projectHash string) {
		seen = append(seen, e.Type+"/"+sessionID+"/"+projectHash)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"user/sess-a/hash-1", "assistant/sess-a/hash-1"}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Errorf("seen = %v, want %v", seen, want)
	}
}

func TestIsCommit(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`{"command":"git commit -am 'x'"}`, true},
		{`{"command":"git add . && git commit -m y"}`, true},
		{`{"command":"git status"}`, false},
		{`not json`, false},
		{``, false},
	}
	for _, tc := range tests {
		var raw []byte
		if tc.raw != "" {
			raw = []byte(tc.raw)
		}
		if got := isCommit(raw); got != tc.want {
			t.Errorf("isCommit(%s) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		isZero bool
	}{
		{"RFC3339", "2026-01-15T10:00:00Z", false},
		{"RFC3339Nano", "2026-01-15T10:00:00.123456789Z", false},
		{"no zone", "2026-01-15T10:00:00", false},
		{"empty", "", true},
		{"invalid", "not-a-date", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := ParseTimestamp(tc.input)
			if tc.isZero && !ts.IsZero() {
				t.Errorf("expected zero time for %q", tc.input)
			}
			if !tc.isZero && ts.IsZero() {
				t.Errorf("expected non-zero time for %q", tc.input)
			}
		})
	}
}
