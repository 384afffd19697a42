package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/clauderank/internal/export"
	"github.com/blackwell-systems/clauderank/internal/ranker"
	"github.com/blackwell-systems/clauderank/internal/store"
)

var testNow = time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

// writeStatsCache writes a stats-cache.json with n active days starting
// 2026-03-01, each with 2 sessions and 100 tool calls.
func writeStatsCache(t *testing.T, home string, n int) {
	t.Helper()
	var days []string
	for i := range n {
		days = append(days, fmt.Sprintf(`{"date":"2026-03-%02d","messageCount":0,"sessionCount":2,"toolCallCount":100}`, i+1))
	}
	data := `{"dailyActivity":[` + strings.Join(days, ",") + `],` +
		fmt.Sprintf(`"totalSessions":%d,"firstSessionDate":"2026-03-01T09:00:00Z","hourCounts":{"14":3}}`, 2*n)
	if err := os.WriteFile(filepath.Join(home, "stats-cache.json"), []byte(data), 0644); err != nil {
		t.Fatalf("write stats cache: %v", err)
	}
}

// newTestServer creates a Server over an in-memory store. When days > 0 a
// stats cache is written and a full sync runs before the server is returned.
func newTestServer(t *testing.T, days int) (*Server, string) {
	t.Helper()
	home, dataDir := t.TempDir(), t.TempDir()
	db, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	svc := ranker.New(db, ranker.Options{
		ClaudeHome: home,
		DataDir:    dataDir,
		Location:   time.UTC,
		Now:        func() time.Time { return testNow },
	})
	if days > 0 {
		writeStatsCache(t, home, days)
		if _, err := svc.Sync(context.Background()); err != nil {
			t.Fatalf("sync: %v", err)
		}
	}
	return NewServer(svc, dataDir, nil), dataDir
}

// callTool invokes the named tool handler and returns the typed result.
func callTool(s *Server, name string, args json.RawMessage) (any, error) {
	for _, tool := range s.tools {
		if tool.Name == name {
			return tool.Handler(context.Background(), args)
		}
	}
	return nil, fmt.Errorf("tool not found: %s", name)
}

func TestGetRank_NotSynced(t *testing.T) {
	s, _ := newTestServer(t, 0)

	_, err := callTool(s, "get_rank", json.RawMessage(`{}`))
	if err == nil {
		t.Fatal("expected error before the first sync, got nil")
	}
}

func TestGetRank_FromSnapshot(t *testing.T) {
	s, _ := newTestServer(t, 5)

	result, err := callTool(s, "get_rank", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, ok := result.(RankResult)
	if !ok {
		t.Fatalf("expected RankResult, got %T", result)
	}
	if r.Source != "snapshot" {
		t.Errorf("Source = %q, want snapshot", r.Source)
	}
	if r.TotalXP != 1650 {
		t.Errorf("TotalXP = %d, want 1650", r.TotalXP)
	}
	if r.CurrentStreak != 5 {
		t.Errorf("CurrentStreak = %d, want 5", r.CurrentStreak)
	}
}

func TestGetRank_FallsBackToStore(t *testing.T) {
	s, dataDir := newTestServer(t, 5)
	if err := os.Remove(filepath.Join(dataDir, export.SnapshotFile)); err != nil {
		t.Fatalf("remove snapshot: %v", err)
	}

	result, err := callTool(s, "get_rank", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := result.(RankResult)
	if r.Source != "store" {
		t.Errorf("Source = %q, want store", r.Source)
	}
	if r.TotalXP != 1650 || r.Level < 1 || r.TierName == "" {
		t.Errorf("unexpected rank %+v", r)
	}
}

func TestGetAchievements(t *testing.T) {
	s, _ := newTestServer(t, 5)

	result, err := callTool(s, "get_achievements", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := result.(AchievementsResult)
	if r.Total != 10 {
		t.Errorf("Total = %d, want 10", r.Total)
	}
	if r.Unlocked < 1 {
		t.Errorf("Unlocked = %d, want at least hello_world", r.Unlocked)
	}
	if len(r.Closest) == 0 || len(r.Closest) > closestCount {
		t.Errorf("Closest has %d entries", len(r.Closest))
	}
	for _, c := range r.Closest {
		if c.Unlocked {
			t.Errorf("closest list contains unlocked %s", c.Def.ID)
		}
	}
}

func TestGetWrapped(t *testing.T) {
	s, _ := newTestServer(t, 5)

	tests := []struct {
		name    string
		args    string
		wantErr bool
	}{
		{"default month", `{}`, false},
		{"year", `{"period":"year"}`, false},
		{"all time", `{"period":"all-time"}`, false},
		{"unknown period", `{"period":"decade"}`, true},
		{"malformed", `{"period":5}`, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := callTool(s, "get_wrapped", json.RawMessage(tc.args))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			data, err := json.Marshal(result)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var w struct {
				TotalXPEarned int `json:"total_xp_earned"`
				ActiveDays    int `json:"active_days"`
			}
			if err := json.Unmarshal(data, &w); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if w.TotalXPEarned != 1650 || w.ActiveDays != 5 {
				t.Errorf("wrapped = %+v, want 1650 XP over 5 days", w)
			}
		})
	}
}

func TestGetBadge(t *testing.T) {
	s, _ := newTestServer(t, 5)

	result, err := callTool(s, "get_badge", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svg := result.(BadgeResult).SVG
	if !strings.HasPrefix(svg, "<svg") {
		t.Errorf("badge does not start with <svg: %.40s", svg)
	}
	if !strings.Contains(svg, "1,650 XP") {
		t.Errorf("badge tooltip missing XP: %s", svg)
	}
}

// TestToolsCall_OverTheWire checks a tool result is wrapped as MCP text
// content carrying the JSON payload.
func TestToolsCall_OverTheWire(t *testing.T) {
	s, _ := newTestServer(t, 5)
	resps := session(t, s, `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"get_rank"}}`)
	if len(resps) != 1 {
		t.Fatalf("got %d responses, want 1", len(resps))
	}

	result := resps[0]["result"].(map[string]any)
	items := result["content"].([]any)
	if result["isError"] != false || len(items) != 1 {
		t.Fatalf("unexpected result: %v", result)
	}
	item := items[0].(map[string]any)
	if item["type"] != "text" {
		t.Errorf("content type = %v, want text", item["type"])
	}
	if text, _ := item["text"].(string); !strings.Contains(text, `"total_xp":1650`) {
		t.Errorf("content text = %s", text)
	}
}

func TestToolsCall_UnknownTool(t *testing.T) {
	s, _ := newTestServer(t, 0)
	resps := session(t, s, `{"jsonrpc":"2.0","id":8,"method":"tools/call","params":{"name":"get_cost"}}`)

	result := resps[0]["result"].(map[string]any)
	text := result["content"].([]any)[0].(map[string]any)["text"]
	if result["isError"] != true || text != "unknown tool: get_cost" {
		t.Errorf("unexpected result: %v", result)
	}
}
