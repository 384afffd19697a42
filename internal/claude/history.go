package claude

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseHistory reads ~/.claude/history.jsonl and returns all entries.
// It uses streaming JSONL parsing to handle large files efficiently.
func ParseHistory(claudeHome string) ([]HistoryEntry, error) {
	path := filepath.Join(claudeHome, HistoryFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var entries []HistoryEntry
	scanner := bufio.NewScanner(f)
	// Allow lines up to 1MB for large pasted contents.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry HistoryEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			// Skip malformed lines.
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

// Time returns when the prompt was entered. Claude Code writes milliseconds
// since the epoch; older files used seconds.
func (e HistoryEntry) Time() time.Time {
	if e.Timestamp <= 0 {
		return time.Time{}
	}
	if e.Timestamp < 1e12 {
		return time.Unix(e.Timestamp, 0)
	}
	return time.UnixMilli(e.Timestamp)
}

// UniqueProjects returns the distinct project paths in first-seen order.
func UniqueProjects(entries []HistoryEntry) []string {
	seen := make(map[string]bool)
	var projects []string
	for _, e := range entries {
		p := normalizeProject(e.Project)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		projects = append(projects, p)
	}
	return projects
}

// ProjectsByDay counts the distinct projects prompted on each calendar day
// in loc.
func ProjectsByDay(entries []HistoryEntry, loc *time.Location) map[string]int {
	perDay := make(map[string]map[string]bool)
	for _, e := range entries {
		p := normalizeProject(e.Project)
		ts := e.Time()
		if p == "" || ts.IsZero() {
			continue
		}
		day := ts.In(loc).Format(dateLayout)
		if perDay[day] == nil {
			perDay[day] = make(map[string]bool)
		}
		perDay[day][p] = true
	}

	counts := make(map[string]int, len(perDay))
	for day, set := range perDay {
		counts[day] = len(set)
	}
	return counts
}

// normalizeProject cleans a project path so the same directory written with
// or without a trailing slash counts once.
// ProjectsBetween counts distinct projects with history entries dated in
// [start, end] in loc.
func ProjectsBetween(entries []HistoryEntry, loc *time.Location, start, end string) int {
	seen := make(map[string]bool)
	for _, e := range entries {
		p := normalizeProject(e.Project)
		ts := e.Time()
		if p == "" || ts.IsZero() {
			continue
		}
		if day := ts.In(loc).Format(dateLayout); day >= start && day <= end {
			seen[p] = true
		}
	}
	return len(seen)
}

func normalizeProject(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}
