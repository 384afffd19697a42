package claude

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TranscriptEntry is the top-level structure of a JSONL line.
type TranscriptEntry struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	SessionID string          `json:"sessionId"`
	Message   json.RawMessage `json:"message"`
}

// AssistantMessage represents an assistant-role message.
type AssistantMessage struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock represents a single content block (tool_use, tool_result, text).
type ContentBlock struct {
	Type  string          `json:"type"`
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
	Text  string          `json:"text"`
}

// bashInput holds the fields of a Bash tool_use input we inspect.
type bashInput struct {
	Command string `json:"command"`
}

// editTools are tool names that modify files.
var editTools = map[string]bool{
	"Edit":         true,
	"MultiEdit":    true,
	"Write":        true,
	"NotebookEdit": true,
}

// ParseToolUsage walks every session transcript under claudeDir/projects/
// and tallies tool_use blocks, overall and per day in loc. Transcripts last
// modified before since are skipped; a zero since reads everything.
func ParseToolUsage(claudeDir string, since time.Time, loc *time.Location) (*ToolUsage, error) {
	usage := &ToolUsage{
		Totals: make(map[string]int),
		ByDay:  make(map[string]*DayTools),
	}

	err := WalkTranscriptEntries(claudeDir, since, func(entry TranscriptEntry, _, _ string) {
		if entry.Type != "assistant" || entry.Message == nil {
			return
		}
		var msg AssistantMessage
		if err := json.Unmarshal(entry.Message, &msg); err != nil {
			return
		}

		ts := ParseTimestamp(entry.Timestamp)
		var day *DayTools
		if !ts.IsZero() {
			key := ts.In(loc).Format(dateLayout)
			if day = usage.ByDay[key]; day == nil {
				day = &DayTools{Tools: make(map[string]int)}
				usage.ByDay[key] = day
			}
		}

		for _, block := range msg.Content {
			if block.Type != "tool_use" {
				continue
			}
			name := block.Name
			if name == "" {
				name = "unknown"
			}
			usage.Totals[name]++
			if day == nil {
				continue
			}
			day.Tools[name]++
			if editTools[name] {
				day.Edits++
			}
			if name == "Bash" && isCommit(block.Input) {
				day.Commits++
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return usage, nil
}

// isCommit reports whether a Bash tool input runs git commit.
func isCommit(raw json.RawMessage) bool {
	if raw == nil {
		return false
	}
	var in bashInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return false
	}
	return strings.Contains(in.Command, "git commit")
}

// WalkTranscriptEntries calls fn for every parsed JSONL entry across all
// session transcripts found under claudeDir/projects/. Each entry is passed
// along with its session ID (derived from the JSONL filename) and the project
// hash (the directory name under projects/). Files modified before since are
// skipped unless since is zero.
func WalkTranscriptEntries(claudeDir string, since time.Time, fn func(entry TranscriptEntry, sessionID string, projectHash string)) error {
	projectsDir := filepath.Join(claudeDir, "projects")
	projectDirs, err := os.ReadDir(projectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, projEntry := range projectDirs {
		if !projEntry.IsDir() {
			continue
		}
		projectHash := projEntry.Name()
		dirPath := filepath.Join(projectsDir, projectHash)

		files, err := os.ReadDir(dirPath)
		if err != nil {
			continue
		}

		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".jsonl") {
				continue
			}
			if !since.IsZero() {
				info, err := f.Info()
				if err != nil || info.ModTime().Before(since) {
					continue
				}
			}

			sessionID := strings.TrimSuffix(f.Name(), ".jsonl")
			walkFile(filepath.Join(dirPath, f.Name()), func(entry TranscriptEntry) {
				fn(entry, sessionID, projectHash)
			})
		}
	}

	return nil
}

func walkFile(path string, fn func(TranscriptEntry)) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		var entry TranscriptEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		fn(entry)
	}
}

// ParseTimestamp parses an ISO 8601 timestamp string. It tries RFC3339Nano,
// RFC3339, and a plain datetime format without timezone. Returns the zero time
// if the string is empty or cannot be parsed by any supported format.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
