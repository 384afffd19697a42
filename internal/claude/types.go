// Package claude provides types and parsers for Claude Code's local data files.
package claude

// Data file names inside the Claude home directory.
const (
	StatsCacheFile = "stats-cache.json"
	HistoryFile    = "history.jsonl"
)

// HistoryEntry represents a single entry in ~/.claude/history.jsonl.
type HistoryEntry struct {
	Display        string         `json:"display"`
	PastedContents map[string]any `json:"pastedContents"`
	Timestamp      int64          `json:"timestamp"`
	Project        string         `json:"project"`
	SessionID      string         `json:"sessionId"`
}

// StatsCache represents the aggregate stats in ~/.claude/stats-cache.json.
type StatsCache struct {
	Version          int                   `json:"version"`
	LastComputedDate string                `json:"lastComputedDate"`
	DailyActivity    []DailyActivity       `json:"dailyActivity"`
	ModelUsage       map[string]ModelUsage `json:"modelUsage"`
	TotalSessions    int                   `json:"totalSessions"`
	TotalMessages    int                   `json:"totalMessages"`
	LongestSession   LongestSession        `json:"longestSession"`
	FirstSessionDate string                `json:"firstSessionDate"`
	HourCounts       HourCounts            `json:"hourCounts"`
}

// DailyActivity is one calendar day's raw activity counters. The last four
// fields are not present in stats-cache.json; ingestion fills them from
// history and transcripts when those files exist.
type DailyActivity struct {
	Date            string `json:"date"`
	MessageCount    int    `json:"messageCount"`
	SessionCount    int    `json:"sessionCount"`
	ToolCallCount   int    `json:"toolCallCount"`
	ProjectCount    int    `json:"projectCount,omitempty"`
	EditCount       int    `json:"editCount,omitempty"`
	CommitCount     int    `json:"commitCount,omitempty"`
	UniqueToolCount int    `json:"uniqueToolCount,omitempty"`
}

// ModelUsage represents aggregate usage stats for a single model.
type ModelUsage struct {
	InputTokens              int64   `json:"inputTokens"`
	OutputTokens             int64   `json:"outputTokens"`
	CacheReadInputTokens     int64   `json:"cacheReadInputTokens"`
	CacheCreationInputTokens int64   `json:"cacheCreationInputTokens"`
	CostUSD                  float64 `json:"costUSD"`
}

// LongestSession holds metadata about the longest recorded session.
type LongestSession struct {
	SessionID    string `json:"sessionId"`
	Duration     int64  `json:"duration"`
	MessageCount int    `json:"messageCount"`
	Timestamp    string `json:"timestamp"`
}

// ToolUsage aggregates tool_use blocks found in session transcripts.
type ToolUsage struct {
	// Totals counts every tool invocation by tool name.
	Totals map[string]int
	// ByDay holds per-date tool activity keyed by YYYY-MM-DD in the parse location.
	ByDay map[string]*DayTools
}

// DayTools is one day's tool activity derived from transcripts.
type DayTools struct {
	Tools   map[string]int
	Edits   int
	Commits int
}
