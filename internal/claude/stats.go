package claude

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// ParseStatsCache reads ~/.claude/stats-cache.json and returns the parsed stats.
// A missing file yields nil stats and no error.
func ParseStatsCache(claudeHome string) (*StatsCache, error) {
	path := filepath.Join(claudeHome, StatsCacheFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var stats StatsCache
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// HourCounts maps hour-of-day ("0" through "23") to session starts.
type HourCounts map[string]int

// UnmarshalJSON accepts both the object form and the older 24-element array.
func (h *HourCounts) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err == nil {
		*h = m
		return nil
	}
	var list []int
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	out := make(HourCounts, len(list))
	for i, c := range list {
		if i >= 24 {
			break
		}
		out[strconv.Itoa(i)] = c
	}
	*h = out
	return nil
}

// TotalToolCalls sums tool calls across every day.
func (s *StatsCache) TotalToolCalls() int {
	total := 0
	for _, d := range s.DailyActivity {
		total += d.ToolCallCount
	}
	return total
}
