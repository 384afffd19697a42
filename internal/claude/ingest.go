package claude

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
)

// IngestOptions controls how much of the Claude data directory is read.
type IngestOptions struct {
	// TranscriptsSince skips transcripts last modified before this time.
	// The zero value reads every transcript.
	TranscriptsSince time.Time
	// Location decides which calendar day a timestamp falls on. Nil means
	// time.Local, which matches how stats-cache.json buckets days.
	Location *time.Location
}

// Activity is the normalized view of a Claude data directory.
type Activity struct {
	Stats    *StatsCache
	Days     []DailyActivity
	Projects []string
	History  []HistoryEntry
	Tools    *ToolUsage
}

// Ingest reads stats-cache.json, history.jsonl and session transcripts
// concurrently and merges them into enriched daily records. It returns nil
// and no error when stats-cache.json does not exist.
func Ingest(ctx context.Context, claudeHome string, opts IngestOptions) (*Activity, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	var (
		stats   *StatsCache
		history []HistoryEntry
		tools   *ToolUsage
		dirs    []string
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if stats, err = ParseStatsCache(claudeHome); err != nil {
			return fmt.Errorf("parsing stats cache: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if history, err = ParseHistory(claudeHome); err != nil {
			return fmt.Errorf("parsing history: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if tools, err = ParseToolUsage(claudeHome, opts.TranscriptsSince, loc); err != nil {
			return fmt.Errorf("parsing transcripts: %w", err)
		}
		return ctx.Err()
	})
	g.Go(func() error {
		var err error
		if dirs, err = projectDirNames(claudeHome); err != nil {
			return fmt.Errorf("listing projects: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, nil
	}

	projects := UniqueProjects(history)
	if len(projects) == 0 {
		projects = dirs
	}

	return &Activity{
		Stats:    stats,
		Days:     Enrich(stats.DailyActivity, ProjectsByDay(history, loc), tools),
		Projects: projects,
		History:  history,
		Tools:    tools,
	}, nil
}

// projectDirNames returns the directory names under projects/, one per
// project Claude Code has worked in. A missing directory yields nil.
func projectDirNames(claudeHome string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(claudeHome, "projects"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Enrich fills the optional counters of each day from per-day project counts
// and transcript tool usage. Counters already present are kept.
func Enrich(days []DailyActivity, projectsByDay map[string]int, tools *ToolUsage) []DailyActivity {
	out := make([]DailyActivity, len(days))
	for i, d := range days {
		if d.ProjectCount == 0 {
			d.ProjectCount = projectsByDay[d.Date]
		}
		if tools != nil {
			if dt := tools.ByDay[d.Date]; dt != nil {
				if d.UniqueToolCount == 0 {
					d.UniqueToolCount = len(dt.Tools)
				}
				if d.EditCount == 0 {
					d.EditCount = dt.Edits
				}
				if d.CommitCount == 0 {
					d.CommitCount = dt.Commits
				}
			}
		}
		out[i] = d
	}
	return out
}
