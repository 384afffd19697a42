package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blackwell-systems/clauderank/internal/engine"
	"github.com/blackwell-systems/clauderank/internal/export"
)

// RankResult is the current rank as seen by an agent.
type RankResult struct {
	Level          int     `json:"level"`
	TierName       string  `json:"tier_name"`
	PrestigeCount  int     `json:"prestige_count"`
	Stars          string  `json:"stars,omitempty"`
	TotalXP        int     `json:"total_xp"`
	XPInLevel      int     `json:"xp_in_level"`
	XPForNext      int     `json:"xp_for_next"`
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
	FreezeCount    int     `json:"freeze_count"`
	Achievements   int     `json:"achievements_unlocked"`
	EngagementMu   float64 `json:"er_mu"`
	EngagementTier string  `json:"er_tier"`
	LastSync       string  `json:"last_sync,omitempty"`
	// Source is "snapshot" when read from rank.json and "store" otherwise.
	Source string `json:"source"`
}

// AchievementsResult lists the catalog with progress.
type AchievementsResult struct {
	Unlocked     int                        `json:"unlocked"`
	Total        int                        `json:"total"`
	Achievements []engine.AchievementStatus `json:"achievements"`
	Closest      []engine.AchievementStatus `json:"closest"`
}

// BadgeResult carries the rendered SVG.
type BadgeResult struct {
	SVG string `json:"svg"`
}

var errNotSynced = errors.New("no rank yet: run clauderank sync")

// closestCount is how many near-complete achievements get_achievements lists.
const closestCount = 3

var (
	noArgsSchema  = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
	wrappedSchema = json.RawMessage(`{"type":"object","properties":{"period":{"type":"string","enum":["month","year","all-time"],"description":"Summary period (default month)"}},"additionalProperties":false}`)
)

// addTools registers all MCP tool handlers on s.
func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "get_rank",
		Description: "Current level, tier, XP progress, streak and engagement rating.",
		InputSchema: noArgsSchema,
		Handler:     s.handleGetRank,
	})
	s.registerTool(toolDef{
		Name:        "get_achievements",
		Description: "Every achievement with progress, plus the closest locked ones.",
		InputSchema: noArgsSchema,
		Handler:     s.handleGetAchievements,
	})
	s.registerTool(toolDef{
		Name:        "get_wrapped",
		Description: "Activity summary for this month, this year or all time.",
		InputSchema: wrappedSchema,
		Handler:     s.handleGetWrapped,
	})
	s.registerTool(toolDef{
		Name:        "get_badge",
		Description: "Shields-style SVG badge for the current rank.",
		InputSchema: noArgsSchema,
		Handler:     s.handleGetBadge,
	})
}

// handleGetRank answers from rank.json when it exists and from the store
// otherwise.
func (s *Server) handleGetRank(ctx context.Context, _ json.RawMessage) (any, error) {
	if s.dataDir != "" {
		snap, err := export.ReadSnapshot(s.dataDir)
		if err == nil && snap != nil {
			return RankResult{
				Level:          snap.Level,
				TierName:       snap.TierName,
				PrestigeCount:  snap.PrestigeCount,
				Stars:          engine.PrestigeStars(snap.PrestigeCount),
				TotalXP:        snap.TotalXP,
				XPInLevel:      snap.XPInLevel,
				XPForNext:      snap.XPForNext,
				CurrentStreak:  snap.CurrentStreak,
				LongestStreak:  snap.LongestStreak,
				FreezeCount:    snap.FreezeCount,
				Achievements:   snap.AchievementsUnlocked,
				EngagementMu:   snap.EngagementMu,
				EngagementTier: snap.EngagementTier,
				LastSync:       snap.LastSync,
				Source:         "snapshot",
			}, nil
		}
	}

	p, err := s.svc.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if !p.Synced() {
		return nil, errNotSynced
	}
	return RankResult{
		Level:          p.Level,
		TierName:       p.TierName,
		PrestigeCount:  p.PrestigeCount,
		Stars:          engine.PrestigeStars(p.PrestigeCount),
		TotalXP:        p.TotalXP,
		XPInLevel:      p.XPInLevel,
		XPForNext:      p.XPForNext,
		CurrentStreak:  p.CurrentStreak,
		LongestStreak:  p.LongestStreak,
		FreezeCount:    p.FreezeCount,
		Achievements:   p.AchievementsUnlocked,
		EngagementMu:   p.ERMu,
		EngagementTier: p.ERTier,
		LastSync:       p.LastSync,
		Source:         "store",
	}, nil
}

func (s *Server) handleGetAchievements(ctx context.Context, _ json.RawMessage) (any, error) {
	all, err := s.svc.Achievements(ctx)
	if err != nil {
		return nil, err
	}
	unlocked := 0
	for _, a := range all {
		if a.Unlocked {
			unlocked++
		}
	}
	return AchievementsResult{
		Unlocked:     unlocked,
		Total:        len(all),
		Achievements: all,
		Closest:      engine.ClosestAchievements(all, closestCount),
	}, nil
}

// handleGetWrapped accepts an optional period argument, defaulting to month.
func (s *Server) handleGetWrapped(ctx context.Context, args json.RawMessage) (any, error) {
	period := engine.PeriodMonth
	if len(args) > 0 && string(args) != "null" {
		var params struct {
			Period string `json:"period"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		if params.Period != "" {
			period = params.Period
		}
	}
	return s.svc.Wrapped(ctx, period)
}

func (s *Server) handleGetBadge(ctx context.Context, _ json.RawMessage) (any, error) {
	p, err := s.svc.Profile(ctx)
	if err != nil {
		return nil, err
	}
	svg, err := export.BadgeSVG(p.Level, p.TierName, p.TierColor, p.PrestigeCount, p.TotalXP)
	if err != nil {
		return nil, err
	}
	return BadgeResult{SVG: svg}, nil
}
