package ranker

import (
	"strconv"
	"time"

	"github.com/blackwell-systems/clauderank/internal/engine"
	"github.com/blackwell-systems/clauderank/internal/export"
	"github.com/blackwell-systems/clauderank/internal/rating"
)

// Profile keys in the store's key-value table.
const (
	keyTotalXP              = "total_xp"
	keyLevel                = "level"
	keyTierName             = "tier_name"
	keyTierColor            = "tier_color"
	keyPrestigeCount        = "prestige_count"
	keyCurrentStreak        = "current_streak"
	keyLongestStreak        = "longest_streak"
	keyFreezeCount          = "freeze_count"
	keyLastActiveDate       = "last_active_date"
	keyTotalSessions        = "total_sessions"
	keyTotalMessages        = "total_messages"
	keyTotalToolCalls       = "total_tool_calls"
	keyUniqueProjects       = "unique_projects"
	keyDaysSynced           = "days_synced"
	keyAchievementsUnlocked = "achievements_unlocked"
	keyLastSync             = "last_sync"
	keyMemberSince          = "member_since"
	keyERMu                 = "er_mu"
	keyERPhi                = "er_phi"
	keyERSigma              = "er_sigma"
	keyERTier               = "er_tier"
	keyERLastRated          = "er_last_rated"
)

// Profile is the aggregate rank state, decoded from the store.
type Profile struct {
	TotalXP              int     `json:"total_xp"`
	Level                int     `json:"level"`
	TierName             string  `json:"tier_name"`
	TierColor            string  `json:"tier_color"`
	PrestigeCount        int     `json:"prestige_count"`
	XPInLevel            int     `json:"xp_in_level"`
	XPForNext            int     `json:"xp_for_next"`
	CurrentStreak        int     `json:"current_streak"`
	LongestStreak        int     `json:"longest_streak"`
	FreezeCount          int     `json:"freeze_count"`
	LastActiveDate       string  `json:"last_active_date,omitempty"`
	TotalSessions        int     `json:"total_sessions"`
	TotalMessages        int     `json:"total_messages"`
	TotalToolCalls       int     `json:"total_tool_calls"`
	UniqueProjects       int     `json:"unique_projects"`
	DaysSynced           int     `json:"days_synced"`
	AchievementsUnlocked int     `json:"achievements_unlocked"`
	LastSync             string  `json:"last_sync,omitempty"`
	MemberSince          string  `json:"member_since,omitempty"`
	ERMu                 float64 `json:"er_mu"`
	ERPhi                float64 `json:"er_phi"`
	ERSigma              float64 `json:"er_sigma"`
	ERTier               string  `json:"er_tier"`
	ERLastRated          string  `json:"er_last_rated,omitempty"`
}

// Synced reports whether a sync has ever completed.
func (p Profile) Synced() bool {
	return p.LastSync != ""
}

// Progress returns the level view of the profile's XP.
func (p Profile) Progress() engine.LevelProgress {
	return engine.Progress(p.TotalXP, p.PrestigeCount)
}

// ERState returns the stored engagement rating.
func (p Profile) ERState() rating.State {
	return rating.State{Mu: p.ERMu, Phi: p.ERPhi, Sigma: p.ERSigma, LastRatedDate: p.ERLastRated}
}

// Snapshot converts the profile into the rank.json shape.
func (p Profile) Snapshot(now time.Time) export.Snapshot {
	return export.Snapshot{
		Level:                p.Level,
		TierName:             p.TierName,
		TierColor:            p.TierColor,
		PrestigeCount:        p.PrestigeCount,
		TotalXP:              p.TotalXP,
		XPInLevel:            p.XPInLevel,
		XPForNext:            p.XPForNext,
		CurrentStreak:        p.CurrentStreak,
		LongestStreak:        p.LongestStreak,
		FreezeCount:          p.FreezeCount,
		AchievementsUnlocked: p.AchievementsUnlocked,
		EngagementMu:         p.ERMu,
		EngagementTier:       p.ERTier,
		LastSync:             p.LastSync,
		UpdatedAt:            now.UTC(),
	}
}

// decodeProfile reads the key-value table into a Profile. Missing or
// malformed values decode as the defaults of a fresh profile.
func decodeProfile(kv map[string]string) Profile {
	p := Profile{
		TotalXP:              atoi(kv[keyTotalXP]),
		PrestigeCount:        atoi(kv[keyPrestigeCount]),
		CurrentStreak:        atoi(kv[keyCurrentStreak]),
		LongestStreak:        atoi(kv[keyLongestStreak]),
		FreezeCount:          atoi(kv[keyFreezeCount]),
		LastActiveDate:       kv[keyLastActiveDate],
		TotalSessions:        atoi(kv[keyTotalSessions]),
		TotalMessages:        atoi(kv[keyTotalMessages]),
		TotalToolCalls:       atoi(kv[keyTotalToolCalls]),
		UniqueProjects:       atoi(kv[keyUniqueProjects]),
		DaysSynced:           atoi(kv[keyDaysSynced]),
		AchievementsUnlocked: atoi(kv[keyAchievementsUnlocked]),
		LastSync:             kv[keyLastSync],
		MemberSince:          kv[keyMemberSince],
		ERMu:                 atof(kv[keyERMu], rating.DefaultMu),
		ERPhi:                atof(kv[keyERPhi], rating.DefaultPhi),
		ERSigma:              atof(kv[keyERSigma], rating.DefaultSigma),
		ERTier:               kv[keyERTier],
		ERLastRated:          kv[keyERLastRated],
	}
	if p.ERTier == "" {
		p.ERTier = rating.TierFromMu(p.ERMu, "").Name
	}

	// Level and tier always follow XP and prestige.
	lp := p.Progress()
	p.Level = lp.Level
	p.TierName = lp.Tier.Name
	p.TierColor = lp.Tier.Color
	p.XPInLevel = lp.XPInLevel
	p.XPForNext = lp.XPForNext
	return p
}

// encode returns the key-value pairs to persist.
func (p Profile) encode() map[string]string {
	kv := map[string]string{
		keyTotalXP:              strconv.Itoa(p.TotalXP),
		keyLevel:                strconv.Itoa(p.Level),
		keyTierName:             p.TierName,
		keyTierColor:            p.TierColor,
		keyPrestigeCount:        strconv.Itoa(p.PrestigeCount),
		keyCurrentStreak:        strconv.Itoa(p.CurrentStreak),
		keyLongestStreak:        strconv.Itoa(p.LongestStreak),
		keyFreezeCount:          strconv.Itoa(p.FreezeCount),
		keyLastActiveDate:       p.LastActiveDate,
		keyTotalSessions:        strconv.Itoa(p.TotalSessions),
		keyTotalMessages:        strconv.Itoa(p.TotalMessages),
		keyTotalToolCalls:       strconv.Itoa(p.TotalToolCalls),
		keyUniqueProjects:       strconv.Itoa(p.UniqueProjects),
		keyDaysSynced:           strconv.Itoa(p.DaysSynced),
		keyAchievementsUnlocked: strconv.Itoa(p.AchievementsUnlocked),
		keyLastSync:             p.LastSync,
		keyERMu:                 strconv.FormatFloat(p.ERMu, 'f', -1, 64),
		keyERPhi:                strconv.FormatFloat(p.ERPhi, 'f', -1, 64),
		keyERSigma:              strconv.FormatFloat(p.ERSigma, 'f', -1, 64),
		keyERTier:               p.ERTier,
		keyERLastRated:          p.ERLastRated,
	}
	if p.MemberSince != "" {
		kv[keyMemberSince] = p.MemberSince
	}
	return kv
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atof(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
