package engine

import (
	"sort"
	"strconv"
)

// Rarity classifies how hard an achievement is to earn.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// AchievementStats is the lifetime snapshot achievements are checked against.
type AchievementStats struct {
	TotalSessions          int `json:"total_sessions"`
	TotalMessages          int `json:"total_messages"`
	TotalToolCalls         int `json:"total_tool_calls"`
	NightSessions          int `json:"night_sessions"`
	EarlySessions          int `json:"early_sessions"`
	CurrentStreak          int `json:"current_streak"`
	LongestStreak          int `json:"longest_streak"`
	UniqueProjects         int `json:"unique_projects"`
	LongestSessionMessages int `json:"longest_session_messages"`
}

// AchievementDef describes one achievement and the stat that drives it.
type AchievementDef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rarity      Rarity `json:"rarity"`
	Target      int    `json:"target"`

	value func(AchievementStats) int
}

// Current returns the stat value this achievement measures.
func (d AchievementDef) Current(s AchievementStats) int {
	if d.value == nil {
		return 0
	}
	return d.value(s)
}

// AchievementStatus is the progress of one achievement.
type AchievementStatus struct {
	Def        AchievementDef `json:"achievement"`
	Progress   float64        `json:"progress"`
	Unlocked   bool           `json:"unlocked"`
	UnlockedAt string         `json:"unlocked_at,omitempty"`
}

// CurrentValue returns the stat value implied by the progress fraction.
func (s AchievementStatus) CurrentValue() int {
	return int(s.Progress * float64(s.Def.Target))
}

// Achievements is the full achievement catalog.
var Achievements = []AchievementDef{
	{
		ID: "hello_world", Name: "Hello, World", Rarity: RarityCommon, Target: 1,
		Description: "Complete your first Claude Code session",
		value:       func(s AchievementStats) int { return s.TotalSessions },
	},
	{
		ID: "centurion", Name: "Centurion", Rarity: RarityRare, Target: 100,
		Description: "Complete 100 sessions",
		value:       func(s AchievementStats) int { return s.TotalSessions },
	},
	{
		ID: "thousand_voices", Name: "Thousand Voices", Rarity: RarityCommon, Target: 1000,
		Description: "Send 1,000 messages",
		value:       func(s AchievementStats) int { return s.TotalMessages },
	},
	{
		ID: "tool_master", Name: "Tool Master", Rarity: RarityRare, Target: 10000,
		Description: "Make 10,000 tool calls",
		value:       func(s AchievementStats) int { return s.TotalToolCalls },
	},
	{
		ID: "night_owl", Name: "Night Owl", Rarity: RarityCommon, Target: 1,
		Description: "Have a session between midnight and 5 AM",
		value:       func(s AchievementStats) int { return s.NightSessions },
	},
	{
		ID: "early_bird", Name: "Early Bird", Rarity: RarityCommon, Target: 1,
		Description: "Have a session before 7 AM",
		value:       func(s AchievementStats) int { return s.EarlySessions },
	},
	{
		ID: "on_fire", Name: "On Fire", Rarity: RarityCommon, Target: 7,
		Description: "Maintain a 7-day streak",
		value:       func(s AchievementStats) int { return s.CurrentStreak },
	},
	{
		ID: "iron_will", Name: "Iron Will", Rarity: RarityRare, Target: 30,
		Description: "Maintain a 30-day streak",
		value:       func(s AchievementStats) int { return s.LongestStreak },
	},
	{
		ID: "polyglot", Name: "Polyglot", Rarity: RarityCommon, Target: 5,
		Description: "Work in 5 different projects",
		value:       func(s AchievementStats) int { return s.UniqueProjects },
	},
	{
		ID: "marathon_runner", Name: "Marathon Runner", Rarity: RarityRare, Target: 100,
		Description: "Have a single session with 100+ messages",
		value:       func(s AchievementStats) int { return s.LongestSessionMessages },
	},
}

// AchievementByID looks up a definition in the catalog.
func AchievementByID(id string) (AchievementDef, bool) {
	for _, d := range Achievements {
		if d.ID == id {
			return d, true
		}
	}
	return AchievementDef{}, false
}

// CheckAchievements evaluates every achievement against stats. Progress is
// current/target clamped to [0, 1].
func CheckAchievements(stats AchievementStats) []AchievementStatus {
	out := make([]AchievementStatus, 0, len(Achievements))
	for _, d := range Achievements {
		p := 0.0
		if d.Target > 0 {
			p = min(max(float64(d.Current(stats))/float64(d.Target), 0), 1)
		}
		out = append(out, AchievementStatus{Def: d, Progress: p, Unlocked: p >= 1})
	}
	return out
}

// MergeAchievements carries prior unlocks forward. An achievement unlocked in
// prev stays unlocked at progress 1.0 with its original date; newly unlocked
// ones get unlockedAt.
func MergeAchievements(prev, cur []AchievementStatus, unlockedAt string) []AchievementStatus {
	before := make(map[string]AchievementStatus, len(prev))
	for _, s := range prev {
		before[s.Def.ID] = s
	}
	out := make([]AchievementStatus, len(cur))
	for i, s := range cur {
		if p, ok := before[s.Def.ID]; ok && p.Unlocked {
			s.Unlocked, s.Progress, s.UnlockedAt = true, 1, p.UnlockedAt
		} else if s.Unlocked {
			s.UnlockedAt = unlockedAt
		}
		out[i] = s
	}
	return out
}

// NewlyUnlocked returns the definitions unlocked in cur but not in prev.
func NewlyUnlocked(prev, cur []AchievementStatus) []AchievementDef {
	had := make(map[string]bool, len(prev))
	for _, s := range prev {
		if s.Unlocked {
			had[s.Def.ID] = true
		}
	}
	var out []AchievementDef
	for _, s := range cur {
		if s.Unlocked && !had[s.Def.ID] {
			out = append(out, s.Def)
		}
	}
	return out
}

// ClosestAchievements returns up to n locked achievements with the highest
// progress.
func ClosestAchievements(statuses []AchievementStatus, n int) []AchievementStatus {
	var locked []AchievementStatus
	for _, s := range statuses {
		if !s.Unlocked {
			locked = append(locked, s)
		}
	}
	sort.SliceStable(locked, func(i, j int) bool {
		return locked[i].Progress > locked[j].Progress
	})
	if len(locked) > n {
		locked = locked[:n]
	}
	return locked
}

// HourBuckets sums session counts over the hours [from, to] inclusive. Keys
// are hour-of-day strings as stored in stats-cache.json.
func HourBuckets(hourCounts map[string]int, from, to int) int {
	total := 0
	for h := from; h <= to; h++ {
		total += hourCounts[strconv.Itoa(h)]
	}
	return total
}
