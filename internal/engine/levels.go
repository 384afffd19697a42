package engine

import (
	"math"
	"strings"
)

const (
	// MaxLevel is the highest reachable level within one prestige cycle.
	MaxLevel = 50
	// LevelsPerTier is the width of each tier band.
	LevelsPerTier = 5
)

// Tier is a named band of consecutive levels.
type Tier struct {
	Number   int    `json:"tier"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	MinLevel int    `json:"min_level"`
	MaxLevel int    `json:"max_level"`
}

// Tiers lists every level band in ascending order.
var Tiers = []Tier{
	{1, "Bronze", "bronze", 1, 5},
	{2, "Silver", "silver", 6, 10},
	{3, "Gold", "gold", 11, 15},
	{4, "Platinum", "teal", 16, 20},
	{5, "Diamond", "diamond", 21, 25},
	{6, "Master", "purple", 26, 30},
	{7, "Candidate Master", "deep_purple", 31, 35},
	{8, "International Master", "crimson", 36, 40},
	{9, "Grandmaster", "amber", 41, 45},
	{10, "Legendary Grandmaster", "legendary", 46, 50},
}

// PrestigeThreshold is the XP needed to reach max level once.
var PrestigeThreshold = CumulativeXPForLevel(MaxLevel)

// LevelProgress is the level view of a total XP value.
type LevelProgress struct {
	Level         int  `json:"level"`
	Tier          Tier `json:"tier"`
	XPInLevel     int  `json:"xp_in_level"`
	XPForNext     int  `json:"xp_for_next"`
	PrestigeCount int  `json:"prestige_count"`
}

// XPForLevel returns the XP needed to complete level l.
func XPForLevel(l int) int {
	if l < 1 {
		return 0
	}
	return int(math.Floor(50*math.Pow(float64(l), 1.8) + 100*float64(l)))
}

// CumulativeXPForLevel returns the XP needed to complete levels 1 through l.
func CumulativeXPForLevel(l int) int {
	total := 0
	for i := 1; i <= l; i++ {
		total += XPForLevel(i)
	}
	return total
}

// LevelFromXP returns the level reached with total XP, capped at MaxLevel.
func LevelFromXP(total int) int {
	if total <= 0 {
		return 1
	}
	cumulative := 0
	for level := 1; level <= MaxLevel; level++ {
		cumulative += XPForLevel(level)
		if cumulative > total {
			return level
		}
	}
	return MaxLevel
}

// XPProgressInLevel returns the XP earned inside the current level and the
// XP that level requires. The requirement is 0 at MaxLevel.
func XPProgressInLevel(total int) (inLevel, forNext int) {
	if total <= 0 {
		return 0, XPForLevel(1)
	}
	level := LevelFromXP(total)
	if level >= MaxLevel {
		return total - CumulativeXPForLevel(MaxLevel-1), 0
	}
	return total - CumulativeXPForLevel(level-1), XPForLevel(level)
}

// TierFromLevel returns the band containing level, clamped to [1, MaxLevel].
func TierFromLevel(level int) Tier {
	level = min(max(level, 1), MaxLevel)
	return Tiers[(level-1)/LevelsPerTier]
}

// PrestigeXP returns the XP inside the current prestige cycle.
func PrestigeXP(total, prestigeCount int) int {
	if prestigeCount <= 0 {
		return total
	}
	return total - prestigeCount*PrestigeThreshold
}

// CanPrestige reports whether total XP covers one more full cycle.
func CanPrestige(total, prestigeCount int) bool {
	return total >= (prestigeCount+1)*PrestigeThreshold
}

// PrestigeStars renders one star per completed prestige.
func PrestigeStars(prestigeCount int) string {
	if prestigeCount <= 0 {
		return ""
	}
	return strings.Repeat("★", prestigeCount)
}

// Progress builds the level view for total lifetime XP after applying the
// prestige offset.
func Progress(total, prestigeCount int) LevelProgress {
	xp := PrestigeXP(total, prestigeCount)
	level := LevelFromXP(xp)
	inLevel, forNext := XPProgressInLevel(xp)
	return LevelProgress{
		Level:         level,
		Tier:          TierFromLevel(level),
		XPInLevel:     inLevel,
		XPForNext:     forNext,
		PrestigeCount: prestigeCount,
	}
}
