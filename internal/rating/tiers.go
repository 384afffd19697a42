package rating

// HysteresisBuffer is how far below its floor mu must fall before a tier
// is lost.
const HysteresisBuffer = 30.0

// Tier is a named mu band.
type Tier struct {
	Name  string  `json:"name"`
	MinMu float64 `json:"min_mu"`
	MaxMu float64 `json:"max_mu"`
	Color string  `json:"color"`
}

// Tiers lists every ER band in ascending order.
var Tiers = []Tier{
	{"Spectator", 0, 1099, "grey50"},
	{"Engaged", 1100, 1299, "dark_orange3"},
	{"Active", 1300, 1499, "grey70"},
	{"Focused", 1500, 1649, "gold1"},
	{"Dedicated", 1650, 1799, "deep_sky_blue1"},
	{"Intense", 1800, 1949, "cyan"},
	{"Expert", 1950, 2099, "purple"},
	{"Elite", 2100, 2249, "dark_violet"},
	{"Master", 2250, 2399, "red1"},
	{"Transcendent", 2400, 9999, "orange_red1"},
}

// TierFromMu returns the tier for mu. If current names the tier the user
// already holds, promotions apply immediately but a demotion needs mu to
// drop more than HysteresisBuffer below the current tier's floor.
func TierFromMu(mu float64, current string) Tier {
	idx := bandIndex(mu)
	cur := tierIndex(current)
	if cur < 0 || idx >= cur {
		return Tiers[idx]
	}
	if mu < Tiers[cur].MinMu-HysteresisBuffer {
		return Tiers[idx]
	}
	return Tiers[cur]
}

// bandIndex returns the highest tier whose floor is at or below mu.
func bandIndex(mu float64) int {
	idx := 0
	for i, t := range Tiers {
		if mu >= t.MinMu {
			idx = i
		}
	}
	return idx
}

func tierIndex(name string) int {
	for i, t := range Tiers {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// TierByName returns the named tier, or the lowest tier for an unknown name.
func TierByName(name string) Tier {
	if i := tierIndex(name); i >= 0 {
		return Tiers[i]
	}
	return Tiers[0]
}
