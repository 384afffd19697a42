package rating

import (
	"github.com/blackwell-systems/clauderank/internal/claude"
	"github.com/blackwell-systems/clauderank/internal/engine"
)

// DayResult is one rated day's transition.
type DayResult struct {
	Date         string  `json:"date"`
	QualityScore float64 `json:"quality_score"`
	MuBefore     float64 `json:"mu_before"`
	PhiBefore    float64 `json:"phi_before"`
	Mu           float64 `json:"mu"`
	Phi          float64 `json:"phi"`
	Sigma        float64 `json:"sigma"`
	Tier         string  `json:"tier"`
}

// Replay is the state carried between days of a historical ER replay.
type Replay struct {
	State State
	Tier  string
}

// NewReplay starts a replay from state with the tier currently held. An
// empty tier disables hysteresis for the first rated day.
func NewReplay(state State, tier string) Replay {
	return Replay{State: state, Tier: tier}
}

// Step rates one day. Days without sessions, or with an unparsable date,
// are not rated: the replay is returned unchanged and ok is false.
func (r Replay) Step(a claude.DailyActivity) (next Replay, res DayResult, ok bool) {
	if a.SessionCount <= 0 {
		return r, DayResult{}, false
	}
	day, ok := engine.ParseDate(a.Date)
	if !ok {
		return r, DayResult{}, false
	}

	gap := 1
	if last, ok := engine.ParseDate(r.State.LastRatedDate); ok {
		gap = engine.DaysBetween(last, day)
	}

	score := QualityScore(a)
	after := Update(r.State, score, gap)
	after.LastRatedDate = a.Date
	tier := TierFromMu(after.Mu, r.Tier)

	res = DayResult{
		Date:         a.Date,
		QualityScore: score,
		MuBefore:     r.State.Mu,
		PhiBefore:    r.State.Phi,
		Mu:           after.Mu,
		Phi:          after.Phi,
		Sigma:        after.Sigma,
		Tier:         tier.Name,
	}
	return Replay{State: after, Tier: tier.Name}, res, true
}

// CalculateHistoricalER rates every day with sessions, in ascending date
// order, starting from a fresh rating.
func CalculateHistoricalER(acts []claude.DailyActivity) []DayResult {
	r := NewReplay(NewState(), "")
	var results []DayResult
	for _, a := range engine.SortActivities(acts) {
		next, res, ok := r.Step(a)
		if !ok {
			continue
		}
		r = next
		results = append(results, res)
	}
	return results
}
