// Package rating implements the Engagement Rating (ER), a single-player
// Glicko-2 variant. Each active day is one game against a fixed virtual
// opponent, and the day's quality score in [0, 1] is the game result.
//
// Names follow Glickman's paper (https://www.glicko.net/glicko/glicko2.pdf):
// mu and phi are the rating and deviation, sigma the volatility and tau the
// volatility constraint. Exported State values are on the display scale.
package rating

import (
	"math"

	"github.com/blackwell-systems/clauderank/internal/claude"
)

// Display-scale defaults and bounds.
const (
	DefaultMu    = 1500.0
	DefaultPhi   = 350.0
	DefaultSigma = 0.06

	MinMu  = 0.0
	MaxMu  = 3000.0
	MinPhi = 10.0
	MaxPhi = 350.0
)

const (
	scale = 173.7178
	tau   = 0.5

	epsilon         = 1e-6
	maxIterations   = 100
	stallTolerance  = 1e-10
	opponentMu      = 0.0
	opponentPhi     = 300.0 / scale
	depthWeight     = 0.40
	diversityWeight = 0.30
	consistWeight   = 0.30

	toolCallsPerSessionFull = 50.0
	messagesPerSessionFull  = 30.0
	uniqueToolsFull         = 8.0
	neutralDiversity        = 0.5
)

// State is an engagement rating on the display scale.
type State struct {
	Mu            float64 `json:"mu"`
	Phi           float64 `json:"phi"`
	Sigma         float64 `json:"sigma"`
	LastRatedDate string  `json:"last_rated_date,omitempty"`
}

// NewState returns the rating of a user with no history.
func NewState() State {
	return State{Mu: DefaultMu, Phi: DefaultPhi, Sigma: DefaultSigma}
}

// QualityScore rates one day's activity in [0, 1]. Days without sessions
// score 0. When the unique tool count is unknown, diversity is neutral.
func QualityScore(a claude.DailyActivity) float64 {
	sessions := float64(a.SessionCount)
	if sessions <= 0 {
		return 0
	}

	depth := clamp(float64(a.ToolCallCount)/sessions/toolCallsPerSessionFull, 0, 1)
	consistency := clamp(float64(a.MessageCount)/sessions/messagesPerSessionFull, 0, 1)
	diversity := neutralDiversity
	if a.UniqueToolCount > 0 {
		diversity = min(float64(a.UniqueToolCount)/uniqueToolsFull, 1)
	}

	return clamp(depthWeight*depth+diversityWeight*diversity+consistWeight*consistency, 0, 1)
}

// Update applies one rated day with the given quality score. daysSince is
// the calendar distance from the previous rated day; each idle day in
// between inflates phi before the result is applied.
func Update(s State, score float64, daysSince int) State {
	score = clamp(score, 0, 1)
	sigma := s.Sigma
	if sigma <= 0 {
		sigma = DefaultSigma
	}

	mu := (s.Mu - DefaultMu) / scale
	phi := s.Phi / scale

	for i := 0; i < daysSince-1; i++ {
		phi = math.Sqrt(phi*phi + sigma*sigma)
	}

	g := calcG(opponentPhi)
	e := calcE(mu, opponentMu, g)
	v := 1 / (g * g * e * (1 - e))
	delta := v * g * (score - e)

	newSigma := volatility(sigma, phi, v, delta)

	phiStar := math.Sqrt(phi*phi + newSigma*newSigma)
	newPhi := 1 / math.Sqrt(1/(phiStar*phiStar)+1/v)
	newMu := mu + newPhi*newPhi*g*(score-e)

	return State{
		Mu:            clamp(scale*newMu+DefaultMu, MinMu, MaxMu),
		Phi:           clamp(scale*newPhi, MinPhi, MaxPhi),
		Sigma:         newSigma,
		LastRatedDate: s.LastRatedDate,
	}
}

// calcG reduces the influence of an opponent with a high deviation.
func calcG(phi float64) float64 {
	return 1 / math.Sqrt(1+3*phi*phi/(math.Pi*math.Pi))
}

// calcE is the expected score against an opponent.
func calcE(mu, opponentMu, g float64) float64 {
	return 1 / (1 + math.Exp(-g*(mu-opponentMu)))
}

// volatility solves for the new sigma with the Illinois variant of regula
// falsi. When the secant denominator vanishes, fA is halved and the
// iteration continues; the iteration cap bounds the loop either way.
func volatility(sigma, phi, v, delta float64) float64 {
	a := math.Log(sigma * sigma)
	deltaSq := delta * delta
	phiSq := phi * phi

	f := func(x float64) float64 {
		ex := math.Exp(x)
		d := phiSq + v + ex
		return ex*(deltaSq-phiSq-v-ex)/(2*d*d) - (x-a)/(tau*tau)
	}

	A := a
	var B float64
	if deltaSq > phiSq+v {
		B = math.Log(deltaSq - phiSq - v)
	} else {
		k := 1.0
		for f(a-k*tau) < 0 {
			k++
		}
		B = a - k*tau
	}

	fA, fB := f(A), f(B)
	for i := 0; i < maxIterations && math.Abs(B-A) > epsilon; i++ {
		if math.Abs(fB-fA) < stallTolerance {
			fA /= 2
			continue
		}
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if fC*fB <= 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}
		B, fB = C, fC
	}

	return math.Exp(A / 2)
}

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return math.Max(lo, math.Min(hi, x))
}
