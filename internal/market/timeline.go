// Package market generates deterministic market timelines. Regime selection is
// a first-order Markov chain: the transition probabilities depend only on the
// immediately preceding period's regime, which keeps the model testable while
// still clustering crashes with recoveries and booms with pullbacks.
package market

import "github.com/aristath/wealthsim/internal/rng"

// Regime is the categorical market condition for a period.
type Regime string

const (
	RegimeNormal    Regime = "normal"
	RegimeBoom      Regime = "boom"
	RegimeCrash     Regime = "crash"
	RegimeRecession Regime = "recession"
)

// Period is one simulated market year.
type Period struct {
	Index      int     `json:"index"`
	Regime     Regime  `json:"regime"`
	ReturnPct  float64 `json:"return_pct"`
	Volatility float64 `json:"volatility"`
	Headline   string  `json:"headline"`
}

// Headline pools are cosmetic flavor only - regime-consistent, never load-bearing.
var headlines = map[Regime][]string{
	RegimeNormal: {
		"Steady GDP growth keeps markets calm",
		"Inflation cools while earnings beat expectations",
		"Broad market grinds higher on strong guidance",
	},
	RegimeBoom: {
		"AI mania sends growth equities vertical",
		"Risk assets rally as rates fall sharply",
		"Mega-cap melt-up pushes indices to records",
	},
	RegimeCrash: {
		"Credit shock triggers broad panic selling",
		"Liquidity crunch sparks historic drawdown",
		"Sudden de-risking wipes out recent gains",
	},
	RegimeRecession: {
		"Corporate layoffs rise as demand contracts",
		"Manufacturing slowdown drags global outlook",
		"Consumers pull back amid tighter credit",
	},
}

var defaultTransitions = []rng.Weighted[Regime]{
	{Weight: 0.52, Value: RegimeNormal},
	{Weight: 0.20, Value: RegimeBoom},
	{Weight: 0.15, Value: RegimeRecession},
	{Weight: 0.13, Value: RegimeCrash},
}

var afterCrashTransitions = []rng.Weighted[Regime]{
	{Weight: 0.48, Value: RegimeRecession},
	{Weight: 0.37, Value: RegimeNormal},
	{Weight: 0.15, Value: RegimeBoom},
}

var afterBoomTransitions = []rng.Weighted[Regime]{
	{Weight: 0.45, Value: RegimeNormal},
	{Weight: 0.28, Value: RegimeBoom},
	{Weight: 0.17, Value: RegimeRecession},
	{Weight: 0.10, Value: RegimeCrash},
}

// pickRegime selects the next regime. The first period (previous == "") uses
// the default table.
func pickRegime(r *rng.Rand, previous Regime) Regime {
	switch previous {
	case RegimeCrash:
		return rng.WeightedPick(r, afterCrashTransitions)
	case RegimeBoom:
		return rng.WeightedPick(r, afterBoomTransitions)
	default:
		return rng.WeightedPick(r, defaultTransitions)
	}
}

func regimeReturn(r *rng.Rand, regime Regime) float64 {
	switch regime {
	case RegimeBoom:
		return r.Uniform(0.14, 0.32)
	case RegimeCrash:
		return r.Uniform(-0.45, -0.18)
	case RegimeRecession:
		return r.Uniform(-0.12, 0.05)
	default:
		return r.Uniform(0.03, 0.12)
	}
}

func regimeVolatility(r *rng.Rand, regime Regime) float64 {
	switch regime {
	case RegimeBoom:
		return r.Uniform(0.16, 0.30)
	case RegimeCrash:
		return r.Uniform(0.28, 0.50)
	case RegimeRecession:
		return r.Uniform(0.20, 0.36)
	default:
		return r.Uniform(0.10, 0.20)
	}
}

// GenerateTimeline produces a 1-indexed sequence of periods for the seed.
// Same (seed, periods) always produces the identical sequence, headlines
// included. Non-positive period counts yield an empty timeline.
func GenerateTimeline(seed string, periods int) []Period {
	r := rng.New(seed)
	timeline := make([]Period, 0, max(0, periods))
	var previous Regime

	for index := 0; index < periods; index++ {
		regime := pickRegime(r, previous)
		pool := headlines[regime]
		headline := pool[r.Intn(len(pool))]

		timeline = append(timeline, Period{
			Index:      index + 1,
			Regime:     regime,
			Headline:   headline,
			ReturnPct:  regimeReturn(r, regime),
			Volatility: regimeVolatility(r, regime),
		})
		previous = regime
	}

	return timeline
}
