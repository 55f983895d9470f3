// Package behavior derives psychological/trading-style scores from a
// completed simulation timeline. The formulas are hand-tuned heuristic
// regressions carried over from the original scoring model; coefficients are
// load-bearing for downstream persona and coaching thresholds and must not be
// re-tuned casually.
package behavior

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/aristath/wealthsim/internal/market"
	"github.com/aristath/wealthsim/internal/sim"
)

// Scores holds the five derived behavior metrics, each clamped to [0,100]
// and rounded to one decimal.
type Scores struct {
	Discipline    float64 `json:"discipline"`
	Panic         float64 `json:"panic"`
	Consistency   float64 `json:"consistency"`
	RiskTolerance float64 `json:"risk_tolerance"`
	Patience      float64 `json:"patience"`
}

func clamp(value, min, max float64) float64 {
	return math.Min(max, math.Max(min, value))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// NeutralScores is the result for an empty timeline: a neutral 50-across
// baseline, not an error.
func NeutralScores() Scores {
	return Scores{Discipline: 50, Panic: 50, Consistency: 50, RiskTolerance: 50, Patience: 50}
}

// Score computes behavior scores from a completed timeline.
func Score(timeline []sim.State) Scores {
	if len(timeline) == 0 {
		return NeutralScores()
	}

	var crashSells, crashBuys, rebalances, actionChanges int
	risks := make([]float64, len(timeline))
	stresses := make([]float64, len(timeline))
	cashes := make([]float64, len(timeline))

	for i, state := range timeline {
		if state.Market.Regime == market.RegimeCrash {
			switch state.Action {
			case sim.ActionSell:
				crashSells++
			case sim.ActionBuy:
				crashBuys++
			}
		}
		if state.Action == sim.ActionRebalance {
			rebalances++
		}
		if i > 0 && state.Action != timeline[i-1].Action {
			actionChanges++
		}
		risks[i] = state.Risk
		stresses[i] = state.Stress
		cashes[i] = state.Allocation.Cash
	}

	avgRisk := stat.Mean(risks, nil)
	avgStress := stat.Mean(stresses, nil)
	avgCash := stat.Mean(cashes, nil)

	discipline := clamp(55+float64(rebalances)*2+float64(crashBuys)*5-float64(crashSells)*10-float64(actionChanges), 0, 100)
	panic := clamp(35+float64(crashSells)*20+math.Max(0, avgStress-55)-float64(rebalances)*2, 0, 100)
	consistency := clamp(78-float64(actionChanges)*4+float64(rebalances)*3, 0, 100)
	riskTolerance := clamp(65+(avgRisk-50)*1.1-avgCash*0.3, 0, 100)
	patience := clamp(70-panic*0.3+discipline*0.4, 0, 100)

	return Scores{
		Discipline:    round1(discipline),
		Panic:         round1(panic),
		Consistency:   round1(consistency),
		RiskTolerance: round1(riskTolerance),
		Patience:      round1(patience),
	}
}

// InferPersona classifies scores into a named investor persona.
// Ordered cascade, first match wins.
func InferPersona(s Scores) string {
	if s.Panic < 30 && s.Discipline > 70 {
		return "Stoic Compounder"
	}
	if s.RiskTolerance > 70 && s.Consistency < 45 {
		return "Momentum Chaser"
	}
	if s.Discipline > 65 && s.Patience > 65 {
		return "Systematic Allocator"
	}
	if s.Panic > 65 {
		return "Headline Reactor"
	}
	return "Adaptive Builder"
}

// CoachAdvice builds coaching messages from threshold checks. The checks are
// independent and non-exclusive; check order defines output order. When none
// trigger, a single fallback message is returned.
func CoachAdvice(s Scores) []string {
	var advice []string

	if s.Panic > 60 {
		advice = append(advice, "Set a crash playbook before volatility spikes to reduce panic-driven sells.")
	}
	if s.Discipline < 55 {
		advice = append(advice, "Use monthly auto-invest and scheduled rebalancing to improve discipline.")
	}
	if s.Consistency < 50 {
		advice = append(advice, "Too many strategy pivots reduce edge. Keep one rule-set for at least one full cycle.")
	}
	if s.RiskTolerance > 80 {
		advice = append(advice, "Your risk appetite is high. Add a downside guardrail to avoid emotional drawdowns.")
	}

	if len(advice) == 0 {
		advice = append(advice, "Current behavior is strong. Focus on consistency and long-horizon contributions.")
	}

	return advice
}
