package sim

import (
	"math"

	"github.com/google/uuid"

	"github.com/aristath/wealthsim/internal/market"
)

// Starting conditions for every run.
var initialAllocation = Allocation{Stocks: 45, ETF: 40, Cash: 15}

const (
	initialStress  = 28.0
	initialEmotion = 56.0
)

// Config describes one simulation run. Policy may be nil, in which case the
// runner holds every period.
type Config struct {
	Seed           string
	Periods        int
	StartingWealth float64
	Contribution   float64
	Policy         DecisionPolicy
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

// evaluateStress carries stress forward from the previous period. Volatility
// and equity exposure always add pressure; selling into a crash hurts most,
// rebalancing and calm markets relieve it.
func evaluateStress(previous float64, action Action, period market.Period, a Allocation) float64 {
	equityExposure := a.Stocks + a.ETF
	stress := previous

	stress += period.Volatility * 35
	stress += equityExposure / 100 * 12

	if period.Regime == market.RegimeCrash && action == ActionSell {
		stress += 12
	}
	if period.Regime == market.RegimeCrash && action == ActionBuy {
		stress += 7
	}
	if action == ActionRebalance {
		stress -= 6
	}
	if period.Regime == market.RegimeNormal {
		stress -= 5
	}

	return clamp(stress, 0, 100)
}

func evaluateEmotion(previous float64, period market.Period, action Action) float64 {
	emotion := previous + period.ReturnPct*45

	if period.Regime == market.RegimeCrash && action == ActionSell {
		emotion -= 9
	}
	if period.Regime == market.RegimeCrash && action == ActionHold {
		emotion += 4
	}
	if action == ActionBuy && period.Regime == market.RegimeBoom {
		emotion += 5
	}

	return clamp(emotion, 0, 100)
}

// riskScore is point-in-time, not carried between periods.
func riskScore(a Allocation, period market.Period) float64 {
	equityExposure := a.Stocks + a.ETF
	concentrationPenalty := math.Abs(a.Stocks-a.ETF) / 2
	return clamp(equityExposure*0.72+period.Volatility*40+concentrationPenalty, 0, 100)
}

// cagr reports 0 for non-positive starting wealth, period counts, or growth.
// Negative-growth runs report 0 rather than a negative rate - a compatibility
// policy, not a financial truth.
func cagr(startingWealth, endingWealth float64, periods int) float64 {
	if startingWealth <= 0 || periods <= 0 {
		return 0
	}
	growth := endingWealth / startingWealth
	if growth <= 0 {
		return 0
	}
	return math.Pow(growth, 1/float64(periods)) - 1
}

// Execute runs a simulation. It is a pure function of its config: no shared
// state exists between runs, so independent runs are safe to execute
// concurrently. It never fails - degenerate inputs produce a degenerate but
// valid run (e.g. Periods <= 0 yields an empty timeline).
func Execute(cfg Config) Run {
	timeline := market.GenerateTimeline(cfg.Seed, cfg.Periods)
	policy := cfg.Policy
	if policy == nil {
		policy = HoldPolicy
	}

	allocation := initialAllocation
	states := make([]State, 0, len(timeline))
	wealth := cfg.StartingWealth
	stress := initialStress
	emotion := initialEmotion

	for index, period := range timeline {
		var previous *State
		if len(states) > 0 {
			previous = &states[len(states)-1]
		}

		action := policy.Decide(DecisionContext{
			PeriodIndex: index,
			Market:      period,
			Previous:    previous,
		})

		allocation = ApplyDecision(allocation, action)
		netReturn := WeightedReturn(allocation, period)
		wealth = (wealth + cfg.Contribution) * (1 + netReturn)
		stress = evaluateStress(stress, action, period, allocation)
		emotion = evaluateEmotion(emotion, period, action)

		states = append(states, State{
			Period:       period.Index,
			Market:       period,
			Action:       action,
			Wealth:       round2(wealth),
			Contribution: cfg.Contribution,
			Risk:         round2(riskScore(allocation, period)),
			Stress:       round2(stress),
			Emotion:      round2(emotion),
			Allocation:   allocation,
		})
	}

	return Run{
		ID:             uuid.New().String(),
		Seed:           cfg.Seed,
		Periods:        cfg.Periods,
		StartingWealth: cfg.StartingWealth,
		Contribution:   cfg.Contribution,
		Timeline:       states,
		EndingWealth:   round2(wealth),
		CAGR:           round4(cagr(cfg.StartingWealth, wealth, cfg.Periods)),
	}
}
