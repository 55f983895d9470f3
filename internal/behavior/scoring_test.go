package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/wealthsim/internal/market"
	"github.com/aristath/wealthsim/internal/sim"
)

func state(regime market.Regime, action sim.Action, risk, stress, cash float64) sim.State {
	return sim.State{
		Market:     market.Period{Regime: regime},
		Action:     action,
		Risk:       risk,
		Stress:     stress,
		Allocation: sim.Allocation{Stocks: 60, ETF: 40 - cash, Cash: cash},
	}
}

func TestScore_EmptyTimelineIsNeutral(t *testing.T) {
	scores := Score(nil)
	assert.Equal(t, Scores{Discipline: 50, Panic: 50, Consistency: 50, RiskTolerance: 50, Patience: 50}, scores)
}

func TestScore_SteadyHolderBaseline(t *testing.T) {
	// All-hold, no crashes: discipline 55, panic 35 (avg stress below 55),
	// consistency 78.
	timeline := []sim.State{
		state(market.RegimeNormal, sim.ActionHold, 50, 30, 15),
		state(market.RegimeNormal, sim.ActionHold, 50, 30, 15),
		state(market.RegimeBoom, sim.ActionHold, 50, 30, 15),
	}

	scores := Score(timeline)
	assert.Equal(t, 55.0, scores.Discipline)
	assert.Equal(t, 35.0, scores.Panic)
	assert.Equal(t, 78.0, scores.Consistency)
	// riskTolerance = 65 + (50-50)*1.1 - 15*0.3 = 60.5
	assert.Equal(t, 60.5, scores.RiskTolerance)
	// patience = 70 - 35*0.3 + 55*0.4 = 81.5
	assert.Equal(t, 81.5, scores.Patience)
}

func TestScore_CrashSellsRaisePanicLowerDiscipline(t *testing.T) {
	calm := Score([]sim.State{
		state(market.RegimeCrash, sim.ActionHold, 50, 40, 15),
		state(market.RegimeNormal, sim.ActionHold, 50, 40, 15),
	})
	panicked := Score([]sim.State{
		state(market.RegimeCrash, sim.ActionSell, 50, 40, 15),
		state(market.RegimeNormal, sim.ActionSell, 50, 40, 15),
	})

	assert.Greater(t, panicked.Panic, calm.Panic)
	assert.Less(t, panicked.Discipline, calm.Discipline)
}

func TestScore_CrashBuysRewardDiscipline(t *testing.T) {
	timeline := []sim.State{
		state(market.RegimeCrash, sim.ActionBuy, 50, 40, 15),
		state(market.RegimeCrash, sim.ActionBuy, 50, 40, 15),
	}
	// discipline = 55 + 2*5 = 65 (no rebalances, no changes, no crash sells)
	assert.Equal(t, 65.0, Score(timeline).Discipline)
}

func TestScore_ActionChangesErodeConsistency(t *testing.T) {
	timeline := []sim.State{
		state(market.RegimeNormal, sim.ActionBuy, 50, 30, 15),
		state(market.RegimeNormal, sim.ActionSell, 50, 30, 15),
		state(market.RegimeNormal, sim.ActionBuy, 50, 30, 15),
		state(market.RegimeNormal, sim.ActionSell, 50, 30, 15),
	}
	// consistency = 78 - 3*4 = 66
	assert.Equal(t, 66.0, Score(timeline).Consistency)
}

func TestScore_HighStressFeedsPanic(t *testing.T) {
	timeline := []sim.State{
		state(market.RegimeNormal, sim.ActionHold, 50, 95, 15),
		state(market.RegimeNormal, sim.ActionHold, 50, 95, 15),
	}
	// panic = 35 + max(0, 95-55) = 75
	assert.Equal(t, 75.0, Score(timeline).Panic)
}

func TestScore_AllClampedToRange(t *testing.T) {
	var timeline []sim.State
	for i := 0; i < 30; i++ {
		timeline = append(timeline, state(market.RegimeCrash, sim.ActionSell, 100, 100, 0))
	}

	scores := Score(timeline)
	for _, v := range []float64{scores.Discipline, scores.Panic, scores.Consistency, scores.RiskTolerance, scores.Patience} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
	assert.Equal(t, 0.0, scores.Discipline)
	assert.Equal(t, 100.0, scores.Panic)
}

func TestInferPersona_Cascade(t *testing.T) {
	tests := []struct {
		name   string
		scores Scores
		want   string
	}{
		{"stoic", Scores{Panic: 20, Discipline: 75, Consistency: 60, RiskTolerance: 50, Patience: 50}, "Stoic Compounder"},
		{"momentum", Scores{Panic: 50, Discipline: 50, Consistency: 40, RiskTolerance: 80, Patience: 50}, "Momentum Chaser"},
		{"systematic", Scores{Panic: 40, Discipline: 70, Consistency: 60, RiskTolerance: 50, Patience: 70}, "Systematic Allocator"},
		{"reactor", Scores{Panic: 70, Discipline: 40, Consistency: 60, RiskTolerance: 50, Patience: 40}, "Headline Reactor"},
		{"adaptive", Scores{Panic: 50, Discipline: 50, Consistency: 60, RiskTolerance: 50, Patience: 50}, "Adaptive Builder"},
		// First match wins: stoic outranks systematic even when both hold.
		{"stoic-over-systematic", Scores{Panic: 20, Discipline: 75, Consistency: 60, RiskTolerance: 50, Patience: 70}, "Stoic Compounder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferPersona(tt.scores))
		})
	}
}

func TestCoachAdvice_FallbackWhenStrong(t *testing.T) {
	advice := CoachAdvice(Scores{Panic: 30, Discipline: 70, Consistency: 70, RiskTolerance: 60, Patience: 70})
	assert.Equal(t, []string{"Current behavior is strong. Focus on consistency and long-horizon contributions."}, advice)
}

func TestCoachAdvice_ChecksAreIndependentAndOrdered(t *testing.T) {
	advice := CoachAdvice(Scores{Panic: 70, Discipline: 40, Consistency: 40, RiskTolerance: 90, Patience: 30})
	assert.Len(t, advice, 4)
	assert.Contains(t, advice[0], "crash playbook")
	assert.Contains(t, advice[1], "auto-invest")
	assert.Contains(t, advice[2], "strategy pivots")
	assert.Contains(t, advice[3], "risk appetite")
}

func TestScore_PureFunctionOfTimeline(t *testing.T) {
	run := sim.Execute(sim.Config{Seed: "behavior-pure", Periods: 20, StartingWealth: 10000, Contribution: 1000})
	assert.Equal(t, Score(run.Timeline), Score(run.Timeline))
}
