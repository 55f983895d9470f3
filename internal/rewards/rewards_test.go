package rewards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wealthsim/internal/market"
	"github.com/aristath/wealthsim/internal/sim"
)

func TestLevelFromXP(t *testing.T) {
	assert.Equal(t, 0, LevelFromXP(0))
	assert.Equal(t, 0, LevelFromXP(99))
	assert.Equal(t, 1, LevelFromXP(100))
	assert.Equal(t, 1, LevelFromXP(399))
	assert.Equal(t, 2, LevelFromXP(400))
	assert.Equal(t, 3, LevelFromXP(900))
	assert.Equal(t, 0, LevelFromXP(-500), "negative XP clamps to level 0")
}

func TestXPForLevel(t *testing.T) {
	assert.Equal(t, 0, XPForLevel(0))
	assert.Equal(t, 100, XPForLevel(1))
	assert.Equal(t, 400, XPForLevel(2))
	assert.Equal(t, 900, XPForLevel(3))
	assert.Equal(t, 0, XPForLevel(-1))
}

func TestProgressToNextLevel(t *testing.T) {
	p := ProgressToNextLevel(250)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 100, p.CurrentFloor)
	assert.Equal(t, 400, p.NextFloor)
	assert.InDelta(t, 0.5, p.Ratio, 1e-9)

	p = ProgressToNextLevel(0)
	assert.Equal(t, 0, p.Level)
	assert.Equal(t, 0, p.CurrentFloor)
	assert.Equal(t, 100, p.NextFloor)
	assert.Equal(t, 0.0, p.Ratio)
}

func TestDecisionRewards(t *testing.T) {
	decisions := []sim.Decision{
		{Action: sim.ActionRebalance},
		{Action: sim.ActionHold},
		{Action: sim.ActionBuy},
		{Action: sim.ActionSell},
	}
	assert.Equal(t, 12+8+10+5, DecisionXP(decisions))
	assert.Equal(t, 5+3+4+2, DecisionCoins(decisions))
}

func TestDecisionRewards_EmptyList(t *testing.T) {
	assert.Equal(t, 0, DecisionXP(nil))
	assert.Equal(t, 0, DecisionCoins(nil))
}

func badgeKeys(badges []Badge) []string {
	keys := make([]string, len(badges))
	for i, b := range badges {
		keys[i] = b.Key
	}
	return keys
}

func crashState(action sim.Action, stress, wealth float64) sim.State {
	return sim.State{
		Market: market.Period{Regime: market.RegimeCrash},
		Action: action,
		Stress: stress,
		Wealth: wealth,
	}
}

func normalState(action sim.Action, stress, wealth float64) sim.State {
	return sim.State{
		Market: market.Period{Regime: market.RegimeNormal},
		Action: action,
		Stress: stress,
		Wealth: wealth,
	}
}

func TestEvaluateBadges_DiamondHands(t *testing.T) {
	timeline := []sim.State{
		crashState(sim.ActionHold, 50, 1000),
		normalState(sim.ActionHold, 50, 1100),
	}
	assert.Contains(t, badgeKeys(EvaluateBadges(timeline)), "diamond-hands")

	timeline[0].Action = sim.ActionSell
	assert.NotContains(t, badgeKeys(EvaluateBadges(timeline)), "diamond-hands")
}

func TestEvaluateBadges_NoDiamondHandsWithoutCrash(t *testing.T) {
	timeline := []sim.State{
		normalState(sim.ActionHold, 50, 1000),
		normalState(sim.ActionHold, 50, 1100),
	}
	assert.NotContains(t, badgeKeys(EvaluateBadges(timeline)), "diamond-hands")
}

func TestEvaluateBadges_Allocator(t *testing.T) {
	// 2 rebalances out of 5 periods = 40%, meets the ceil(5*0.4)=2 bar.
	timeline := []sim.State{
		normalState(sim.ActionRebalance, 50, 1000),
		normalState(sim.ActionHold, 50, 1000),
		normalState(sim.ActionRebalance, 50, 1000),
		normalState(sim.ActionHold, 50, 1000),
		normalState(sim.ActionHold, 50, 1000),
	}
	assert.Contains(t, badgeKeys(EvaluateBadges(timeline)), "allocator")

	timeline[2].Action = sim.ActionHold
	assert.NotContains(t, badgeKeys(EvaluateBadges(timeline)), "allocator")
}

func TestEvaluateBadges_IceVeins(t *testing.T) {
	cool := []sim.State{normalState(sim.ActionHold, 30, 1000), normalState(sim.ActionHold, 39, 1000)}
	hot := []sim.State{normalState(sim.ActionHold, 40, 1000), normalState(sim.ActionHold, 60, 1000)}

	assert.Contains(t, badgeKeys(EvaluateBadges(cool)), "ice-veins")
	assert.NotContains(t, badgeKeys(EvaluateBadges(hot)), "ice-veins")
}

func TestEvaluateBadges_DoubleUp(t *testing.T) {
	doubled := []sim.State{normalState(sim.ActionHold, 50, 1000), normalState(sim.ActionHold, 50, 2001)}
	flat := []sim.State{normalState(sim.ActionHold, 50, 1000), normalState(sim.ActionHold, 50, 2000)}

	assert.Contains(t, badgeKeys(EvaluateBadges(doubled)), "double-up")
	assert.NotContains(t, badgeKeys(EvaluateBadges(flat)), "double-up", "exactly double does not qualify")
}

func TestEvaluateBadges_CanCoOccur(t *testing.T) {
	timeline := []sim.State{
		crashState(sim.ActionRebalance, 20, 1000),
		normalState(sim.ActionRebalance, 20, 2500),
	}
	keys := badgeKeys(EvaluateBadges(timeline))
	require.ElementsMatch(t, []string{"diamond-hands", "allocator", "ice-veins", "double-up"}, keys)
}

func TestEvaluateBadges_Idempotent(t *testing.T) {
	run := sim.Execute(sim.Config{Seed: "badges", Periods: 20, StartingWealth: 10000, Contribution: 2000})
	assert.Equal(t, EvaluateBadges(run.Timeline), EvaluateBadges(run.Timeline))
}

func TestEvaluateBadges_EmptyTimeline(t *testing.T) {
	assert.Empty(t, EvaluateBadges(nil))
}
