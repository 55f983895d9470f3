package npc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wealthsim/internal/market"
	"github.com/aristath/wealthsim/internal/sim"
)

func TestLeaderboard_RunsAllBots(t *testing.T) {
	board := Leaderboard("universe-1", 20, 15000, 6000)

	require.Len(t, board.Entries, 4)
	keys := map[string]bool{}
	for _, e := range board.Entries {
		keys[e.NpcKey] = true
		assert.Len(t, e.Run.Timeline, 20)
	}
	assert.True(t, keys["conservative"])
	assert.True(t, keys["index"])
	assert.True(t, keys["yolo"])
	assert.True(t, keys["trend"])
}

func TestLeaderboard_SortedByEndingWealth(t *testing.T) {
	board := Leaderboard("sort-check", 25, 10000, 2000)
	for i := 1; i < len(board.Entries); i++ {
		assert.GreaterOrEqual(t,
			board.Entries[i-1].Run.EndingWealth,
			board.Entries[i].Run.EndingWealth)
	}
}

func TestLeaderboard_Deterministic(t *testing.T) {
	a := Leaderboard("universe-1", 20, 15000, 6000)
	b := Leaderboard("universe-1", 20, 15000, 6000)

	require.Len(t, b.Entries, len(a.Entries))
	for i := range a.Entries {
		assert.Equal(t, a.Entries[i].NpcKey, b.Entries[i].NpcKey)
		assert.Equal(t, a.Entries[i].Run.EndingWealth, b.Entries[i].Run.EndingWealth)
		assert.Equal(t, a.Entries[i].Run.CAGR, b.Entries[i].Run.CAGR)
	}
	assert.Equal(t, a.MeanEndingWealth, b.MeanEndingWealth)
	assert.Equal(t, a.WealthStdDev, b.WealthStdDev)
}

func TestIndexBot_AlternatesRebalanceAndHold(t *testing.T) {
	var inv Investor
	for _, candidate := range Investors {
		if candidate.Key == "index" {
			inv = candidate
		}
	}
	require.NotEmpty(t, inv.Key)

	policy := inv.Policy()
	first := policy.Decide(sim.DecisionContext{PeriodIndex: 0})
	second := policy.Decide(sim.DecisionContext{PeriodIndex: 1})
	assert.Equal(t, sim.ActionRebalance, first)
	assert.Equal(t, sim.ActionHold, second)
}

func TestConservativeBot_SellsIntoCrash(t *testing.T) {
	var inv Investor
	for _, candidate := range Investors {
		if candidate.Key == "conservative" {
			inv = candidate
		}
	}
	require.NotEmpty(t, inv.Key)

	policy := inv.Policy()
	action := policy.Decide(sim.DecisionContext{
		Market: market.Period{Regime: market.RegimeCrash, ReturnPct: -0.30},
	})
	assert.Equal(t, sim.ActionSell, action)
}

func TestTrendBot_PreviousActionMatters(t *testing.T) {
	var inv Investor
	for _, candidate := range Investors {
		if candidate.Key == "trend" {
			inv = candidate
		}
	}
	require.NotEmpty(t, inv.Key)

	policy := inv.Policy()
	// Strong up period: buy.
	first := policy.Decide(sim.DecisionContext{Market: market.Period{ReturnPct: 0.10}})
	assert.Equal(t, sim.ActionBuy, first)
	// Flat period after a buy: hold rather than rebalance.
	second := policy.Decide(sim.DecisionContext{Market: market.Period{ReturnPct: 0.01}})
	assert.Equal(t, sim.ActionHold, second)

	// A fresh policy with no buy history rebalances on the same flat period.
	fresh := inv.Policy()
	assert.Equal(t, sim.ActionRebalance, fresh.Decide(sim.DecisionContext{Market: market.Period{ReturnPct: 0.01}}))
}
