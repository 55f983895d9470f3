// Package npc provides the built-in bot investors and the leaderboard that
// races them over the same market timeline. Each bot run is an independent
// simulation of the shared seed, so bots face identical markets and differ
// only in policy.
package npc

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/aristath/wealthsim/internal/market"
	"github.com/aristath/wealthsim/internal/sim"
)

// Investor is a named bot with a decision rule.
type Investor struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`

	decide func(periodIndex int, marketReturn float64, regime market.Regime, previousAction sim.Action) sim.Action
}

// Investors is the fixed bot roster, in display order.
var Investors = []Investor{
	{
		Key:         "conservative",
		Label:       "Conservative Bot",
		Description: "Protects downside and favors cash during turbulence.",
		decide: func(_ int, marketReturn float64, regime market.Regime, _ sim.Action) sim.Action {
			if regime == market.RegimeCrash || marketReturn < -0.10 {
				return sim.ActionSell
			}
			if regime == market.RegimeRecession {
				return sim.ActionHold
			}
			return sim.ActionRebalance
		},
	},
	{
		Key:         "index",
		Label:       "Index Bot",
		Description: "Systematic rebalancing with no market timing.",
		decide: func(periodIndex int, _ float64, _ market.Regime, _ sim.Action) sim.Action {
			if periodIndex%2 == 0 {
				return sim.ActionRebalance
			}
			return sim.ActionHold
		},
	},
	{
		Key:         "yolo",
		Label:       "YOLO Bot",
		Description: "Chases upside and takes concentrated risk.",
		decide: func(_ int, marketReturn float64, regime market.Regime, _ sim.Action) sim.Action {
			if regime == market.RegimeBoom || marketReturn > 0.12 {
				return sim.ActionBuy
			}
			if regime == market.RegimeCrash {
				return sim.ActionSell
			}
			return sim.ActionBuy
		},
	},
	{
		Key:         "trend",
		Label:       "Trend Bot",
		Description: "Rides momentum and exits when trend breaks.",
		decide: func(_ int, marketReturn float64, _ market.Regime, previousAction sim.Action) sim.Action {
			if marketReturn > 0.04 {
				return sim.ActionBuy
			}
			if marketReturn < -0.08 {
				return sim.ActionSell
			}
			if previousAction == sim.ActionBuy {
				return sim.ActionHold
			}
			return sim.ActionRebalance
		},
	},
}

// Policy returns a fresh DecisionPolicy for the investor. Each policy carries
// its own previous-action state, so policies must not be shared across runs.
func (inv Investor) Policy() sim.DecisionPolicy {
	var previousAction sim.Action
	return sim.PolicyFunc(func(ctx sim.DecisionContext) sim.Action {
		action := inv.decide(ctx.PeriodIndex, ctx.Market.ReturnPct, ctx.Market.Regime, previousAction)
		previousAction = action
		return action
	})
}

// Entry is one bot's completed run on the leaderboard.
type Entry struct {
	NpcKey   string  `json:"npc_key"`
	NpcLabel string  `json:"npc_label"`
	Run      sim.Run `json:"run"`
}

// Board is a completed leaderboard with summary statistics over the field.
type Board struct {
	Entries          []Entry `json:"entries"`
	MeanEndingWealth float64 `json:"mean_ending_wealth"`
	WealthStdDev     float64 `json:"wealth_std_dev"`
}

// Leaderboard runs every bot over the same seed and sorts by ending wealth,
// best first. Runs are independent pure computations, ranked after the fact.
func Leaderboard(seed string, periods int, startingWealth, contribution float64) Board {
	entries := make([]Entry, 0, len(Investors))
	wealths := make([]float64, 0, len(Investors))

	for _, inv := range Investors {
		run := sim.Execute(sim.Config{
			Seed:           seed,
			Periods:        periods,
			StartingWealth: startingWealth,
			Contribution:   contribution,
			Policy:         inv.Policy(),
		})
		entries = append(entries, Entry{NpcKey: inv.Key, NpcLabel: inv.Label, Run: run})
		wealths = append(wealths, run.EndingWealth)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Run.EndingWealth > entries[j].Run.EndingWealth
	})

	return Board{
		Entries:          entries,
		MeanEndingWealth: stat.Mean(wealths, nil),
		WealthStdDev:     stat.StdDev(wealths, nil),
	}
}
