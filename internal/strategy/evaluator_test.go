package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/wealthsim/internal/market"
	"github.com/aristath/wealthsim/internal/sim"
)

func TestEvaluate_EmptyRulesHold(t *testing.T) {
	action := Evaluate(Input{Market: market.Period{ReturnPct: -0.40}})
	assert.Equal(t, sim.ActionHold, action)
}

func TestEvaluate_MarketDropTriggersFirstMatch(t *testing.T) {
	rules := []Rule{
		{ID: "r1", Metric: MetricMarketDrop, Operator: OpGreater, Value: 20, Action: sim.ActionSell},
		{ID: "r2", Metric: MetricMarketDrop, Operator: OpGreater, Value: 10, Action: sim.ActionRebalance},
	}

	// -25% return -> drop score 25; both rules match, first wins.
	action := Evaluate(Input{Rules: rules, Market: market.Period{ReturnPct: -0.25}})
	assert.Equal(t, sim.ActionSell, action)

	// -15% return -> drop score 15; only the second rule matches.
	action = Evaluate(Input{Rules: rules, Market: market.Period{ReturnPct: -0.15}})
	assert.Equal(t, sim.ActionRebalance, action)
}

func TestEvaluate_PositiveReturnScoresZeroDrop(t *testing.T) {
	rules := []Rule{
		{Metric: MetricMarketDrop, Operator: OpGreaterEqual, Value: 0.01, Action: sim.ActionSell},
	}
	action := Evaluate(Input{Rules: rules, Market: market.Period{ReturnPct: 0.20}})
	assert.Equal(t, sim.ActionHold, action)
}

func TestEvaluate_RiskDefaultsTo50WithoutPreviousState(t *testing.T) {
	rules := []Rule{
		{Metric: MetricRisk, Operator: OpGreaterEqual, Value: 50, Action: sim.ActionSell},
	}
	assert.Equal(t, sim.ActionSell, Evaluate(Input{Rules: rules}))

	rules[0].Operator = OpGreater
	assert.Equal(t, sim.ActionHold, Evaluate(Input{Rules: rules}))
}

func TestEvaluate_RiskFromPreviousState(t *testing.T) {
	previous := &sim.State{Risk: 82, Allocation: sim.TargetAllocation}
	rules := []Rule{
		{Metric: MetricRisk, Operator: OpGreater, Value: 80, Action: sim.ActionRebalance},
	}
	assert.Equal(t, sim.ActionRebalance, Evaluate(Input{Rules: rules, Previous: previous}))
}

func TestEvaluate_DriftDefaultsToZero(t *testing.T) {
	rules := []Rule{
		{Metric: MetricAllocationDrift, Operator: OpLessEqual, Value: 0, Action: sim.ActionBuy},
	}
	assert.Equal(t, sim.ActionBuy, Evaluate(Input{Rules: rules}))
}

func TestEvaluate_DriftFromPreviousAllocation(t *testing.T) {
	previous := &sim.State{
		Risk:       40,
		Allocation: sim.Allocation{Stocks: 70, ETF: 20, Cash: 10},
	}
	// drift = 20 + 15 + 5 = 40
	rules := []Rule{
		{Metric: MetricAllocationDrift, Operator: OpGreaterEqual, Value: 40, Action: sim.ActionRebalance},
	}
	assert.Equal(t, sim.ActionRebalance, Evaluate(Input{Rules: rules, Previous: previous}))
}

func TestEvaluate_UnknownMetricScoresZero(t *testing.T) {
	rules := []Rule{
		{Metric: "sentiment", Operator: OpGreater, Value: 0, Action: sim.ActionSell},
		{Metric: MetricMarketDrop, Operator: OpGreaterEqual, Value: 0, Action: sim.ActionBuy},
	}
	action := Evaluate(Input{Rules: rules, Market: market.Period{ReturnPct: 0.05}})
	assert.Equal(t, sim.ActionBuy, action)
}

func TestPolicy_DrivesSimulation(t *testing.T) {
	rules := []Rule{
		{Metric: MetricMarketDrop, Operator: OpGreater, Value: 18, Action: sim.ActionSell},
		{Metric: MetricAllocationDrift, Operator: OpGreater, Value: 12, Action: sim.ActionRebalance},
	}

	a := sim.Execute(sim.Config{Seed: "strategy-run", Periods: 15, StartingWealth: 10000, Contribution: 1000, Policy: Policy(rules)})
	b := sim.Execute(sim.Config{Seed: "strategy-run", Periods: 15, StartingWealth: 10000, Contribution: 1000, Policy: Policy(rules)})

	assert.Equal(t, a.EndingWealth, b.EndingWealth)
	assert.Equal(t, a.Timeline, b.Timeline)
}
