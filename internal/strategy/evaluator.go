// Package strategy implements the rule-based decision evaluator: an ordered
// list of rules is scanned top to bottom and the first match wins. The
// evaluator is a pure, total function - malformed or empty rule lists simply
// fall through to hold - and it plugs into the simulation runner as a
// decision policy.
package strategy

import (
	"math"

	"github.com/aristath/wealthsim/internal/market"
	"github.com/aristath/wealthsim/internal/sim"
)

// Metric names a rule input.
type Metric string

const (
	MetricMarketDrop      Metric = "marketDrop"
	MetricRisk            Metric = "risk"
	MetricAllocationDrift Metric = "allocationDrift"
)

// Operator is a comparison operator for rule thresholds.
type Operator string

const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
)

// Rule maps a metric comparison to an action.
type Rule struct {
	ID       string     `json:"id"`
	Metric   Metric     `json:"metric"`
	Operator Operator   `json:"operator"`
	Value    float64    `json:"value"`
	Action   sim.Action `json:"action"`
}

// Input carries the state a rule set is evaluated against.
// Previous is nil on the first period.
type Input struct {
	Rules    []Rule
	Market   market.Period
	Previous *sim.State
}

func compare(left float64, op Operator, right float64) bool {
	switch op {
	case OpGreater:
		return left > right
	case OpLess:
		return left < right
	case OpGreaterEqual:
		return left >= right
	default:
		return left <= right
	}
}

// marketDropScore is the period's loss expressed as positive percentage
// points; gains score 0.
func marketDropScore(period market.Period) float64 {
	return math.Max(0, math.Abs(math.Min(0, period.ReturnPct))*100)
}

// Evaluate scans the rules in order and returns the first matching rule's
// action, or hold when nothing matches. With no previous state, risk defaults
// to 50 and drift to 0.
func Evaluate(in Input) sim.Action {
	drift := 0.0
	risk := 50.0
	if in.Previous != nil {
		drift = sim.AllocationDrift(in.Previous.Allocation)
		risk = in.Previous.Risk
	}

	for _, rule := range in.Rules {
		var metricValue float64
		switch rule.Metric {
		case MetricMarketDrop:
			metricValue = marketDropScore(in.Market)
		case MetricRisk:
			metricValue = risk
		case MetricAllocationDrift:
			metricValue = drift
		}

		if compare(metricValue, rule.Operator, rule.Value) {
			return rule.Action
		}
	}

	return sim.ActionHold
}

// Policy adapts a rule set to the runner's DecisionPolicy.
func Policy(rules []Rule) sim.DecisionPolicy {
	return sim.PolicyFunc(func(ctx sim.DecisionContext) sim.Action {
		return Evaluate(Input{Rules: rules, Market: ctx.Market, Previous: ctx.Previous})
	})
}
