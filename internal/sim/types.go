// Package sim implements the year-by-year portfolio simulation: the allocation
// engine that applies decisions to a three-asset split, and the runner that
// drives a decision policy across a generated market timeline while
// accumulating wealth, risk, stress and emotion.
package sim

import "github.com/aristath/wealthsim/internal/market"

// Action is a portfolio decision for one period.
type Action string

const (
	ActionBuy       Action = "buy"
	ActionHold      Action = "hold"
	ActionSell      Action = "sell"
	ActionRebalance Action = "rebalance"
)

// Allocation is a percentage split across the three asset buckets.
// After normalization the three values always sum to exactly 100.
type Allocation struct {
	Stocks float64 `json:"stocks"`
	ETF    float64 `json:"etf"`
	Cash   float64 `json:"cash"`
}

// State captures one completed simulation period. States are appended once per
// period and treated as read-only inputs to the next period's decision.
type State struct {
	Period       int           `json:"period"`
	Market       market.Period `json:"market"`
	Action       Action        `json:"action"`
	Wealth       float64       `json:"wealth"`
	Contribution float64       `json:"contribution"`
	Risk         float64       `json:"risk"`
	Stress       float64       `json:"stress"`
	Emotion      float64       `json:"emotion"`
	Allocation   Allocation    `json:"allocation"`
}

// Run is a completed simulation with its full audit trail.
// EndingWealth and CAGR are derived from the timeline, never set directly.
type Run struct {
	ID             string  `json:"id"`
	Seed           string  `json:"seed"`
	Periods        int     `json:"periods"`
	StartingWealth float64 `json:"starting_wealth"`
	Contribution   float64 `json:"contribution"`
	Timeline       []State `json:"timeline"`
	EndingWealth   float64 `json:"ending_wealth"`
	CAGR           float64 `json:"cagr"`
}

// Decision is the recorded action for one period, kept alongside persisted
// runs for audit.
type Decision struct {
	Period int    `json:"period"`
	Action Action `json:"action"`
	Reason string `json:"reason,omitempty"`
}

// DecisionContext is what a policy sees before choosing an action for a
// period. Previous is nil on the first period.
type DecisionContext struct {
	PeriodIndex int
	Market      market.Period
	Previous    *State
}

// DecisionPolicy chooses an action per period. Policies are injected into the
// runner so the simulation contract stays explicit and testable.
type DecisionPolicy interface {
	Decide(ctx DecisionContext) Action
}

// PolicyFunc adapts a plain function to DecisionPolicy.
type PolicyFunc func(ctx DecisionContext) Action

// Decide implements DecisionPolicy.
func (f PolicyFunc) Decide(ctx DecisionContext) Action { return f(ctx) }

// HoldPolicy is the default policy when none is supplied.
var HoldPolicy = PolicyFunc(func(DecisionContext) Action { return ActionHold })
