package sim

import (
	"math"

	"github.com/aristath/wealthsim/internal/market"
)

// TargetAllocation is the fixed rebalancing target.
var TargetAllocation = Allocation{Stocks: 50, ETF: 35, Cash: 15}

// Asset return model: stocks lever the market return, the ETF dampens it, and
// cash pays a fixed yield regardless of regime.
const (
	stockBeta = 1.15
	etfBeta   = 0.82
	cashYield = 0.02
)

func clamp(value, min, max float64) float64 {
	return math.Min(max, math.Max(min, value))
}

// NormalizeAllocation scales an allocation so the triple sums to exactly 100.
// Stocks and ETF round to integer percent and cash absorbs the remainder -
// this avoids floating rounding drift across repeated decisions. A
// non-positive total resets to the target allocation.
func NormalizeAllocation(a Allocation) Allocation {
	total := a.Stocks + a.ETF + a.Cash
	if total <= 0 {
		return TargetAllocation
	}

	stocks := math.Round(a.Stocks / total * 100)
	etf := math.Round(a.ETF / total * 100)
	return Allocation{
		Stocks: stocks,
		ETF:    etf,
		Cash:   clamp(100-stocks-etf, 0, 100),
	}
}

// ApplyDecision shifts an allocation according to the action, then clamps each
// bucket to [0,100] and normalizes. Hold is an identity shift but still passes
// through clamp and normalize.
func ApplyDecision(a Allocation, action Action) Allocation {
	next := a

	switch action {
	case ActionBuy:
		next = Allocation{Stocks: a.Stocks + 6, ETF: a.ETF + 2, Cash: a.Cash - 8}
	case ActionSell:
		next = Allocation{Stocks: a.Stocks - 8, ETF: a.ETF - 4, Cash: a.Cash + 12}
	case ActionRebalance:
		// Move 70% of the way toward the target, component-wise.
		next = Allocation{
			Stocks: a.Stocks + (TargetAllocation.Stocks-a.Stocks)*0.7,
			ETF:    a.ETF + (TargetAllocation.ETF-a.ETF)*0.7,
			Cash:   a.Cash + (TargetAllocation.Cash-a.Cash)*0.7,
		}
	}

	next.Stocks = clamp(next.Stocks, 0, 100)
	next.ETF = clamp(next.ETF, 0, 100)
	next.Cash = clamp(next.Cash, 0, 100)

	return NormalizeAllocation(next)
}

// WeightedReturn computes the portfolio return for a period given the current
// allocation.
func WeightedReturn(a Allocation, period market.Period) float64 {
	stocks := a.Stocks / 100 * period.ReturnPct * stockBeta
	etf := a.ETF / 100 * period.ReturnPct * etfBeta
	cash := a.Cash / 100 * cashYield
	return stocks + etf + cash
}

// AllocationDrift is the sum of absolute per-component deviation from the
// target allocation. Used by the strategy evaluator as a rule metric.
func AllocationDrift(a Allocation) float64 {
	return math.Abs(a.Stocks-TargetAllocation.Stocks) +
		math.Abs(a.ETF-TargetAllocation.ETF) +
		math.Abs(a.Cash-TargetAllocation.Cash)
}
