// Package rewards maps cumulative XP to levels and decisions to XP/coin
// rewards, and awards badges over completed timelines. Everything here is
// deterministic: the reward tables are fixed and badge checks are pure
// predicates of the timeline.
package rewards

import (
	"math"

	"github.com/aristath/wealthsim/internal/market"
	"github.com/aristath/wealthsim/internal/sim"
)

// Badge is a named achievement awarded when a timeline satisfies a fixed
// predicate. Multiple badges can co-occur.
type Badge struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Progress describes where an XP total sits within its level band.
type Progress struct {
	Level        int     `json:"level"`
	CurrentFloor int     `json:"current_floor"`
	NextFloor    int     `json:"next_floor"`
	Ratio        float64 `json:"ratio"`
}

// LevelFromXP converts cumulative XP to a level. Levels follow a quadratic
// curve: each level requires level^2 * 100 XP.
func LevelFromXP(xp int) int {
	return int(math.Floor(math.Sqrt(math.Max(0, float64(xp)) / 100)))
}

// XPForLevel returns the XP floor at which a level begins.
func XPForLevel(level int) int {
	if level < 0 {
		level = 0
	}
	return level * level * 100
}

// ProgressToNextLevel reports the current level, its XP floor, the next
// level's floor, and the fraction of the band covered. Ratio is 1 when the
// band is degenerate.
func ProgressToNextLevel(xp int) Progress {
	level := LevelFromXP(xp)
	currentFloor := XPForLevel(level)
	nextFloor := XPForLevel(level + 1)

	ratio := 1.0
	if nextFloor != currentFloor {
		ratio = float64(xp-currentFloor) / float64(nextFloor-currentFloor)
	}

	return Progress{
		Level:        level,
		CurrentFloor: currentFloor,
		NextFloor:    nextFloor,
		Ratio:        ratio,
	}
}

// Per-action reward tables. Rebalancing pays best to nudge players toward
// systematic behavior; selling pays least.
var xpByAction = map[sim.Action]int{
	sim.ActionRebalance: 12,
	sim.ActionBuy:       10,
	sim.ActionHold:      8,
	sim.ActionSell:      5,
}

var coinsByAction = map[sim.Action]int{
	sim.ActionRebalance: 5,
	sim.ActionBuy:       4,
	sim.ActionHold:      3,
	sim.ActionSell:      2,
}

// DecisionXP sums the XP reward table over a decision list.
func DecisionXP(decisions []sim.Decision) int {
	total := 0
	for _, d := range decisions {
		if xp, ok := xpByAction[d.Action]; ok {
			total += xp
		} else {
			total += xpByAction[sim.ActionSell]
		}
	}
	return total
}

// DecisionCoins sums the coin reward table over a decision list.
func DecisionCoins(decisions []sim.Decision) int {
	total := 0
	for _, d := range decisions {
		if coins, ok := coinsByAction[d.Action]; ok {
			total += coins
		} else {
			total += coinsByAction[sim.ActionSell]
		}
	}
	return total
}

// EvaluateBadges runs the four independent badge checks over a timeline.
// It is a pure function: the same timeline always yields the same badge set.
// An empty timeline earns nothing.
func EvaluateBadges(timeline []sim.State) []Badge {
	if len(timeline) == 0 {
		return nil
	}

	crashPeriods := 0
	panicSells := 0
	rebalances := 0
	totalStress := 0.0

	for _, state := range timeline {
		if state.Market.Regime == market.RegimeCrash {
			crashPeriods++
			if state.Action == sim.ActionSell {
				panicSells++
			}
		}
		if state.Action == sim.ActionRebalance {
			rebalances++
		}
		totalStress += state.Stress
	}
	averageStress := totalStress / float64(len(timeline))

	var badges []Badge

	if crashPeriods > 0 && panicSells == 0 {
		badges = append(badges, Badge{
			Key:         "diamond-hands",
			Name:        "Diamond Hands",
			Description: "No panic sell during crash years.",
		})
	}

	if rebalances >= int(math.Ceil(float64(len(timeline))*0.4)) {
		badges = append(badges, Badge{
			Key:         "allocator",
			Name:        "Allocator",
			Description: "Rebalanced consistently across the cycle.",
		})
	}

	if averageStress < 40 {
		badges = append(badges, Badge{
			Key:         "ice-veins",
			Name:        "Ice Veins",
			Description: "Maintained low stress through volatility.",
		})
	}

	if timeline[len(timeline)-1].Wealth > timeline[0].Wealth*2 {
		badges = append(badges, Badge{
			Key:         "double-up",
			Name:        "Double Up",
			Description: "Doubled your portfolio over the simulation.",
		})
	}

	return badges
}
