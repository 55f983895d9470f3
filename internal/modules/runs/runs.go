// Package runs executes full portfolio simulations and persists the results.
// A run couples a simulated timeline with its derived outputs: behavior
// scores, persona, coach advice, badges, and XP/coin rewards.
package runs

import (
	"math"
	"time"

	"github.com/aristath/wealthsim/internal/behavior"
	"github.com/aristath/wealthsim/internal/rewards"
	"github.com/aristath/wealthsim/internal/sim"
	"github.com/aristath/wealthsim/internal/strategy"
)

// Summary is everything derived from a completed timeline.
type Summary struct {
	Behavior    behavior.Scores `json:"behavior"`
	Persona     string          `json:"persona"`
	Advice      []string        `json:"advice"`
	Badges      []rewards.Badge `json:"badges"`
	XP          int             `json:"xp"`
	Coins       int             `json:"coins"`
	MaxDrawdown float64         `json:"max_drawdown"`
}

// Record is a persisted run: the raw simulation plus its summary.
type Record struct {
	UserID    string    `json:"user_id"`
	Run       sim.Run   `json:"run"`
	Summary   Summary   `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// Request describes one simulation to execute. Rules are optional; without
// them the player is assumed to hold every period.
type Request struct {
	UserID         string          `json:"user_id"`
	Seed           string          `json:"seed"`
	Periods        int             `json:"periods"`
	StartingWealth float64         `json:"starting_wealth"`
	Contribution   float64         `json:"contribution"`
	Rules          []strategy.Rule `json:"rules,omitempty"`
}

// maxDrawdown is the largest peak-to-trough wealth loss over the timeline,
// as a fraction of the peak. 0 means wealth never fell below a prior peak.
func maxDrawdown(startingWealth float64, timeline []sim.State) float64 {
	peak := startingWealth
	worst := 0.0
	for _, state := range timeline {
		if state.Wealth > peak {
			peak = state.Wealth
		}
		if peak > 0 {
			drawdown := (peak - state.Wealth) / peak
			if drawdown > worst {
				worst = drawdown
			}
		}
	}
	return math.Round(worst*10000) / 10000
}

// Execute runs the simulation described by the request and derives its
// summary. Pure and deterministic: identical requests yield identical records
// apart from CreatedAt.
func Execute(req Request, now time.Time) Record {
	var policy sim.DecisionPolicy
	if len(req.Rules) > 0 {
		policy = strategy.Policy(req.Rules)
	}

	run := sim.Execute(sim.Config{
		Seed:           req.Seed,
		Periods:        req.Periods,
		StartingWealth: req.StartingWealth,
		Contribution:   req.Contribution,
		Policy:         policy,
	})

	decisions := make([]sim.Decision, len(run.Timeline))
	for i, state := range run.Timeline {
		decisions[i] = sim.Decision{Period: state.Period, Action: state.Action}
	}

	scores := behavior.Score(run.Timeline)
	summary := Summary{
		Behavior:    scores,
		Persona:     behavior.InferPersona(scores),
		Advice:      behavior.CoachAdvice(scores),
		Badges:      rewards.EvaluateBadges(run.Timeline),
		XP:          rewards.DecisionXP(decisions),
		Coins:       rewards.DecisionCoins(decisions),
		MaxDrawdown: maxDrawdown(run.StartingWealth, run.Timeline),
	}

	return Record{
		UserID:    req.UserID,
		Run:       run,
		Summary:   summary,
		CreatedAt: now.UTC(),
	}
}
