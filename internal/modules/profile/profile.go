// Package profile manages persistent player progression: XP, coins, levels,
// daily streaks, blended behavior scores, and earned badges.
package profile

import (
	"math"
	"time"

	"github.com/aristath/wealthsim/internal/behavior"
	"github.com/aristath/wealthsim/internal/rewards"
)

// Profile is the persistent progression state for one user.
type Profile struct {
	UserID         string          `json:"user_id"`
	DisplayName    string          `json:"display_name"`
	XP             int             `json:"xp"`
	Level          int             `json:"level"`
	Coins          int             `json:"coins"`
	StreakDays     int             `json:"streak_days"`
	LastActiveDate string          `json:"last_active_date"` // YYYY-MM-DD
	Persona        string          `json:"persona"`
	Behavior       behavior.Scores `json:"behavior"`
	Badges         []rewards.Badge `json:"badges"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewProfile returns a fresh profile with neutral behavior scores.
func NewProfile(userID string) Profile {
	now := time.Now().UTC()
	return Profile{
		UserID:    userID,
		Behavior:  behavior.NeutralScores(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ProgressDelta carries the outcome of one completed activity back into the
// profile. Zero-valued fields are no-ops.
type ProgressDelta struct {
	XP       int             `json:"xp"`
	Coins    int             `json:"coins"`
	Persona  string          `json:"persona"`
	Behavior behavior.Scores `json:"behavior"`
	HasScore bool            `json:"has_score"` // false means Behavior is ignored
	Badges   []rewards.Badge `json:"badges"`
}

// Behavior scores move slowly: each new reading shifts the stored score by
// roughly a third of the gap. One wild session nudges the profile, it does
// not redefine it.
const (
	blendCurrentWeight  = 0.65
	blendIncomingWeight = 0.35
)

func blendScore(current, incoming float64) float64 {
	blended := current*blendCurrentWeight + incoming*blendIncomingWeight
	blended = math.Max(0, math.Min(100, blended))
	return math.Round(blended*10) / 10
}

func blendBehavior(current, incoming behavior.Scores) behavior.Scores {
	return behavior.Scores{
		Discipline:    blendScore(current.Discipline, incoming.Discipline),
		Panic:         blendScore(current.Panic, incoming.Panic),
		Consistency:   blendScore(current.Consistency, incoming.Consistency),
		RiskTolerance: blendScore(current.RiskTolerance, incoming.RiskTolerance),
		Patience:      blendScore(current.Patience, incoming.Patience),
	}
}

// advanceStreak applies the daily streak rules for an activity on `today`.
// Same-day activity never changes the streak. Activity on the day after the
// last active date extends it. A first-ever activity starts at one (or keeps
// a pre-seeded streak). Any gap resets to one.
func advanceStreak(streak int, lastActive, today string) int {
	if lastActive == today {
		return streak
	}
	if lastActive == "" {
		if streak > 1 {
			return streak
		}
		return 1
	}
	last, err := time.Parse("2006-01-02", lastActive)
	if err != nil {
		return 1
	}
	cur, err := time.Parse("2006-01-02", today)
	if err != nil {
		return streak
	}
	if cur.Sub(last) == 24*time.Hour {
		return streak + 1
	}
	return 1
}

// mergeBadges unions earned badges into the existing set, keyed by badge key.
// Existing badges keep their position; new ones append in arrival order.
func mergeBadges(existing, earned []rewards.Badge) []rewards.Badge {
	seen := make(map[string]bool, len(existing))
	merged := make([]rewards.Badge, 0, len(existing)+len(earned))
	for _, b := range existing {
		if !seen[b.Key] {
			seen[b.Key] = true
			merged = append(merged, b)
		}
	}
	for _, b := range earned {
		if !seen[b.Key] {
			seen[b.Key] = true
			merged = append(merged, b)
		}
	}
	return merged
}

// ApplyProgress folds a progress delta into the profile as of `now` and
// returns the updated profile. The input profile is not modified.
func ApplyProgress(p Profile, delta ProgressDelta, now time.Time) Profile {
	today := now.UTC().Format("2006-01-02")

	p.XP = int(math.Max(0, math.Round(float64(p.XP+delta.XP))))
	p.Level = rewards.LevelFromXP(p.XP)
	p.Coins = int(math.Max(0, float64(p.Coins+delta.Coins)))

	p.StreakDays = advanceStreak(p.StreakDays, p.LastActiveDate, today)
	p.LastActiveDate = today

	if delta.HasScore {
		p.Behavior = blendBehavior(p.Behavior, delta.Behavior)
	}
	if delta.Persona != "" {
		p.Persona = delta.Persona
	}
	p.Badges = mergeBadges(p.Badges, delta.Badges)
	p.UpdatedAt = now.UTC()

	return p
}
