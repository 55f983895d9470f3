package profile

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/wealthsim/internal/database"
	"github.com/aristath/wealthsim/internal/rewards"
)

// Repository handles database operations for player profiles.
// Database: profiles.db (profiles table)
type Repository struct {
	db  *database.DB // profiles.db
	log zerolog.Logger
}

// NewRepository creates a new profile repository.
// db parameter should be profiles.db connection
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "profile_repository").Logger(),
	}
}

// Get retrieves a profile by user ID. Returns (nil, nil) when no profile
// exists yet; callers decide whether that means "create one".
func (r *Repository) Get(userID string) (*Profile, error) {
	row := r.db.QueryRow(`
		SELECT user_id, display_name, xp, level, coins, streak_days, last_active_date,
		       persona, discipline, panic, consistency, risk_tolerance, patience,
		       badges_json, created_at, updated_at
		FROM profiles
		WHERE user_id = ?
	`, userID)

	var p Profile
	var badgesJSON string
	var createdAt, updatedAt string

	err := row.Scan(
		&p.UserID, &p.DisplayName, &p.XP, &p.Level, &p.Coins, &p.StreakDays, &p.LastActiveDate,
		&p.Persona, &p.Behavior.Discipline, &p.Behavior.Panic, &p.Behavior.Consistency,
		&p.Behavior.RiskTolerance, &p.Behavior.Patience,
		&badgesJSON, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile %s: %w", userID, err)
	}

	if err := json.Unmarshal([]byte(badgesJSON), &p.Badges); err != nil {
		// A corrupt badge blob should not make the profile unreadable.
		r.log.Warn().Str("user_id", userID).Err(err).Msg("Resetting unreadable badges blob")
		p.Badges = nil
	}

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		p.UpdatedAt = t
	}

	return &p, nil
}

// GetOrCreate retrieves a profile, creating a fresh one if none exists.
func (r *Repository) GetOrCreate(userID string) (*Profile, error) {
	p, err := r.Get(userID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	fresh := NewProfile(userID)
	if err := r.Save(&fresh); err != nil {
		return nil, err
	}
	r.log.Info().Str("user_id", userID).Msg("Created new profile")
	return &fresh, nil
}

// Save upserts a profile row.
func (r *Repository) Save(p *Profile) error {
	badges := p.Badges
	if badges == nil {
		badges = []rewards.Badge{}
	}
	badgesJSON, err := json.Marshal(badges)
	if err != nil {
		return fmt.Errorf("failed to marshal badges for %s: %w", p.UserID, err)
	}

	_, err = r.db.Exec(`
		INSERT INTO profiles (
			user_id, display_name, xp, level, coins, streak_days, last_active_date,
			persona, discipline, panic, consistency, risk_tolerance, patience,
			badges_json, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			xp = excluded.xp,
			level = excluded.level,
			coins = excluded.coins,
			streak_days = excluded.streak_days,
			last_active_date = excluded.last_active_date,
			persona = excluded.persona,
			discipline = excluded.discipline,
			panic = excluded.panic,
			consistency = excluded.consistency,
			risk_tolerance = excluded.risk_tolerance,
			patience = excluded.patience,
			badges_json = excluded.badges_json,
			updated_at = excluded.updated_at
	`,
		p.UserID, p.DisplayName, p.XP, p.Level, p.Coins, p.StreakDays, p.LastActiveDate,
		p.Persona, p.Behavior.Discipline, p.Behavior.Panic, p.Behavior.Consistency,
		p.Behavior.RiskTolerance, p.Behavior.Patience,
		string(badgesJSON),
		p.CreatedAt.UTC().Format(time.RFC3339), p.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", p.UserID, err)
	}

	return nil
}

// ApplyDelta loads the profile, folds in the delta, and persists the result.
// Returns the updated profile.
func (r *Repository) ApplyDelta(userID string, delta ProgressDelta, now time.Time) (*Profile, error) {
	p, err := r.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	updated := ApplyProgress(*p, delta, now)
	if err := r.Save(&updated); err != nil {
		return nil, err
	}

	r.log.Debug().
		Str("user_id", userID).
		Int("xp_delta", delta.XP).
		Int("coins_delta", delta.Coins).
		Int("level", updated.Level).
		Int("streak_days", updated.StreakDays).
		Msg("Applied progress delta")

	return &updated, nil
}
