package runs

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/wealthsim/internal/modules/profile"
)

// Service executes simulations and persists their consequences: the run
// record itself and the progress delta folded into the player profile.
type Service struct {
	repo     *Repository
	profiles *profile.Repository
	log      zerolog.Logger
}

// NewService creates a new runs service.
func NewService(repo *Repository, profiles *profile.Repository, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		log:      log.With().Str("component", "runs_service").Logger(),
	}
}

// Outcome is a completed, persisted run plus the updated profile.
type Outcome struct {
	Record  Record           `json:"record"`
	Profile *profile.Profile `json:"profile,omitempty"`
}

// RunAndRecord executes the request, stores the run, and applies its rewards
// to the user's profile. Anonymous requests (empty UserID) execute and are
// returned without persistence.
func (s *Service) RunAndRecord(req Request) (*Outcome, error) {
	rec := Execute(req, time.Now())

	if req.UserID == "" {
		return &Outcome{Record: rec}, nil
	}

	if err := s.repo.Save(&rec); err != nil {
		return nil, fmt.Errorf("failed to persist run: %w", err)
	}

	updated, err := s.profiles.ApplyDelta(req.UserID, profile.ProgressDelta{
		XP:       rec.Summary.XP,
		Coins:    rec.Summary.Coins,
		Persona:  rec.Summary.Persona,
		Behavior: rec.Summary.Behavior,
		HasScore: len(rec.Run.Timeline) > 0,
		Badges:   rec.Summary.Badges,
	}, rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to apply run rewards: %w", err)
	}

	s.log.Info().
		Str("run_id", rec.Run.ID).
		Str("user_id", req.UserID).
		Float64("ending_wealth", rec.Run.EndingWealth).
		Str("persona", rec.Summary.Persona).
		Msg("Recorded simulation run")

	return &Outcome{Record: rec, Profile: updated}, nil
}

// List returns recent runs for a user.
func (s *Service) List(userID string, limit int) ([]ListItem, error) {
	return s.repo.ListByUser(userID, limit)
}

// Get returns one stored run, or nil when unknown.
func (s *Service) Get(id string) (*Record, error) {
	return s.repo.Get(id)
}
