package marketgame

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/wealthsim/internal/modules/profile"
	"github.com/aristath/wealthsim/internal/modules/runs"
)

// Service coordinates game session state with profile progression and run
// history. Every operation loads the durable session, mutates it, and saves
// it back; sessions have no in-memory lifetime beyond one call.
type Service struct {
	store    *Store
	profiles *profile.Repository
	runs     *runs.Repository
	log      zerolog.Logger
}

// NewService creates a new market game service.
func NewService(store *Store, profiles *profile.Repository, runRepo *runs.Repository, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		profiles: profiles,
		runs:     runRepo,
		log:      log.With().Str("component", "marketgame_service").Logger(),
	}
}

// Snapshot is the full session view returned by every game operation.
type Snapshot struct {
	State          *State  `json:"state"`
	PortfolioValue float64 `json:"portfolio_value"`
	TotalPnL       float64 `json:"total_pnl"`
	TotalReturnPct float64 `json:"total_return_pct"`
	UnrealizedPnL  float64 `json:"unrealized_pnl"`
	SeasonDay      int     `json:"season_day"`
	RemainingDays  int     `json:"remaining_days"`
	Message        string  `json:"message,omitempty"`
}

func (s *Service) snapshot(state *State, message string) *Snapshot {
	value := state.PortfolioValue()
	return &Snapshot{
		State:          state,
		PortfolioValue: value,
		TotalPnL:       round2(value - StartingCash),
		TotalReturnPct: round2(state.TotalReturnPct()),
		UnrealizedPnL:  round2(state.UnrealizedPnL()),
		SeasonDay:      state.SeasonDay(),
		RemainingDays:  state.RemainingDays(),
		Message:        message,
	}
}

// Session returns the current session without mutating it.
func (s *Service) Session(userID string) (*Snapshot, error) {
	state, err := s.store.Load(userID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(state, ""), nil
}

// Trade executes a buy or sell and persists the session. A rejected trade
// (no cash, no shares) still returns the snapshot with the refusal message.
func (s *Service) Trade(userID string, side Side, symbol string, quantity int) (*Snapshot, error) {
	state, err := s.store.Load(userID)
	if err != nil {
		return nil, err
	}

	var message string
	var changed bool
	switch side {
	case SideBuy:
		message, changed = state.Buy(symbol, quantity)
	case SideSell:
		message, changed = state.Sell(symbol, quantity)
	default:
		return nil, fmt.Errorf("unknown trade side %q", side)
	}

	if changed {
		if err := s.store.Save(userID, state); err != nil {
			return nil, err
		}
		s.log.Debug().
			Str("user_id", userID).
			Str("side", string(side)).
			Str("symbol", symbol).
			Int("quantity", quantity).
			Msg("Executed game trade")
	}

	return s.snapshot(state, message), nil
}

// AdvanceDay moves the session forward one day and persists it.
func (s *Service) AdvanceDay(userID string) (*Snapshot, error) {
	state, err := s.store.Load(userID)
	if err != nil {
		return nil, err
	}

	message, changed := state.AdvanceDay()
	if changed {
		if err := s.store.Save(userID, state); err != nil {
			return nil, err
		}
	}

	return s.snapshot(state, message), nil
}

// Reset discards the session and starts a new season.
func (s *Service) Reset(userID string) (*Snapshot, error) {
	if err := s.store.Delete(userID); err != nil {
		return nil, err
	}
	state := NewState()
	if err := s.store.Save(userID, state); err != nil {
		return nil, err
	}
	return s.snapshot(state, "Simulator reset to Day 1."), nil
}

// gameSyncSummary is the summary blob stored with each sync snapshot.
type gameSyncSummary struct {
	Mode               string            `json:"mode"`
	XP                 int               `json:"xp"`
	Coins              int               `json:"coins"`
	ReturnPct          float64           `json:"return_pct"`
	BenchmarkReturnPct float64           `json:"benchmark_return_pct"`
	RealizedPnL        float64           `json:"realized_pnl"`
	UnrealizedPnL      float64           `json:"unrealized_pnl"`
	Allocation         []AllocationSlice `json:"allocation"`
	SyncedAt           time.Time         `json:"synced_at"`
	Day                int               `json:"day"`
}

// SyncRewards converts unsynced game days into XP and coins, applies them to
// the player profile, and stores a run snapshot of the session. Reward
// application is the critical path; a failed snapshot write degrades the
// message rather than failing the sync.
func (s *Service) SyncRewards(userID string) (*Snapshot, error) {
	state, err := s.store.Load(userID)
	if err != nil {
		return nil, err
	}

	result, ok := state.SyncRewards()
	if !ok {
		return s.snapshot(state, result.Message), nil
	}

	now := time.Now()
	if _, err := s.profiles.ApplyDelta(userID, profile.ProgressDelta{
		XP:    result.XP,
		Coins: result.Coins,
	}, now); err != nil {
		return nil, fmt.Errorf("failed to apply game rewards for %s: %w", userID, err)
	}

	message := result.Message
	if err := s.saveSyncSnapshot(userID, state, result, now); err != nil {
		s.log.Warn().Str("user_id", userID).Err(err).Msg("Game sync snapshot could not be stored")
		message += " Rewards saved, but run history could not be stored."
	}

	if err := s.store.Save(userID, state); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", userID).
		Int("xp", result.XP).
		Int("coins", result.Coins).
		Int("day_delta", result.DayDelta).
		Msg("Synced game rewards")

	return s.snapshot(state, message), nil
}

func (s *Service) saveSyncSnapshot(userID string, state *State, result SyncResult, now time.Time) error {
	timelineJSON, err := json.Marshal(state.PortfolioHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal portfolio history: %w", err)
	}
	summaryJSON, err := json.Marshal(gameSyncSummary{
		Mode:               "market_sim_persistent",
		XP:                 result.XP,
		Coins:              result.Coins,
		ReturnPct:          result.ReturnPct,
		BenchmarkReturnPct: result.BenchmarkReturnPct,
		RealizedPnL:        round2(state.RealizedPnL),
		UnrealizedPnL:      round2(state.UnrealizedPnL()),
		Allocation:         state.AllocationMix(),
		SyncedAt:           now.UTC(),
		Day:                state.SeasonDay(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sync summary: %w", err)
	}

	return s.runs.SaveSnapshot(&runs.Snapshot{
		ID:             uuid.New().String(),
		UserID:         userID,
		Seed:           fmt.Sprintf("market-sim-day-%d", state.DayIndex+1),
		Periods:        1,
		StartingWealth: StartingCash,
		EndingWealth:   state.PortfolioValue(),
		CAGR:           result.CAGR,
		TimelineJSON:   timelineJSON,
		SummaryJSON:    summaryJSON,
		CreatedAt:      now,
	})
}
