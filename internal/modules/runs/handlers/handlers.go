// Package handlers provides HTTP handlers for simulation operations.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/aristath/wealthsim/internal/config"
	"github.com/aristath/wealthsim/internal/modules/runs"
	"github.com/aristath/wealthsim/internal/npc"
	"github.com/aristath/wealthsim/internal/sim"
	"github.com/aristath/wealthsim/internal/strategy"
)

// Handler handles simulation HTTP requests
type Handler struct {
	service *runs.Service
	cfg     *config.Config
	log     zerolog.Logger
}

// NewHandler creates a new simulations handler
func NewHandler(service *runs.Service, cfg *config.Config, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
		log:     log.With().Str("handler", "simulations").Logger(),
	}
}

// applyDefaults fills unset request fields from configured defaults.
func (h *Handler) applyDefaults(req *runs.Request) {
	if req.Periods <= 0 {
		req.Periods = h.cfg.DefaultPeriods
	}
	if req.StartingWealth <= 0 {
		req.StartingWealth = h.cfg.DefaultStartingWealth
	}
	if req.Contribution < 0 {
		req.Contribution = h.cfg.DefaultContribution
	}
}

// HandleRunSimulation handles POST /api/simulations/run
func (h *Handler) HandleRunSimulation(w http.ResponseWriter, r *http.Request) {
	var req runs.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Seed == "" {
		http.Error(w, "seed is required", http.StatusBadRequest)
		return
	}
	h.applyDefaults(&req)

	outcome, err := h.service.RunAndRecord(req)
	if err != nil {
		h.log.Error().Err(err).Str("seed", req.Seed).Msg("Simulation run failed")
		http.Error(w, "Failed to run simulation", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, outcome)
}

// HandleListRuns handles GET /api/simulations?user_id=...&limit=...
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	items, err := h.service.List(userID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list runs")
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []runs.ListItem{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  items,
		"count": len(items),
	})
}

// HandleGetRun handles GET /api/simulations/{id}
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.service.Get(id)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", id).Msg("Failed to load run")
		http.Error(w, "Failed to load run", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, rec)
}

// LeaderboardRequest selects the shared market the bots race on.
type LeaderboardRequest struct {
	Seed           string  `json:"seed"`
	Periods        int     `json:"periods"`
	StartingWealth float64 `json:"starting_wealth"`
	Contribution   float64 `json:"contribution"`
}

// HandleLeaderboard handles POST /api/simulations/leaderboard
func (h *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	var req LeaderboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Seed == "" {
		http.Error(w, "seed is required", http.StatusBadRequest)
		return
	}
	if req.Periods <= 0 {
		req.Periods = h.cfg.DefaultPeriods
	}
	if req.StartingWealth <= 0 {
		req.StartingWealth = h.cfg.DefaultStartingWealth
	}

	board := npc.Leaderboard(req.Seed, req.Periods, req.StartingWealth, req.Contribution)
	h.writeJSON(w, http.StatusOK, board)
}

// EvaluateRequest is one strategy evaluation: a rule set against a market
// period, optionally with the previous simulation state.
type EvaluateRequest struct {
	Rules    []strategy.Rule `json:"rules"`
	Market   json.RawMessage `json:"market"`
	Previous *sim.State      `json:"previous,omitempty"`
}

// HandleEvaluateStrategy handles POST /api/strategies/evaluate
func (h *Handler) HandleEvaluateStrategy(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var input strategy.Input
	input.Rules = req.Rules
	input.Previous = req.Previous
	if len(req.Market) > 0 {
		if err := json.Unmarshal(req.Market, &input.Market); err != nil {
			http.Error(w, "Invalid market period", http.StatusBadRequest)
			return
		}
	}

	action := strategy.Evaluate(input)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"action": action,
	})
}

// streamEvent is one websocket frame of a streamed simulation.
type streamEvent struct {
	Type    string        `json:"type"` // "state" or "done"
	State   *sim.State    `json:"state,omitempty"`
	Outcome *runs.Outcome `json:"outcome,omitempty"`
}

// HandleStreamSimulation handles GET /api/simulations/stream. It runs the
// simulation up front (runs are cheap and pure) and replays the timeline
// period by period over the websocket, finishing with the full outcome.
func (h *Handler) HandleStreamSimulation(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := runs.Request{
		UserID: query.Get("user_id"),
		Seed:   query.Get("seed"),
	}
	if req.Seed == "" {
		http.Error(w, "seed is required", http.StatusBadRequest)
		return
	}
	if raw := query.Get("periods"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			req.Periods = parsed
		}
	}
	if raw := query.Get("starting_wealth"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			req.StartingWealth = parsed
		}
	}
	if raw := query.Get("contribution"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			req.Contribution = parsed
		}
	}
	h.applyDefaults(&req)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	outcome, err := h.service.RunAndRecord(req)
	if err != nil {
		h.log.Error().Err(err).Str("seed", req.Seed).Msg("Streamed simulation failed")
		conn.Close(websocket.StatusInternalError, "simulation failed")
		return
	}

	ctx := r.Context()
	for i := range outcome.Record.Run.Timeline {
		if err := h.writeEvent(ctx, conn, streamEvent{
			Type:  "state",
			State: &outcome.Record.Run.Timeline[i],
		}); err != nil {
			return
		}
	}
	if err := h.writeEvent(ctx, conn, streamEvent{Type: "done", Outcome: outcome}); err != nil {
		return
	}

	conn.Close(websocket.StatusNormalClosure, "")
}

func (h *Handler) writeEvent(ctx context.Context, conn *websocket.Conn, event streamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		h.log.Debug().Err(err).Msg("Websocket write failed, client likely gone")
		return err
	}
	return nil
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
