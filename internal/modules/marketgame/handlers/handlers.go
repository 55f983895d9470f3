// Package handlers provides HTTP handlers for the persistent market game.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/aristath/wealthsim/internal/modules/marketgame"
)

// Handler handles market game HTTP requests
type Handler struct {
	service *marketgame.Service
	log     zerolog.Logger
}

// NewHandler creates a new market game handler
func NewHandler(service *marketgame.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "marketgame").Logger(),
	}
}

// TradeRequest is one buy or sell order.
type TradeRequest struct {
	UserID   string `json:"user_id"`
	Symbol   string `json:"symbol"`
	Quantity int    `json:"quantity"`
}

// UserRequest identifies the session for day/sync/reset operations.
type UserRequest struct {
	UserID string `json:"user_id"`
}

// HandleGetInstruments handles GET /api/market-game/instruments
func (h *Handler) HandleGetInstruments(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"instruments":   marketgame.Instruments,
		"history_days":  marketgame.HistoryDays,
		"playable_days": marketgame.PlayableDays,
		"start_day":     marketgame.StartDay,
		"chart_ranges":  marketgame.ChartRangeDays,
	})
}

// HandleGetSession handles GET /api/market-game/session?user_id=...
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	snap, err := h.service.Session(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load game session")
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, snap)
}

// HandleChart handles GET /api/market-game/chart?user_id=...&symbol=...&range=1M
// It returns the price window for the session's current day plus indicators.
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	symbol := r.URL.Query().Get("symbol")
	if userID == "" || symbol == "" {
		http.Error(w, "user_id and symbol are required", http.StatusBadRequest)
		return
	}
	if _, ok := marketgame.InstrumentBySymbol(symbol); !ok {
		http.Error(w, "Unknown symbol", http.StatusNotFound)
		return
	}

	rangeKey := r.URL.Query().Get("range")
	windowDays, ok := marketgame.ChartRangeDays[rangeKey]
	if !ok {
		windowDays = marketgame.ChartRangeDays["1M"]
	}

	snap, err := h.service.Session(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load game session")
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}

	endDay := snap.State.DayIndex
	startDay := endDay - windowDays + 1
	if startDay < 0 {
		startDay = 0
	}

	series := marketgame.Series(symbol)
	type chartPoint struct {
		Day   int     `json:"day"`
		Price float64 `json:"price"`
	}
	points := make([]chartPoint, 0, endDay-startDay+1)
	for day := startDay; day <= endDay && day < len(series); day++ {
		points = append(points, chartPoint{Day: day + 1, Price: series[day]})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":     symbol,
		"points":     points,
		"indicators": marketgame.IndicatorsAt(symbol, endDay),
	})
}

// HandleTrade handles POST /api/market-game/trade/{side}
func (h *Handler) HandleTrade(side marketgame.Side) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.log.Error().Err(err).Msg("Failed to decode request body")
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.UserID == "" || req.Symbol == "" {
			http.Error(w, "user_id and symbol are required", http.StatusBadRequest)
			return
		}
		if req.Quantity < 1 {
			req.Quantity = 1
		}

		snap, err := h.service.Trade(req.UserID, side, req.Symbol, req.Quantity)
		if err != nil {
			h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Trade failed")
			http.Error(w, "Trade failed", http.StatusInternalServerError)
			return
		}

		h.writeJSON(w, http.StatusOK, snap)
	}
}

// HandleAdvanceDay handles POST /api/market-game/advance
func (h *Handler) HandleAdvanceDay(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeUserRequest(w, r)
	if !ok {
		return
	}

	snap, err := h.service.AdvanceDay(req.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Advance day failed")
		http.Error(w, "Advance day failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, snap)
}

// HandleSyncRewards handles POST /api/market-game/sync
func (h *Handler) HandleSyncRewards(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeUserRequest(w, r)
	if !ok {
		return
	}

	snap, err := h.service.SyncRewards(req.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Reward sync failed")
		http.Error(w, "Reward sync failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, snap)
}

// HandleReset handles POST /api/market-game/reset
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeUserRequest(w, r)
	if !ok {
		return
	}

	snap, err := h.service.Reset(req.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Reset failed")
		http.Error(w, "Reset failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, snap)
}

// HandleBenchmark handles GET /api/market-game/benchmark?day=...
func (h *Handler) HandleBenchmark(w http.ResponseWriter, r *http.Request) {
	day := marketgame.EndDay
	if raw := r.URL.Query().Get("day"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			day = parsed
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"day":                  day,
		"benchmark_return_pct": marketgame.BenchmarkReturnAt(day),
	})
}

func (h *Handler) decodeUserRequest(w http.ResponseWriter, r *http.Request) (UserRequest, bool) {
	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
