// Package handlers provides HTTP handlers for player profile operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/wealthsim/internal/modules/profile"
	"github.com/aristath/wealthsim/internal/rewards"
)

// Handler handles profile HTTP requests
type Handler struct {
	repo *profile.Repository
	log  zerolog.Logger
}

// NewHandler creates a new profile handler
func NewHandler(repo *profile.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "profile").Logger(),
	}
}

// HandleGetProfile handles GET /api/profile/{userID}. Unknown users get a
// fresh profile so the client never special-cases first contact.
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, "userID is required", http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetOrCreate(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load profile")
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile":  p,
		"progress": rewards.ProgressToNextLevel(p.XP),
	})
}

// HandleApplyProgress handles POST /api/profile/{userID}/progress. The body
// is a ProgressDelta; the response is the updated profile.
func (h *Handler) HandleApplyProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, "userID is required", http.StatusBadRequest)
		return
	}

	var delta profile.ProgressDelta
	if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.repo.ApplyDelta(userID, delta, time.Now().UTC())
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to apply progress")
		http.Error(w, "Failed to apply progress", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile":  p,
		"progress": rewards.ProgressToNextLevel(p.XP),
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
