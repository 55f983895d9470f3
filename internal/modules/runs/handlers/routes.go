package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all simulation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/simulations", func(r chi.Router) {
		r.Post("/run", h.HandleRunSimulation)
		r.Post("/leaderboard", h.HandleLeaderboard)
		r.Get("/stream", h.HandleStreamSimulation)
		r.Get("/", h.HandleListRuns)
		r.Get("/{id}", h.HandleGetRun)
	})
	r.Post("/strategies/evaluate", h.HandleEvaluateStrategy)
}
