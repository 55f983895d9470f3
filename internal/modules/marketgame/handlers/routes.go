package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/aristath/wealthsim/internal/modules/marketgame"
)

// RegisterRoutes registers all market game routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/market-game", func(r chi.Router) {
		r.Get("/instruments", h.HandleGetInstruments)
		r.Get("/session", h.HandleGetSession)
		r.Get("/chart", h.HandleChart)
		r.Get("/benchmark", h.HandleBenchmark)
		r.Post("/buy", h.HandleTrade(marketgame.SideBuy))
		r.Post("/sell", h.HandleTrade(marketgame.SideSell))
		r.Post("/advance", h.HandleAdvanceDay)
		r.Post("/sync", h.HandleSyncRewards)
		r.Post("/reset", h.HandleReset)
	})
}
