package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all profile routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/{userID}", h.HandleGetProfile)
		r.Post("/{userID}/progress", h.HandleApplyProgress)
	})
}
