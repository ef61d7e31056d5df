package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all coin list routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/coins", h.HandleList)
}
