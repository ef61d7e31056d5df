package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers CAGR routes on the given router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/cagr", h.HandleGetCagr)
}
