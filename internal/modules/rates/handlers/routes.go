package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all exchange rate routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/rates", h.HandleGetRates)
}
