// Package handlers provides HTTP handlers for exchange rate operations.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"coinplan/internal/modules/rates"
)

// Handler handles exchange rate HTTP requests
type Handler struct {
	service *rates.Service
	log     zerolog.Logger
}

// NewHandler creates a new rates handler
func NewHandler(service *rates.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "rates").Logger(),
	}
}

// HandleGetRates handles GET /api/rates
// Returns USD-based fiat exchange rates
func (h *Handler) HandleGetRates(w http.ResponseWriter, r *http.Request) {
	fiat, err := h.service.FiatRates()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch exchange rates")
		http.Error(w, "Failed to fetch exchange rates", http.StatusBadGateway)
		return
	}

	response := map[string]interface{}{
		"base":  rates.Base,
		"rates": fiat,
	}

	h.writeJSON(w, http.StatusOK, response)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
