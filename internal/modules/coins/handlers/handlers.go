// Package handlers provides HTTP handlers for coin list operations.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"coinplan/internal/clients/coingecko"
	"coinplan/internal/modules/coins"
)

// Handler handles coin list HTTP requests
type Handler struct {
	service *coins.Service
	log     zerolog.Logger
}

// NewHandler creates a new coins handler
func NewHandler(service *coins.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "coins").Logger(),
	}
}

// HandleList handles GET /api/coins
// Returns the top market-cap coins, optionally filtered by ?search=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	list, err := h.service.List(search)
	if err != nil {
		h.log.Error().Err(err).Str("search", search).Msg("Failed to list coins")
		http.Error(w, "Failed to fetch coin list", http.StatusBadGateway)
		return
	}
	if list == nil {
		// Keep the empty case an array on the wire, not null.
		list = []coingecko.Coin{}
	}

	response := map[string]interface{}{
		"count": len(list),
		"coins": list,
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
