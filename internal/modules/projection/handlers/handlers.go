// Package handlers provides HTTP handlers for projection operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"coinplan/internal/modules/projection"
)

// Handler handles projection HTTP requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new projection handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "projection").Logger(),
	}
}

// HandleProject handles POST /api/projection
// Computes a lump-sum or SIP growth projection from the JSON request body.
func (h *Handler) HandleProject(w http.ResponseWriter, r *http.Request) {
	var req projection.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.ApplyDefaults()

	result, err := projection.Project(req)
	if err != nil {
		var verr *projection.ValidationError
		if errors.As(err, &verr) {
			h.writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		h.log.Error().Err(err).Msg("Projection failed")
		h.writeError(w, http.StatusInternalServerError, "projection failed")
		return
	}

	h.log.Debug().
		Str("mode", string(req.Mode)).
		Float64("amount", req.Amount).
		Float64("years", req.Years).
		Float64("final_value", result.FinalValue).
		Msg("Projection computed")

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
