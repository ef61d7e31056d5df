// Package handlers provides HTTP handlers for CAGR estimation.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"coinplan/internal/clients/coingecko"
	"coinplan/internal/modules/cagr"
)

// smoothingWindow is the SMA window (in days) applied to the chart series
// when smoothing is requested.
const smoothingWindow = 30

// ChartClient provides historical daily price series.
type ChartClient interface {
	MarketChart(coinID, currency string, days int) ([]coingecko.PricePoint, error)
}

// Handler handles CAGR HTTP requests
type Handler struct {
	client ChartClient
	log    zerolog.Logger
}

// NewHandler creates a new CAGR handler
func NewHandler(client ChartClient, log zerolog.Logger) *Handler {
	return &Handler{
		client: client,
		log:    log.With().Str("handler", "cagr").Logger(),
	}
}

// HandleGetCagr handles GET /api/cagr
// Query params: coin_id (required), years (default 5), currency (default
// usd), smooth (optional bool, chart series only).
//
// Upstream failures are reported inside a 200 response with cagr=null and an
// error string; existing consumers branch on the cagr field, not the status.
func (h *Handler) HandleGetCagr(w http.ResponseWriter, r *http.Request) {
	coinID := r.URL.Query().Get("coin_id")
	if coinID == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "coin_id parameter is required"})
		return
	}

	years := 5.0
	if yearsStr := r.URL.Query().Get("years"); yearsStr != "" {
		parsed, err := strconv.ParseFloat(yearsStr, 64)
		if err != nil || parsed <= 0 || parsed > 70 {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "years must be in (0, 70]"})
			return
		}
		years = parsed
	}

	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = "usd"
	}

	smooth := false
	if smoothStr := r.URL.Query().Get("smooth"); smoothStr != "" {
		smooth, _ = strconv.ParseBool(smoothStr)
	}

	days := int(years * 365)
	prices, err := h.client.MarketChart(coinID, currency, days)
	if err != nil {
		h.log.Warn().Err(err).Str("coin", coinID).Msg("Failed to fetch market chart")
		h.writeJSON(w, http.StatusOK, cagr.Result{
			CoinID:   coinID,
			Years:    years,
			Currency: currency,
			Error:    err.Error(),
		})
		return
	}

	samples := make([]cagr.PriceSample, len(prices))
	for i, p := range prices {
		samples[i] = cagr.PriceSample{Timestamp: p.Timestamp, Price: p.Price}
	}

	result := cagr.Estimate(samples, years, currency, coinID)

	// Smoothing shapes the chart only; the rate always comes from raw data.
	if smooth && result.Cagr != nil {
		result.Series = cagr.Decimate(cagr.Smooth(samples, smoothingWindow), years)
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
