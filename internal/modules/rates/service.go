// Package rates converts the upstream BTC-based exchange rate table into a
// USD-based fiat rate map.
package rates

import (
	"strings"

	"github.com/rs/zerolog"

	"coinplan/internal/clients/coingecko"
)

// Base currency of the published rate map.
const Base = "USD"

// RatesClient provides the upstream exchange rate table.
type RatesClient interface {
	ExchangeRates() (map[string]coingecko.Rate, error)
}

// Service re-bases exchange rates to USD.
type Service struct {
	client RatesClient
	log    zerolog.Logger
}

// NewService creates a new rates service.
func NewService(client RatesClient, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		log:    log.With().Str("service", "rates").Logger(),
	}
}

// FiatRates returns the USD value of one unit of each fiat currency in the
// upstream table. The upstream table is BTC-denominated, so each entry is
// divided by the BTC value of one USD. When the USD anchor is missing, the
// map degrades to {USD: 1.0}.
func (s *Service) FiatRates() (map[string]float64, error) {
	rates, err := s.client.ExchangeRates()
	if err != nil {
		return nil, err
	}

	usdAnchor, ok := rates["usd"]
	if !ok || usdAnchor.Value == 0 {
		s.log.Warn().Msg("USD anchor missing from exchange rate table")
		return map[string]float64{Base: 1.0}, nil
	}

	out := make(map[string]float64)
	for code, meta := range rates {
		if meta.Type != "fiat" {
			continue
		}
		out[strings.ToUpper(code)] = meta.Value / usdAnchor.Value
	}

	return out, nil
}
