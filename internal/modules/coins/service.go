// Package coins serves the searchable list of top market-cap coins.
package coins

import (
	"strings"

	"github.com/rs/zerolog"

	"coinplan/internal/clients/coingecko"
)

// MarketClient provides the upstream coin list.
type MarketClient interface {
	TopCoins() ([]coingecko.Coin, error)
}

// Service lists and filters coins.
type Service struct {
	client MarketClient
	log    zerolog.Logger
}

// NewService creates a new coins service.
func NewService(client MarketClient, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		log:    log.With().Str("service", "coins").Logger(),
	}
}

// List returns the top coins, optionally filtered by a case-insensitive
// substring match on name or symbol.
func (s *Service) List(search string) ([]coingecko.Coin, error) {
	coins, err := s.client.TopCoins()
	if err != nil {
		return nil, err
	}

	if search == "" {
		return coins, nil
	}

	needle := strings.ToLower(search)
	filtered := make([]coingecko.Coin, 0, len(coins))
	for _, c := range coins {
		if strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Symbol), needle) {
			filtered = append(filtered, c)
		}
	}

	return filtered, nil
}
