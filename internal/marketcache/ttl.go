package marketcache

import "time"

// Default TTLs for the market data tables.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Coin lists and fiat rates follow the upstream's own refresh cadence.
	TTLCoinList      = 10 * time.Minute
	TTLExchangeRates = 10 * time.Minute

	// Daily price charts barely move within a session.
	TTLMarketChart = 10 * time.Minute
)
