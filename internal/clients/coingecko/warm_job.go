package coingecko

import "github.com/rs/zerolog"

// WarmJob refreshes the coin list and exchange rate caches so interactive
// requests rarely pay the upstream round trip.
type WarmJob struct {
	client *Client
	log    zerolog.Logger
}

// NewWarmJob creates a cache warming job for the given client
func NewWarmJob(client *Client, log zerolog.Logger) *WarmJob {
	return &WarmJob{
		client: client,
		log:    log.With().Str("job", "coingecko_warm").Logger(),
	}
}

// Name returns the job name
func (j *WarmJob) Name() string { return "coingecko_warm" }

// Run refreshes both caches. A failure on one does not skip the other.
func (j *WarmJob) Run() error {
	var firstErr error

	if coins, err := j.client.TopCoins(); err != nil {
		j.log.Warn().Err(err).Msg("Coin list refresh failed")
		firstErr = err
	} else {
		j.log.Debug().Int("count", len(coins)).Msg("Coin list refreshed")
	}

	if rates, err := j.client.ExchangeRates(); err != nil {
		j.log.Warn().Err(err).Msg("Exchange rate refresh failed")
		if firstErr == nil {
			firstErr = err
		}
	} else {
		j.log.Debug().Int("count", len(rates)).Msg("Exchange rates refreshed")
	}

	return firstErr
}
