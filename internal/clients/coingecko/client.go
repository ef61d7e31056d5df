// Package coingecko provides market data fetching and caching for the
// CoinGecko v3 API.
package coingecko

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"coinplan/internal/marketcache"
)

// Coin is the slimmed-down market entry served to the frontend.
type Coin struct {
	ID            string  `json:"id" msgpack:"id"`
	Symbol        string  `json:"symbol" msgpack:"symbol"`
	Name          string  `json:"name" msgpack:"name"`
	Image         string  `json:"image" msgpack:"image"`
	CurrentPrice  float64 `json:"current_price" msgpack:"current_price"`
	MarketCapRank int     `json:"market_cap_rank" msgpack:"market_cap_rank"`
}

// Rate is a single entry of the BTC-based /exchange_rates response.
type Rate struct {
	Name  string  `json:"name" msgpack:"name"`
	Unit  string  `json:"unit" msgpack:"unit"`
	Value float64 `json:"value" msgpack:"value"`
	Type  string  `json:"type" msgpack:"type"`
}

// PricePoint is one (timestamp, price) sample of a market chart.
// CoinGecko encodes these as two-element JSON arrays.
type PricePoint struct {
	Timestamp int64   `msgpack:"ts"` // Unix milliseconds
	Price     float64 `msgpack:"price"`
}

// UnmarshalJSON decodes the [timestamp_ms, price] pair format.
func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("invalid price point: %w", err)
	}
	p.Timestamp = int64(pair[0])
	p.Price = pair[1]
	return nil
}

const (
	marketPages   = 2   // 2 pages x 250 = top 500 by market cap
	coinsPerPage  = 250
	coinsCacheKey = "top"
	ratesCacheKey = "btc"
)

// Client for the CoinGecko v3 API
type Client struct {
	baseURL     string
	listClient  *http.Client // coin lists and exchange rates
	chartClient *http.Client // historical charts are slower upstream
	log         zerolog.Logger
	cacheRepo   *marketcache.Repository
	cacheTTL    time.Duration
}

// NewClient creates a new CoinGecko client.
// cacheRepo is optional - if nil, caching is disabled. A non-positive
// cacheTTL falls back to the per-table defaults in marketcache.
func NewClient(baseURL string, cacheRepo *marketcache.Repository, cacheTTL time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		listClient:  &http.Client{Timeout: 15 * time.Second},
		chartClient: &http.Client{Timeout: 30 * time.Second},
		log:         log.With().Str("client", "coingecko").Logger(),
		cacheRepo:   cacheRepo,
		cacheTTL:    cacheTTL,
	}
}

// ttlFor returns the configured TTL, or the table default when unset.
func (c *Client) ttlFor(fallback time.Duration) time.Duration {
	if c.cacheTTL > 0 {
		return c.cacheTTL
	}
	return fallback
}

// TopCoins fetches the top market-cap coins (500 entries) with cache.
// If the API fails, returns stale cached data if available.
func (c *Client) TopCoins() ([]Coin, error) {
	if coins, ok := c.freshFromCache(marketcache.TableCoins, coinsCacheKey); ok {
		return coins, nil
	}

	coins := make([]Coin, 0, marketPages*coinsPerPage)
	for page := 1; page <= marketPages; page++ {
		pageCoins, err := c.fetchMarketPage(page)
		if err != nil {
			if stale, ok := c.staleCoins(); ok {
				c.log.Warn().Err(err).Int("page", page).Msg("API failed, using stale cached coin list")
				return stale, nil
			}
			return nil, err
		}
		coins = append(coins, pageCoins...)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(marketcache.TableCoins, coinsCacheKey, coins, c.ttlFor(marketcache.TTLCoinList)); err != nil {
			c.log.Warn().Err(err).Msg("Failed to cache coin list")
		}
	}

	c.log.Info().Int("count", len(coins)).Msg("Fetched coin list")
	return coins, nil
}

// fetchMarketPage fetches one page of /coins/markets.
func (c *Client) fetchMarketPage(page int) ([]Coin, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(coinsPerPage))
	params.Set("page", strconv.Itoa(page))
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h")

	reqURL := fmt.Sprintf("%s/coins/markets?%s", c.baseURL, params.Encode())
	c.log.Debug().Str("url", reqURL).Msg("Fetching coin markets")

	resp, err := c.listClient.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var coins []Coin
	if err := json.NewDecoder(resp.Body).Decode(&coins); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return coins, nil
}

// ExchangeRates fetches the BTC-based exchange rate table with cache.
// If the API fails, returns stale cached data if available.
func (c *Client) ExchangeRates() (map[string]Rate, error) {
	if c.cacheRepo != nil {
		var cached map[string]Rate
		found, err := c.cacheRepo.GetIfFresh(marketcache.TableExchangeRates, ratesCacheKey, &cached)
		if err == nil && found {
			c.log.Debug().Int("count", len(cached)).Msg("Cache hit for exchange rates")
			return cached, nil
		}
	}

	reqURL := c.baseURL + "/exchange_rates"
	c.log.Debug().Str("url", reqURL).Msg("Fetching exchange rates")

	rates, err := c.fetchExchangeRates(reqURL)
	if err != nil {
		if stale, ok := c.staleRates(); ok {
			c.log.Warn().Err(err).Msg("API failed, using stale cached exchange rates")
			return stale, nil
		}
		return nil, err
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(marketcache.TableExchangeRates, ratesCacheKey, rates, c.ttlFor(marketcache.TTLExchangeRates)); err != nil {
			c.log.Warn().Err(err).Msg("Failed to cache exchange rates")
		}
	}

	c.log.Info().Int("count", len(rates)).Msg("Fetched exchange rates")
	return rates, nil
}

func (c *Client) fetchExchangeRates(reqURL string) (map[string]Rate, error) {
	resp, err := c.listClient.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result struct {
		Rates map[string]Rate `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Rates, nil
}

// MarketChart fetches the daily price series for a coin over the given
// number of days, with cache. The key includes coin, currency and range so
// different horizons never collide.
func (c *Client) MarketChart(coinID, currency string, days int) ([]PricePoint, error) {
	cacheKey := fmt.Sprintf("%s:%s:%d", coinID, currency, days)

	if c.cacheRepo != nil {
		var cached []PricePoint
		found, err := c.cacheRepo.GetIfFresh(marketcache.TableMarketChart, cacheKey, &cached)
		if err == nil && found {
			c.log.Debug().Str("coin", coinID).Int("days", days).Msg("Cache hit for market chart")
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("vs_currency", currency)
	params.Set("days", strconv.Itoa(days))
	params.Set("interval", "daily")

	reqURL := fmt.Sprintf("%s/coins/%s/market_chart?%s", c.baseURL, url.PathEscape(coinID), params.Encode())
	c.log.Debug().Str("url", reqURL).Msg("Fetching market chart")

	resp, err := c.chartClient.Get(reqURL)
	if err != nil {
		if stale, ok := c.staleChart(cacheKey); ok {
			c.log.Warn().Err(err).Str("coin", coinID).Msg("API failed, using stale cached chart")
			return stale, nil
		}
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if stale, ok := c.staleChart(cacheKey); ok {
			c.log.Warn().Int("status", resp.StatusCode).Str("coin", coinID).Msg("API error, using stale cached chart")
			return stale, nil
		}
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		Prices []PricePoint `json:"prices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(marketcache.TableMarketChart, cacheKey, result.Prices, c.ttlFor(marketcache.TTLMarketChart)); err != nil {
			c.log.Warn().Err(err).Str("coin", coinID).Msg("Failed to cache market chart")
		}
	}

	c.log.Info().Str("coin", coinID).Int("samples", len(result.Prices)).Msg("Fetched market chart")
	return result.Prices, nil
}

// freshFromCache returns the fresh cached coin list, if any.
func (c *Client) freshFromCache(table, key string) ([]Coin, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	var cached []Coin
	found, err := c.cacheRepo.GetIfFresh(table, key, &cached)
	if err != nil || !found {
		return nil, false
	}
	c.log.Debug().Int("count", len(cached)).Msg("Cache hit for coin list")
	return cached, true
}

func (c *Client) staleCoins() ([]Coin, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	var cached []Coin
	found, err := c.cacheRepo.Get(marketcache.TableCoins, coinsCacheKey, &cached)
	if err != nil || !found {
		return nil, false
	}
	return cached, true
}

func (c *Client) staleRates() (map[string]Rate, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	var cached map[string]Rate
	found, err := c.cacheRepo.Get(marketcache.TableExchangeRates, ratesCacheKey, &cached)
	if err != nil || !found {
		return nil, false
	}
	return cached, true
}

func (c *Client) staleChart(cacheKey string) ([]PricePoint, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	var cached []PricePoint
	found, err := c.cacheRepo.Get(marketcache.TableMarketChart, cacheKey, &cached)
	if err != nil || !found {
		return nil, false
	}
	return cached, true
}
