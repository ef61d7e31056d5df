// Package cagr estimates compound annual growth rates from historical price
// series.
package cagr

// PriceSample is one (timestamp, price) observation of a daily price series,
// ordered by timestamp ascending. Timestamps are Unix milliseconds.
type PriceSample struct {
	Timestamp int64
	Price     float64
}

// SeriesPoint is one decimated yearly sample for charting.
type SeriesPoint struct {
	Year  int     `json:"year"`
	Price float64 `json:"price"`
}

// Result reports an estimate. A nil Cagr with a non-empty Error is a
// recoverable condition (bad or missing upstream data), not a fault. Field
// names are the wire contract of GET /api/cagr.
type Result struct {
	CoinID     string        `json:"coin_id"`
	Years      float64       `json:"years"`
	Currency   string        `json:"currency"`
	Cagr       *float64      `json:"cagr"`
	StartPrice *float64      `json:"start_price,omitempty"`
	EndPrice   *float64      `json:"end_price,omitempty"`
	Volatility *float64      `json:"volatility,omitempty"`
	Series     []SeriesPoint `json:"series,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Reported (recoverable) estimation failures.
const (
	ReasonInsufficientData = "Insufficient data"
	ReasonBadStartPrice    = "non-positive start price in upstream data"
)
