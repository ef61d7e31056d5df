// Package projection implements the compound-growth projection engine for
// lump-sum and periodic (SIP) investments.
package projection

import "fmt"

// Mode selects how contributions are made.
type Mode string

const (
	// ModeLump is a single upfront deposit.
	ModeLump Mode = "lump"
	// ModeSIP is a fixed monthly contribution plan.
	ModeSIP Mode = "sip"
)

// Frequency selects how often growth is compounded.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// PeriodsPerYear returns the number of compounding periods per year.
func (f Frequency) PeriodsPerYear() int {
	if f == FrequencyYearly {
		return 1
	}
	return 12
}

// Request describes a projection to compute. Field names are the wire
// contract of POST /api/projection.
type Request struct {
	Mode       Mode      `json:"type"`
	Amount     float64   `json:"amount"`
	Years      float64   `json:"years"`
	AnnualRate float64   `json:"cagr"`
	Frequency  Frequency `json:"frequency"`
}

// ApplyDefaults fills optional fields, matching the request schema defaults.
func (r *Request) ApplyDefaults() {
	if r.Frequency == "" {
		r.Frequency = FrequencyMonthly
	}
}

// ValidationError reports a rejected request field. Invalid inputs are
// rejected before any computation, never clamped.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks all request fields against the accepted ranges.
func (r *Request) Validate() error {
	if r.Mode != ModeLump && r.Mode != ModeSIP {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("must be %q or %q", ModeSIP, ModeLump)}
	}
	if r.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if r.Years <= 0 || r.Years > 70 {
		return &ValidationError{Field: "years", Reason: "must be in (0, 70]"}
	}
	if r.AnnualRate < -0.99 || r.AnnualRate > 10 {
		return &ValidationError{Field: "cagr", Reason: "must be in [-0.99, 10]"}
	}
	if r.Frequency != FrequencyMonthly && r.Frequency != FrequencyYearly {
		return &ValidationError{Field: "frequency", Reason: fmt.Sprintf("must be %q or %q", FrequencyMonthly, FrequencyYearly)}
	}
	return nil
}

// Point is one yearly sample of a projection series.
type Point struct {
	Year     int     `json:"year"`
	Invested float64 `json:"invested"`
	Value    float64 `json:"value"`
}

// Result holds the projection totals and the yearly series. Field names are
// the wire contract of POST /api/projection.
type Result struct {
	TotalInvested float64 `json:"total_invested"`
	FinalValue    float64 `json:"final_value"`
	Profit        float64 `json:"profit"`
	AnnualRate    float64 `json:"cagr"`
	Years         float64 `json:"years"`
	Series        []Point `json:"series"`
}
