package projection

import (
	"errors"
	"fmt"
	"math"
)

// ErrNegativeGrowthBase is returned when 1+annual is negative, which has no
// real root. Request validation keeps annual >= -0.99, so this guard only
// fires on unvalidated input.
var ErrNegativeGrowthBase = errors.New("annual rate below -100%, growth base is negative")

// PeriodicRate converts an annual growth rate into the equivalent
// per-period rate r such that (1+r)^k = 1+annual.
func PeriodicRate(annual float64, periodsPerYear int) (float64, error) {
	if periodsPerYear <= 0 {
		return 0, fmt.Errorf("periods per year must be positive, got %d", periodsPerYear)
	}
	if 1+annual < 0 {
		return 0, ErrNegativeGrowthBase
	}
	if periodsPerYear == 1 {
		return annual, nil
	}
	return math.Pow(1+annual, 1/float64(periodsPerYear)) - 1, nil
}
