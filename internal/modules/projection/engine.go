package projection

import "math"

// monthsPerYear: SIP projections always contribute and compound monthly,
// regardless of the requested frequency. A product decision is needed before
// changing this, since it would alter every SIP output.
const monthsPerYear = 12

// Project computes the projection for the given request. The request is
// validated first; invalid requests are rejected without partial results.
//
// Period counts are derived from the fractional horizon with math.Round,
// so half-integer horizons round away from zero (2.5 years -> 3 yearly
// periods). Totals are rounded to 2 fractional digits at the boundary;
// intermediate state keeps full precision.
func Project(req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	switch req.Mode {
	case ModeLump:
		return projectLump(req)
	default:
		return projectSIP(req)
	}
}

// projectLump grows a single deposit under compound interest. Because
// (1+r)^k = 1+a by construction, the yearly values are identical (to float
// tolerance) for monthly and yearly compounding.
func projectLump(req Request) (Result, error) {
	k := req.Frequency.PeriodsPerYear()
	r, err := PeriodicRate(req.AnnualRate, k)
	if err != nil {
		return Result{}, err
	}

	periods := int(math.Round(req.Years * float64(k)))
	if periods == 0 {
		return emptyResult(req), nil
	}

	invested := req.Amount
	value := invested * math.Pow(1+r, float64(periods))

	wholeYears := int(math.Round(req.Years))
	series := make([]Point, 0, wholeYears)
	for y := 1; y <= wholeYears; y++ {
		v := invested * math.Pow(1+r, float64(y*k))
		series = append(series, Point{Year: y, Invested: invested, Value: v})
	}

	return finishResult(req, invested, value, series), nil
}

// projectSIP accumulates fixed monthly contributions, each credited at the
// end of its month. A series point is emitted at the close of every 12th
// month; a trailing partial year contributes to the totals but gets no point.
func projectSIP(req Request) (Result, error) {
	rMonth, err := PeriodicRate(req.AnnualRate, monthsPerYear)
	if err != nil {
		return Result{}, err
	}

	months := int(math.Round(req.Years * monthsPerYear))
	if months == 0 {
		return emptyResult(req), nil
	}

	var invested, value float64
	series := make([]Point, 0, months/monthsPerYear)
	for m := 1; m <= months; m++ {
		invested += req.Amount
		value = value*(1+rMonth) + req.Amount
		if m%monthsPerYear == 0 {
			series = append(series, Point{Year: m / monthsPerYear, Invested: invested, Value: value})
		}
	}

	return finishResult(req, invested, value, series), nil
}

func emptyResult(req Request) Result {
	return Result{
		AnnualRate: req.AnnualRate,
		Years:      req.Years,
		Series:     []Point{},
	}
}

func finishResult(req Request, invested, value float64, series []Point) Result {
	return Result{
		TotalInvested: round2(invested),
		FinalValue:    round2(value),
		Profit:        round2(value - invested),
		AnnualRate:    req.AnnualRate,
		Years:         req.Years,
		Series:        series,
	}
}

// round2 rounds to 2 fractional digits, applied only at the response
// boundary.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
