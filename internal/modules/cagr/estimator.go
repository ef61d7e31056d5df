package cagr

import (
	"math"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"
)

// samplesPerYear treats each sample as one calendar day, matching the
// upstream daily-interval chart format.
const samplesPerYear = 365

// minVolatilitySamples is the smallest series that yields a meaningful
// standard deviation of returns.
const minVolatilitySamples = 3

// Estimate computes the annualized growth rate of the given price series
// along with a decimated yearly chart series. years is used only for the
// exponent and the final chart point, not for selecting samples.
//
// Data problems (fewer than 2 samples, a non-positive start price) are
// reported inside the Result with a nil rate; they are expected upstream
// conditions, not faults.
func Estimate(samples []PriceSample, years float64, currency, coinID string) Result {
	res := Result{
		CoinID:   coinID,
		Years:    years,
		Currency: currency,
	}

	if len(samples) < 2 {
		res.Error = ReasonInsufficientData
		return res
	}

	start := samples[0].Price
	end := samples[len(samples)-1].Price

	if start <= 0 {
		// A zero start would silently become +Inf; report it instead.
		res.Error = ReasonBadStartPrice
		return res
	}

	rate := math.Pow(end/start, 1/years) - 1
	res.Cagr = &rate
	res.StartPrice = &start
	res.EndPrice = &end
	res.Volatility = annualizedVolatility(samples)
	res.Series = Decimate(samples, years)

	return res
}

// Decimate walks the series at a one-year stride, emitting one point per
// stride, and always appends a final point at (round(years), end price) even
// when it duplicates the last strided point.
func Decimate(samples []PriceSample, years float64) []SeriesPoint {
	if len(samples) == 0 {
		return nil
	}

	series := make([]SeriesPoint, 0, len(samples)/samplesPerYear+2)
	for i := 0; i < len(samples); i += samplesPerYear {
		series = append(series, SeriesPoint{
			Year:  int(math.Round(float64(i) / samplesPerYear)),
			Price: samples[i].Price,
		})
	}

	series = append(series, SeriesPoint{
		Year:  int(math.Round(years)),
		Price: samples[len(samples)-1].Price,
	})

	return series
}

// Smooth returns a copy of the series with prices replaced by their
// simple moving average over the given window. The warm-up region where no
// full window exists keeps the raw prices. Used for chart presentation only;
// rate estimation always runs on the raw series.
func Smooth(samples []PriceSample, window int) []PriceSample {
	if window < 2 || len(samples) < window {
		return samples
	}

	prices := make([]float64, len(samples))
	for i, s := range samples {
		prices[i] = s.Price
	}

	smoothed := talib.Sma(prices, window)

	out := make([]PriceSample, len(samples))
	copy(out, samples)
	for i := window - 1; i < len(out); i++ {
		out[i].Price = smoothed[i]
	}
	return out
}

// annualizedVolatility computes the standard deviation of daily log returns
// scaled to a yearly horizon. Returns nil when the series is too short or
// contains non-positive prices.
func annualizedVolatility(samples []PriceSample) *float64 {
	if len(samples) < minVolatilitySamples {
		return nil
	}

	returns := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1].Price, samples[i].Price
		if prev <= 0 || cur <= 0 {
			return nil
		}
		returns = append(returns, math.Log(cur/prev))
	}

	vol := stat.StdDev(returns, nil) * math.Sqrt(samplesPerYear)
	return &vol
}
