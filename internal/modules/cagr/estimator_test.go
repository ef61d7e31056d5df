package cagr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticSeries compounds a known daily rate over days samples starting
// at startPrice, one sample per day.
func syntheticSeries(startPrice, dailyRate float64, days int) []PriceSample {
	samples := make([]PriceSample, days)
	price := startPrice
	for i := 0; i < days; i++ {
		samples[i] = PriceSample{Timestamp: int64(i) * 86_400_000, Price: price}
		price *= 1 + dailyRate
	}
	return samples
}

func TestEstimate_RoundTrip(t *testing.T) {
	// A series compounded at a known daily rate must recover the
	// equivalent annual rate.
	const years = 5.0
	const annual = 0.15
	daily := math.Pow(1+annual, 1.0/365) - 1

	samples := syntheticSeries(100, daily, 365*int(years)+1)
	res := Estimate(samples, years, "usd", "bitcoin")

	require.NotNil(t, res.Cagr)
	assert.InEpsilon(t, annual, *res.Cagr, 1e-6)
	assert.Empty(t, res.Error)
	assert.Equal(t, "bitcoin", res.CoinID)
	assert.Equal(t, "usd", res.Currency)
	assert.Equal(t, years, res.Years)
	require.NotNil(t, res.StartPrice)
	assert.Equal(t, 100.0, *res.StartPrice)
}

func TestEstimate_ScenarioDoubling(t *testing.T) {
	// start 100, end 200 over 5 years -> 2^(1/5) - 1
	samples := []PriceSample{
		{Timestamp: 0, Price: 100},
		{Timestamp: 86_400_000, Price: 130},
		{Timestamp: 2 * 86_400_000, Price: 200},
	}

	res := Estimate(samples, 5, "usd", "bitcoin")

	require.NotNil(t, res.Cagr)
	assert.InDelta(t, math.Pow(2, 0.2)-1, *res.Cagr, 1e-12)
	assert.InDelta(t, 0.1487, *res.Cagr, 0.0001)
	require.NotNil(t, res.EndPrice)
	assert.Equal(t, 200.0, *res.EndPrice)
}

func TestEstimate_InsufficientData(t *testing.T) {
	for _, samples := range [][]PriceSample{nil, {}, {{Timestamp: 0, Price: 100}}} {
		res := Estimate(samples, 5, "usd", "bitcoin")

		assert.Nil(t, res.Cagr)
		assert.Equal(t, ReasonInsufficientData, res.Error)
		assert.Nil(t, res.Series)
		assert.Nil(t, res.StartPrice)
	}
}

func TestEstimate_ZeroStartPrice(t *testing.T) {
	samples := []PriceSample{
		{Timestamp: 0, Price: 0},
		{Timestamp: 86_400_000, Price: 100},
	}

	res := Estimate(samples, 5, "usd", "newcoin")

	assert.Nil(t, res.Cagr, "zero start price must not become +Inf")
	assert.Equal(t, ReasonBadStartPrice, res.Error)
}

func TestDecimate(t *testing.T) {
	samples := syntheticSeries(100, 0.001, 3*365+1)

	series := Decimate(samples, 3)

	// Strided points at days 0, 365, 730, 1095, plus the forced final point.
	require.Len(t, series, 5)
	assert.Equal(t, 0, series[0].Year)
	assert.Equal(t, 1, series[1].Year)
	assert.Equal(t, 2, series[2].Year)
	assert.Equal(t, 3, series[3].Year)

	last := series[len(series)-1]
	assert.Equal(t, 3, last.Year)
	assert.Equal(t, samples[len(samples)-1].Price, last.Price,
		"final point always carries the end price")
}

func TestDecimate_ShortSeries(t *testing.T) {
	samples := []PriceSample{
		{Timestamp: 0, Price: 100},
		{Timestamp: 86_400_000, Price: 110},
	}

	series := Decimate(samples, 5)

	// One strided point at day 0 plus the final point at round(years).
	require.Len(t, series, 2)
	assert.Equal(t, SeriesPoint{Year: 0, Price: 100}, series[0])
	assert.Equal(t, SeriesPoint{Year: 5, Price: 110}, series[1])
}

func TestDecimate_Empty(t *testing.T) {
	assert.Nil(t, Decimate(nil, 5))
}

func TestVolatility_ConstantGrowthIsZero(t *testing.T) {
	samples := syntheticSeries(100, 0.002, 400)

	res := Estimate(samples, 1, "usd", "bitcoin")

	require.NotNil(t, res.Volatility)
	assert.InDelta(t, 0, *res.Volatility, 1e-9,
		"constant daily growth has zero return variance")
}

func TestVolatility_TooFewSamples(t *testing.T) {
	samples := []PriceSample{
		{Timestamp: 0, Price: 100},
		{Timestamp: 86_400_000, Price: 110},
	}

	res := Estimate(samples, 1, "usd", "bitcoin")

	require.NotNil(t, res.Cagr, "cagr needs only 2 samples")
	assert.Nil(t, res.Volatility, "volatility needs at least 3")
}

func TestSmooth(t *testing.T) {
	samples := []PriceSample{
		{Timestamp: 0, Price: 100},
		{Timestamp: 1, Price: 110},
		{Timestamp: 2, Price: 100},
		{Timestamp: 3, Price: 110},
	}

	smoothed := Smooth(samples, 2)

	require.Len(t, smoothed, 4)
	assert.Equal(t, 100.0, smoothed[0].Price, "warm-up keeps the raw price")
	assert.Equal(t, 105.0, smoothed[1].Price)
	assert.Equal(t, 105.0, smoothed[2].Price)
	assert.Equal(t, 105.0, smoothed[3].Price)

	// Original series untouched
	assert.Equal(t, 110.0, samples[1].Price)
}

func TestSmooth_WindowLargerThanSeries(t *testing.T) {
	samples := []PriceSample{{Timestamp: 0, Price: 100}}
	assert.Equal(t, samples, Smooth(samples, 30))
}
