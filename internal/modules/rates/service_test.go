package rates

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinplan/internal/clients/coingecko"
)

type fakeRatesClient struct {
	rates map[string]coingecko.Rate
	err   error
}

func (f *fakeRatesClient) ExchangeRates() (map[string]coingecko.Rate, error) {
	return f.rates, f.err
}

func newTestService(client RatesClient) *Service {
	return NewService(client, zerolog.New(nil).Level(zerolog.Disabled))
}

func TestFiatRates(t *testing.T) {
	svc := newTestService(&fakeRatesClient{rates: map[string]coingecko.Rate{
		"usd": {Name: "US Dollar", Value: 64000, Type: "fiat"},
		"eur": {Name: "Euro", Value: 59000, Type: "fiat"},
		"jpy": {Name: "Yen", Value: 9600000, Type: "fiat"},
		"eth": {Name: "Ether", Value: 20.5, Type: "crypto"},
	}})

	out, err := svc.FiatRates()
	require.NoError(t, err)

	assert.Len(t, out, 3, "crypto entries are excluded")
	assert.Equal(t, 1.0, out["USD"])
	assert.InDelta(t, 59000.0/64000.0, out["EUR"], 1e-12)
	assert.InDelta(t, 150.0, out["JPY"], 1e-9)
	assert.NotContains(t, out, "ETH")
}

func TestFiatRates_MissingUSDAnchor(t *testing.T) {
	svc := newTestService(&fakeRatesClient{rates: map[string]coingecko.Rate{
		"eur": {Name: "Euro", Value: 59000, Type: "fiat"},
	}})

	out, err := svc.FiatRates()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"USD": 1.0}, out)
}

func TestFiatRates_ZeroUSDAnchor(t *testing.T) {
	svc := newTestService(&fakeRatesClient{rates: map[string]coingecko.Rate{
		"usd": {Name: "US Dollar", Value: 0, Type: "fiat"},
		"eur": {Name: "Euro", Value: 59000, Type: "fiat"},
	}})

	out, err := svc.FiatRates()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"USD": 1.0}, out)
}

func TestFiatRates_ClientError(t *testing.T) {
	svc := newTestService(&fakeRatesClient{err: errors.New("upstream down")})

	_, err := svc.FiatRates()
	assert.Error(t, err)
}
