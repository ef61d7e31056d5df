package coingecko

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarmJob_RefreshesBothCaches(t *testing.T) {
	var marketCalls, ratesCalls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coins/markets":
			marketCalls.Add(1)
			w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":50000}]`))
		case "/exchange_rates":
			ratesCalls.Add(1)
			w.Write([]byte(`{"rates":{"usd":{"name":"US Dollar","unit":"$","value":50000,"type":"fiat"}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	repo := testCacheRepo(t)
	client := NewClient(srv.URL, repo, 10*time.Minute, testLogger())
	job := NewWarmJob(client, testLogger())

	assert.Equal(t, "coingecko_warm", job.Name())
	require.NoError(t, job.Run())

	assert.Equal(t, int64(2), marketCalls.Load()) // one request per page
	assert.Equal(t, int64(1), ratesCalls.Load())

	// Interactive calls should now be served from cache.
	_, err := client.TopCoins()
	require.NoError(t, err)
	_, err = client.ExchangeRates()
	require.NoError(t, err)
	assert.Equal(t, int64(2), marketCalls.Load())
	assert.Equal(t, int64(1), ratesCalls.Load())
}

func TestWarmJob_PartialFailureStillRefreshesOther(t *testing.T) {
	var ratesCalls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coins/markets":
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		case "/exchange_rates":
			ratesCalls.Add(1)
			w.Write([]byte(`{"rates":{"usd":{"name":"US Dollar","unit":"$","value":50000,"type":"fiat"}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	repo := testCacheRepo(t)
	client := NewClient(srv.URL, repo, 10*time.Minute, testLogger())
	job := NewWarmJob(client, testLogger())

	err := job.Run()
	assert.Error(t, err)
	assert.Equal(t, int64(1), ratesCalls.Load())
}
