package marketcache

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, EnsureSchema(db))
	return db
}

type cachedCoin struct {
	ID    string  `msgpack:"id"`
	Name  string  `msgpack:"name"`
	Price float64 `msgpack:"price"`
}

func TestStoreAndGetIfFresh(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	stored := []cachedCoin{
		{ID: "bitcoin", Name: "Bitcoin", Price: 64000.5},
		{ID: "ethereum", Name: "Ethereum", Price: 3100.25},
	}
	require.NoError(t, repo.Store(TableCoins, "top", stored, time.Hour))

	var loaded []cachedCoin
	found, err := repo.GetIfFresh(TableCoins, "top", &loaded)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, stored, loaded)
}

func TestGetIfFresh_Missing(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	var out []cachedCoin
	found, err := repo.GetIfFresh(TableCoins, "nope", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetIfFresh_Expired(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Store(TableMarketChart, "bitcoin:usd:365", []float64{1, 2, 3}, -time.Minute))

	var out []float64
	found, err := repo.GetIfFresh(TableMarketChart, "bitcoin:usd:365", &out)
	require.NoError(t, err)
	assert.False(t, found, "expired data must not be returned as fresh")

	// Stale read still works as an upstream-failure fallback
	found, err = repo.Get(TableMarketChart, "bitcoin:usd:365", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []float64{1, 2, 3}, out)
}

func TestStore_Upsert(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Store(TableExchangeRates, "btc", map[string]float64{"usd": 1.0}, time.Hour))
	require.NoError(t, repo.Store(TableExchangeRates, "btc", map[string]float64{"usd": 2.0}, time.Hour))

	var out map[string]float64
	found, err := repo.GetIfFresh(TableExchangeRates, "btc", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2.0, out["usd"])
}

func TestInvalidTable(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	err := repo.Store("bogus; DROP TABLE coins", "k", "v", time.Hour)
	assert.Error(t, err)

	var out string
	_, err = repo.GetIfFresh("bogus", "k", &out)
	assert.Error(t, err)

	_, err = repo.DeleteExpired("bogus")
	assert.Error(t, err)
}

func TestDeleteExpired(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Store(TableCoins, "fresh", "a", time.Hour))
	require.NoError(t, repo.Store(TableCoins, "stale", "b", -time.Hour))

	deleted, err := repo.DeleteExpired(TableCoins)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var out string
	found, err := repo.Get(TableCoins, "stale", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteAllExpired(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Store(TableCoins, "stale", "a", -time.Hour))
	require.NoError(t, repo.Store(TableExchangeRates, "stale", "b", -time.Hour))
	require.NoError(t, repo.Store(TableMarketChart, "fresh", "c", time.Hour))

	results, err := repo.DeleteAllExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), results[TableCoins])
	assert.Equal(t, int64(1), results[TableExchangeRates])
	assert.Equal(t, int64(0), results[TableMarketChart])
}
