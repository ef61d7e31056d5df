// Coinplan is a crypto investment planning service.
//
// Startup sequence:
//  1. Loads configuration from environment variables (.env file)
//  2. Initializes the structured logger
//  3. Opens the market data cache database
//  4. Creates the CoinGecko client with cache-first fetching
//  5. Starts the HTTP server and the background cache jobs
//  6. Waits for a shutdown signal and performs graceful shutdown
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"coinplan/internal/clients/coingecko"
	"coinplan/internal/config"
	"coinplan/internal/database"
	"coinplan/internal/marketcache"
	cagrhandlers "coinplan/internal/modules/cagr/handlers"
	"coinplan/internal/modules/coins"
	coinshandlers "coinplan/internal/modules/coins/handlers"
	projectionhandlers "coinplan/internal/modules/projection/handlers"
	"coinplan/internal/modules/rates"
	rateshandlers "coinplan/internal/modules/rates/handlers"
	"coinplan/internal/scheduler"
	"coinplan/internal/server"
	"coinplan/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Coinplan")

	// Market data cache. Everything in it is rebuildable from upstream, so
	// it uses the throughput-oriented profile.
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "marketcache.db"),
		Name:    "marketcache",
		Profile: database.ProfileCache,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	if err := marketcache.EnsureSchema(cacheDB.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache schema")
	}
	cacheRepo := marketcache.NewRepository(cacheDB.Conn())

	gecko := coingecko.NewClient(cfg.CoinGeckoBaseURL, cacheRepo, cfg.CacheTTL, log)

	coinsService := coins.NewService(gecko, log)
	ratesService := rates.NewService(gecko, log)

	srv := server.New(server.Config{
		Log:         log,
		Config:      cfg,
		CacheDB:     cacheDB,
		Coins:       coinshandlers.NewHandler(coinsService, log),
		Rates:       rateshandlers.NewHandler(ratesService, log),
		Cagr:        cagrhandlers.NewHandler(gecko, log),
		Projections: projectionhandlers.NewHandler(log),
	})

	// Background jobs: keep the hot caches warm and prune expired rows.
	sched := scheduler.New(log)
	warmJob := coingecko.NewWarmJob(gecko, log)
	if err := sched.AddJob("@every 10m", warmJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache warm job")
	}
	if err := sched.AddJob("@hourly", marketcache.NewCleanupJob(cacheRepo, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache cleanup job")
	}
	sched.Start()
	defer sched.Stop()

	// Warm caches once at startup so the first request is fast. Failure is
	// not fatal; interactive requests fall back to direct fetches.
	if err := sched.RunNow(warmJob); err != nil {
		log.Warn().Err(err).Msg("Initial cache warm failed")
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
