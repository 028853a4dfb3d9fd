package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/codesmog/codesmog-go/internal/api"
	"github.com/codesmog/codesmog-go/internal/cache"
	"github.com/codesmog/codesmog-go/internal/config"
	"github.com/codesmog/codesmog-go/internal/logging"
	"github.com/codesmog/codesmog-go/internal/metrics"
	"github.com/codesmog/codesmog-go/internal/mockdata"
	"github.com/codesmog/codesmog-go/internal/providers"
	"github.com/codesmog/codesmog-go/internal/registry"
	"github.com/codesmog/codesmog-go/internal/services"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)
	m := metrics.NewDefault()

	var store cache.Store
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer func() {
			_ = client.Close()
		}()
		store = cache.NewRedisStore(client, logger)
		logger.Info("Using Redis-backed cache")
	} else {
		store = cache.NewMemoryStore()
		logger.Info("Using in-memory cache")
	}

	reg := registry.New()

	githubExec := providers.NewExecutor("github", providers.Limits{
		MaxRequests: cfg.Providers.GitHub.MaxRequests,
		Window:      cfg.Providers.GitHub.WindowDuration(),
		RetryAfter:  cfg.Providers.GitHub.RetryAfterDuration(),
	}, logger, m)
	openaqExec := providers.NewExecutor("openaq", providers.Limits{
		MaxRequests: cfg.Providers.OpenAQ.MaxRequests,
		Window:      cfg.Providers.OpenAQ.WindowDuration(),
		RetryAfter:  cfg.Providers.OpenAQ.RetryAfterDuration(),
	}, logger, m)
	coingeckoExec := providers.NewExecutor("coingecko", providers.Limits{
		MaxRequests: cfg.Providers.CoinGecko.MaxRequests,
		Window:      cfg.Providers.CoinGecko.WindowDuration(),
		RetryAfter:  cfg.Providers.CoinGecko.RetryAfterDuration(),
	}, logger, m)

	activityTTL, environmentalTTL, correlationTTL, marketTTL := cfg.Cache.TTLs()
	svc := services.NewDataService(
		reg,
		providers.NewGitHubProvider(cfg.Providers.GitHub, githubExec, logger),
		providers.NewAirQualityProvider(cfg.Providers.OpenAQ, openaqExec, logger),
		providers.NewMarketProvider(cfg.Providers.CoinGecko, coingeckoExec, logger),
		mockdata.New(),
		store,
		services.TTLs{
			Activity:      activityTTL,
			Environmental: environmentalTTL,
			Correlation:   correlationTTL,
			Market:        marketTTL,
		},
		cfg.Mock.Force,
		logger,
		m,
	)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, cfg, logger, reg, svc, version)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
