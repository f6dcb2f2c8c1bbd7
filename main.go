package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"shopsearch/internal/cache"
	"shopsearch/internal/cache/searchCache"
	"shopsearch/internal/config"
	"shopsearch/internal/fetcher"
	"shopsearch/internal/http"
	"shopsearch/internal/logger"
	"shopsearch/internal/models"
	"shopsearch/internal/parser"
	"shopsearch/internal/search"

	"github.com/rs/zerolog/log"
)

const redisKeyPrefix = "shopsearch:"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	startupCtx := logger.WithLogEvent(context.Background(), logger.NewInternalLogEvent())

	appLogger := initializeLogger(startupCtx, cfg)
	defer appLogger.Close()

	appLogger.LogInfo(startupCtx, logger.OpServerStart, "Starting shopping search", map[string]interface{}{
		"version": "1.0.0",
		"config": map[string]interface{}{
			"addr":           cfg.Addr(),
			"debug":          cfg.Debug(),
			"cache_type":     cfg.CacheType,
			"cache_capacity": cfg.CacheCapacity,
			"cache_ttl":      cfg.CacheTTL().Seconds(),
			"log_sink":       cfg.LogSink,
		},
	})

	cacheService, err := initializeCache(cfg)
	if err != nil {
		appLogger.LogError(startupCtx, "cache_init", "", "Failed to initialize cache", err, models.LogSeverityHigh, nil)
		log.Fatal().Err(err).Msg("Failed to initialize cache")
	}
	defer cacheService.Close()

	searchService, err := search.NewService(
		fetcher.NewSearchAPIFetcher(cfg.SearchAPIURL, cfg.SearchAPIKey, cfg.FetchTimeout()),
		searchCache.New(cacheService, cfg.CacheTTL()),
		parser.NewParser(),
		appLogger,
		cfg.SearchAPIKey,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize search service")
	}

	handler := http.NewHandler(searchService, appLogger)
	server := http.NewServer(
		cfg.Addr(),
		handler,
		appLogger,
		cfg.ServerReadTimeout(),
		cfg.ServerWriteTimeout(),
	)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			appLogger.LogError(
				startupCtx,
				logger.OpServerStart,
				"",
				"Server failed to start",
				err,
				models.LogSeverityHigh,
				map[string]interface{}{"addr": cfg.Addr()},
			)
			log.Fatal().Err(err).Str("addr", cfg.Addr()).Msg("Server failed to start")
		}
	}()

	log.Info().
		Str("addr", cfg.Addr()).
		Strs("routes", []string{"/", "/search", "/product/{product_id}", "/api/search", "/health", "/metrics"}).
		Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(startupCtx, cfg.ServerShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.LogError(ctx, logger.OpServerShutdown, "", "Server shutdown error", err, models.LogSeverityMedium, nil)
		return
	}
	appLogger.LogInfo(ctx, logger.OpServerShutdown, "Server shutdown completed successfully", nil)
}

// initializeLogger returns the configured sink. The database sink falls back to the console
// when Postgres is unreachable. Closing the database logger closes its pool.
func initializeLogger(ctx context.Context, cfg *config.Config) logger.Service {
	console := logger.NewConsoleLogger(cfg.Debug())
	if cfg.LogSink != config.LogSinkDatabase {
		return console
	}

	db, err := logger.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		console.LogError(ctx, "logger_init", "", "Database log sink unavailable, using console", err, models.LogSeverityMedium, nil)
		return console
	}

	return logger.NewDatabaseLogger(db, console)
}

func initializeCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.CacheType {
	case config.CacheTypeRedis:
		return cache.NewRedisCache(cfg.RedisURL, redisKeyPrefix)
	case config.CacheTypeMemory:
		return cache.NewMemoryCache(cfg.CacheCapacity)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
