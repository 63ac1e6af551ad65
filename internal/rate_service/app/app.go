package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	redisPack "github.com/redis/go-redis/v9"

	"github.com/ratefeed/ratefeed/deploy/config"
	"github.com/ratefeed/ratefeed/internal/rate_service/adapter/cache/noop"
	redisCache "github.com/ratefeed/ratefeed/internal/rate_service/adapter/cache/redis"
	"github.com/ratefeed/ratefeed/internal/rate_service/adapter/provider/cryptocompare"
	"github.com/ratefeed/ratefeed/internal/rate_service/adapter/provider/openerapi"
	"github.com/ratefeed/ratefeed/internal/rate_service/adapter/storage/postgres"
	"github.com/ratefeed/ratefeed/internal/rate_service/metrics"
	"github.com/ratefeed/ratefeed/internal/rate_service/ports/http/public"
	"github.com/ratefeed/ratefeed/internal/rate_service/service"
	"github.com/ratefeed/ratefeed/internal/registry"
)

type App struct {
	cfg *config.Config
}

func NewApp(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

func (a *App) Start(ctx context.Context) <-chan struct{} {
	a.initLogger()
	slog.Info("Logger initialized")

	slog.With("config", a.cfg).Info("starting service")

	reg := a.initRegistry()
	slog.Info("Currency registry initialized", "currencies", reg.Len())

	pgStorage := a.initDatabase(ctx)
	slog.Info("Storage initialized")

	cache := a.initCache(ctx)
	slog.Info("Cache initialized", "available", cache.IsAvailable(ctx))

	m := metrics.New(prometheus.DefaultRegisterer)

	providers := a.initProviders(reg)
	slog.Info("Providers initialized", "count", len(providers))

	aggregator := service.NewAggregator(providers, reg, a.cfg, m)
	orchestrator := service.NewOrchestrator(aggregator, pgStorage, cache, m)
	retrieval := service.NewRetrievalService(pgStorage, cache, m)
	trends := service.NewTrendAnalyzer(pgStorage, a.cfg.Aggregator.MinTrendHours)

	go func() {
		if err := orchestrator.Run(ctx, a.cfg.Aggregator.RefreshInterval); err != nil {
			slog.Info("refresh loop stopped", "error", err)
		}
	}()

	serverDone := public.StartServer(ctx, retrieval, trends, orchestrator, a.cfg)
	slog.Info("server started")

	return serverDone
}

func (a *App) initLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: false,
	}))
	slog.SetDefault(logger)
}

func (a *App) initRegistry() *registry.Registry {
	reg, err := registry.New(a.cfg.CurrencyList())
	if err != nil {
		log.Fatalln("Failed to initialize currency registry", "error", err)
	}

	return reg
}

func (a *App) initDatabase(ctx context.Context) *postgres.Storage {

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		a.cfg.Storage.Host,
		a.cfg.Storage.Port,
		a.cfg.Storage.User,
		a.cfg.Storage.Password,
		a.cfg.Storage.DBName,
		a.cfg.Storage.SSLMode,
		a.cfg.Storage.Schema,
	)

	pgStorage, err := postgres.InitStorage(ctx, dsn)
	if err != nil {
		log.Fatalln("Failed to initialize PostgresSQL storage", "error", err)
	}

	return pgStorage
}

// initCache wires redis when configured and falls back to the no-op cache
// otherwise. The cache is best-effort, so a missing or unreachable backend
// is never fatal.
func (a *App) initCache(ctx context.Context) service.Cache {
	if a.cfg.Redis.Host == "" {
		slog.Info("no redis configured, running without cache")
		return noop.NewCache()
	}

	options := &redisPack.Options{
		Addr:     a.cfg.Redis.Host,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	}

	cache, err := redisCache.InitCache(ctx, options, a.cfg.Aggregator.CacheTTL)
	if err != nil {
		slog.Warn("Failed to initialize Redis cache, running without cache", "error", err)
		return noop.NewCache()
	}

	return cache
}

func (a *App) initProviders(reg *registry.Registry) []service.Provider {
	return []service.Provider{
		openerapi.New(a.cfg.Providers.OpenERAPIURL, a.cfg.Providers.Timeout),
		cryptocompare.New(a.cfg.Providers.CryptoCompareURL, reg.Codes(), a.cfg.Providers.Timeout),
	}
}
