package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/deploy/config"
	"github.com/ratefeed/ratefeed/internal/entities"
	"github.com/ratefeed/ratefeed/internal/rate_service/metrics"
	"github.com/ratefeed/ratefeed/internal/registry"
)

type providerStub struct {
	name      string
	available bool
	rates     map[entities.CurrencyCode]map[entities.CurrencyCode]decimal.Decimal
	err       error
}

func (p *providerStub) FetchLatestRates(ctx context.Context, base entities.CurrencyCode) (map[entities.CurrencyCode]decimal.Decimal, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.rates[base], nil
}

func (p *providerStub) FetchHistoricalRate(ctx context.Context, base, target entities.CurrencyCode, date time.Time) (decimal.Decimal, error) {
	return decimal.Zero, entities.ErrRateNotFound
}

func (p *providerStub) IsAvailable(ctx context.Context) bool {
	return p.available
}

func (p *providerStub) Name() string {
	return p.name
}

type storageStub struct {
	insertFn    func(ctx context.Context, rate *entities.ReconciledRate) error
	latestFn    func(ctx context.Context, base, target entities.CurrencyCode) (*entities.ReconciledRate, error)
	latestAllFn func(ctx context.Context, base entities.CurrencyCode) ([]entities.ReconciledRate, error)
	windowFn    func(ctx context.Context, base, target entities.CurrencyCode, from, to time.Time) ([]entities.ReconciledRate, error)
}

func (s *storageStub) InsertRate(ctx context.Context, rate *entities.ReconciledRate) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, rate)
	}
	return nil
}

func (s *storageStub) LatestRate(ctx context.Context, base, target entities.CurrencyCode) (*entities.ReconciledRate, error) {
	if s.latestFn != nil {
		return s.latestFn(ctx, base, target)
	}
	return nil, entities.ErrRateNotFound
}

func (s *storageStub) LatestRates(ctx context.Context, base entities.CurrencyCode) ([]entities.ReconciledRate, error) {
	if s.latestAllFn != nil {
		return s.latestAllFn(ctx, base)
	}
	return nil, nil
}

func (s *storageStub) RatesInWindow(ctx context.Context, base, target entities.CurrencyCode, from, to time.Time) ([]entities.ReconciledRate, error) {
	if s.windowFn != nil {
		return s.windowFn(ctx, base, target, from, to)
	}
	return nil, nil
}

type storedEntry struct {
	base  entities.CurrencyCode
	rates map[entities.CurrencyCode]decimal.Decimal
}

type cacheStub struct {
	getFn         func(base, target entities.CurrencyCode) (decimal.Decimal, bool)
	getAllFn      func(base entities.CurrencyCode) map[entities.CurrencyCode]decimal.Decimal
	stored        []storedEntry
	evictCalls    []entities.CurrencyCode
	evictAllCalls int
	available     bool
}

func (c *cacheStub) Store(ctx context.Context, base entities.CurrencyCode, rates map[entities.CurrencyCode]decimal.Decimal) {
	c.stored = append(c.stored, storedEntry{base: base, rates: rates})
}

func (c *cacheStub) Get(ctx context.Context, base, target entities.CurrencyCode) (decimal.Decimal, bool) {
	if c.getFn != nil {
		return c.getFn(base, target)
	}
	return decimal.Zero, false
}

func (c *cacheStub) GetAll(ctx context.Context, base entities.CurrencyCode) map[entities.CurrencyCode]decimal.Decimal {
	if c.getAllFn != nil {
		return c.getAllFn(base)
	}
	return nil
}

func (c *cacheStub) Evict(ctx context.Context, base entities.CurrencyCode) {
	c.evictCalls = append(c.evictCalls, base)
}

func (c *cacheStub) EvictAll(ctx context.Context) {
	c.evictAllCalls++
}

func (c *cacheStub) IsAvailable(ctx context.Context) bool {
	return c.available
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func newTestRegistry(t *testing.T, codes ...string) *registry.Registry {
	t.Helper()

	reg, err := registry.New(codes)
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return reg
}

func newTestConfig() *config.Config {
	return &config.Config{
		Aggregator: config.Aggregator{
			Workers:       5,
			FetchTimeout:  time.Second,
			CacheTTL:      2 * time.Hour,
			MinTrendHours: 12,
		},
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
