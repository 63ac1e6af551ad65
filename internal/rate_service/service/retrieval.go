package service

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/internal/entities"
	"github.com/ratefeed/ratefeed/internal/rate_service/metrics"
)

// RetrievalService answers "what is the rate right now" with best latency:
// cache first, then the durable history with a best-effort cache
// write-back. Cache entries are never authoritative; the store is the
// source of truth on every miss.
type RetrievalService struct {
	storage Storage
	cache   Cache
	metrics *metrics.Metrics
}

func NewRetrievalService(storage Storage, cache Cache, m *metrics.Metrics) *RetrievalService {
	return &RetrievalService{
		storage: storage,
		cache:   cache,
		metrics: m,
	}
}

func (s *RetrievalService) GetRate(ctx context.Context, base, target entities.CurrencyCode) (*entities.ReconciledRate, error) {
	const op = "service.RetrievalService.GetRate"

	if rate, ok := s.cache.Get(ctx, base, target); ok {
		s.metrics.CacheHitsTotal.Inc()
		return &entities.ReconciledRate{
			Base:     base,
			Target:   target,
			Rate:     rate,
			Provider: entities.AggregatedProvider,
		}, nil
	}
	s.metrics.CacheMissesTotal.Inc()

	rate, err := s.storage.LatestRate(ctx, base, target)
	if err != nil {
		if errors.Is(err, entities.ErrRateNotFound) {
			return nil, entities.ErrRateNotFound
		}
		return nil, errors.Wrap(err, op)
	}

	// Opportunistic write-back; a failing cache stays silent by contract.
	s.cache.Store(ctx, base, map[entities.CurrencyCode]decimal.Decimal{target: rate.Rate})

	return rate, nil
}

func (s *RetrievalService) GetRates(ctx context.Context, base entities.CurrencyCode) ([]entities.ReconciledRate, error) {
	const op = "service.RetrievalService.GetRates"

	if cached := s.cache.GetAll(ctx, base); len(cached) > 0 {
		s.metrics.CacheHitsTotal.Inc()

		rates := make([]entities.ReconciledRate, 0, len(cached))
		for target, rate := range cached {
			rates = append(rates, entities.ReconciledRate{
				Base:     base,
				Target:   target,
				Rate:     rate,
				Provider: entities.AggregatedProvider,
			})
		}
		return rates, nil
	}
	s.metrics.CacheMissesTotal.Inc()

	rates, err := s.storage.LatestRates(ctx, base)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	if len(rates) == 0 {
		return nil, entities.ErrRateNotFound
	}

	writeBack := make(map[entities.CurrencyCode]decimal.Decimal, len(rates))
	for _, rate := range rates {
		writeBack[rate.Target] = rate.Rate
	}
	s.cache.Store(ctx, base, writeBack)

	return rates, nil
}

// Conversion is the outcome of converting an amount between two currencies.
type Conversion struct {
	From   entities.CurrencyCode
	To     entities.CurrencyCode
	Amount decimal.Decimal
	Rate   decimal.Decimal
	Result decimal.Decimal
}

// Convert applies the current rate to an amount. Same-currency conversions
// short-circuit with a rate of 1 before any retrieval happens.
func (s *RetrievalService) Convert(ctx context.Context, amount decimal.Decimal, from, to entities.CurrencyCode) (*Conversion, error) {
	const op = "service.RetrievalService.Convert"

	if !amount.IsPositive() {
		return nil, errors.Wrapf(entities.ErrInvalidAmount, "%s", amount)
	}

	rate := decimal.NewFromInt(1)
	if from != to {
		reconciled, err := s.GetRate(ctx, from, to)
		if err != nil {
			if errors.Is(err, entities.ErrRateNotFound) {
				return nil, entities.ErrRateNotFound
			}
			return nil, errors.Wrap(err, op)
		}
		rate = reconciled.Rate
	}

	result := amount.Mul(rate)

	slog.Debug("converted amount", "from", from, "to", to, "amount", amount, "rate", rate)

	return &Conversion{
		From:   from,
		To:     to,
		Amount: amount,
		Rate:   rate,
		Result: result,
	}, nil
}
