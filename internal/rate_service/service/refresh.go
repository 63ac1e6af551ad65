package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/internal/entities"
	"github.com/ratefeed/ratefeed/internal/rate_service/metrics"
)

// Orchestrator drives one end-to-end refresh cycle: aggregate, append every
// reconciled pair to the history, then rebuild the cache wholesale. The
// scheduled loop and the administrative trigger both go through Refresh;
// there is no second code path.
type Orchestrator struct {
	aggregator *Aggregator
	storage    Storage
	cache      Cache
	metrics    *metrics.Metrics
}

func NewOrchestrator(aggregator *Aggregator, storage Storage, cache Cache, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		aggregator: aggregator,
		storage:    storage,
		cache:      cache,
		metrics:    m,
	}
}

// Refresh runs one cycle and returns the number of pairs written. An empty
// aggregation result is a legitimate outcome: zero updates, no store or
// cache side effects. A store write failure is fatal; rows already inserted
// stay in the append-only history. Cache rebuild failures never fail the
// refresh.
func (o *Orchestrator) Refresh(ctx context.Context) (int, error) {
	const op = "service.Orchestrator.Refresh"

	start := time.Now()

	reconciled, err := o.aggregator.Aggregate(ctx)
	if err != nil {
		o.metrics.RefreshFailuresTotal.Inc()
		return 0, errors.Wrap(err, op)
	}

	if len(reconciled) == 0 {
		slog.Info("refresh cycle produced no rates")
		return 0, nil
	}

	updated := 0
	for _, targets := range reconciled {
		for _, rate := range targets {
			rate := rate
			if err := o.storage.InsertRate(ctx, &rate); err != nil {
				o.metrics.RefreshFailuresTotal.Inc()
				return 0, errors.Wrap(err, op)
			}
			updated++
		}
	}

	// The cache is always rebuilt wholesale after a refresh so stale entries
	// cannot survive a partial update.
	o.cache.EvictAll(ctx)
	for base, targets := range reconciled {
		rates := make(map[entities.CurrencyCode]decimal.Decimal, len(targets))
		for target, rate := range targets {
			rates[target] = rate.Rate
		}
		o.cache.Store(ctx, base, rates)
	}

	o.metrics.RefreshCyclesTotal.Inc()
	o.metrics.PairsUpdatedTotal.Add(float64(updated))
	o.metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	slog.Info("refresh cycle complete", "pairs", updated, "duration", time.Since(start))

	return updated, nil
}

// Run invokes Refresh on every tick until the context is cancelled.
func (o *Orchestrator) Run(ctx context.Context, interval time.Duration) error {
	const op = "service.Orchestrator.Run"

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := o.Refresh(ctx); err != nil {
				slog.Error("scheduled refresh failed", "error", err)
			}
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), op)
		}
	}
}
