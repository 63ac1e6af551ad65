package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/deploy/config"
	"github.com/ratefeed/ratefeed/internal/entities"
	"github.com/ratefeed/ratefeed/internal/rate_service/metrics"
	"github.com/ratefeed/ratefeed/internal/registry"
)

// Aggregator produces one winning rate per currency pair from several
// independent, partially-unreliable providers. The winning rate is the
// maximum quote across providers; on equal quotes the first one observed
// wins, which has no observable effect since the values are identical.
// The maximum policy favours the highest exchange multiplier per unit of
// base currency and is a deliberate product decision, not a derived one.
type Aggregator struct {
	providers    []Provider
	registry     *registry.Registry
	workers      int
	fetchTimeout time.Duration
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewAggregator(providers []Provider, reg *registry.Registry, cfg *config.Config, m *metrics.Metrics) *Aggregator {
	workers := cfg.Aggregator.Workers
	if workers < 1 {
		workers = 1
	}

	return &Aggregator{
		providers:    providers,
		registry:     reg,
		workers:      workers,
		fetchTimeout: cfg.Aggregator.FetchTimeout,
		metrics:      m,
		now:          time.Now,
	}
}

type fetchResult struct {
	provider string
	base     entities.CurrencyCode
	rates    map[entities.CurrencyCode]decimal.Decimal
}

// Aggregate fans out one fetch per (provider, base currency) across a
// bounded worker pool and blocks until every dispatched fetch has finished.
// Individual provider faults are absorbed as "no data"; pairs with no
// surviving quote are omitted from the result. An empty registry yields an
// empty result, not an error.
func (a *Aggregator) Aggregate(ctx context.Context) (map[entities.CurrencyCode]map[entities.CurrencyCode]entities.ReconciledRate, error) {
	const op = "service.Aggregator.Aggregate"

	result := make(map[entities.CurrencyCode]map[entities.CurrencyCode]entities.ReconciledRate)

	if a.registry.Len() == 0 {
		return result, nil
	}

	available := a.availableProviders(ctx)
	if len(available) == 0 {
		slog.Warn("no providers available, skipping aggregation cycle")
		return result, nil
	}

	bases := a.registry.Codes()

	type fetchJob struct {
		provider Provider
		base     entities.CurrencyCode
	}

	jobs := make(chan fetchJob)
	results := make(chan fetchResult, len(available)*len(bases))

	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				fctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
				rates, err := job.provider.FetchLatestRates(fctx, job.base)
				cancel()

				a.metrics.ProviderFetchesTotal.WithLabelValues(job.provider.Name()).Inc()

				if err != nil {
					a.metrics.ProviderFailuresTotal.WithLabelValues(job.provider.Name()).Inc()
					slog.Warn("provider fetch failed, treating as no data",
						"provider", job.provider.Name(), "base", job.base, "error", err)
					rates = nil
				}

				results <- fetchResult{provider: job.provider.Name(), base: job.base, rates: rates}
			}
		}()
	}

	for _, p := range available {
		for _, base := range bases {
			jobs <- fetchJob{provider: p, base: base}
		}
	}
	close(jobs)

	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	winners := a.reconcile(results)

	ts := a.now().UTC()
	for base, targets := range winners {
		for target, quote := range targets {
			rate, err := entities.NewReconciledRate(base, target, quote.Rate, ts)
			if err != nil {
				slog.Warn("dropping invalid winning quote", "base", base, "target", target, "error", err)
				continue
			}

			if _, ok := result[base]; !ok {
				result[base] = make(map[entities.CurrencyCode]entities.ReconciledRate)
			}
			result[base][target] = *rate
		}
	}

	return result, nil
}

// availableProviders filters providers to those reporting themselves up.
// A failing availability check excludes the provider from this cycle only.
func (a *Aggregator) availableProviders(ctx context.Context) []Provider {
	available := make([]Provider, 0, len(a.providers))

	for _, p := range a.providers {
		if !p.IsAvailable(ctx) {
			slog.Info("provider unavailable, excluded from cycle", "provider", p.Name())
			continue
		}
		available = append(available, p)
	}

	return available
}

// reconcile groups quotes by pair, drops targets the registry does not
// track, and keeps the maximum rate per pair.
func (a *Aggregator) reconcile(results <-chan fetchResult) map[entities.CurrencyCode]map[entities.CurrencyCode]entities.RateQuote {
	winners := make(map[entities.CurrencyCode]map[entities.CurrencyCode]entities.RateQuote)

	for res := range results {
		for target, rate := range res.rates {
			if target == res.base {
				continue
			}
			if !a.registry.Contains(target) {
				continue
			}
			if !rate.IsPositive() {
				slog.Warn("dropping non-positive quote",
					"provider", res.provider, "base", res.base, "target", target, "rate", rate)
				continue
			}

			current, ok := winners[res.base][target]
			if ok && !rate.GreaterThan(current.Rate) {
				continue
			}

			if _, ok := winners[res.base]; !ok {
				winners[res.base] = make(map[entities.CurrencyCode]entities.RateQuote)
			}
			winners[res.base][target] = entities.RateQuote{
				Base:     res.base,
				Target:   target,
				Rate:     rate,
				Provider: res.provider,
			}
		}
	}

	return winners
}
