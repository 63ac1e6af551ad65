package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RefreshCyclesTotal    prometheus.Counter
	RefreshFailuresTotal  prometheus.Counter
	RefreshDuration       prometheus.Histogram
	PairsUpdatedTotal     prometheus.Counter
	ProviderFetchesTotal  *prometheus.CounterVec
	ProviderFailuresTotal *prometheus.CounterVec
	CacheHitsTotal        prometheus.Counter
	CacheMissesTotal      prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RefreshCyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "rate_refresh_cycles_total",
			Help: "Total number of completed rate refresh cycles",
		}),
		RefreshFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "rate_refresh_failures_total",
			Help: "Total number of refresh cycles that failed on persistence",
		}),
		RefreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rate_refresh_duration_seconds",
			Help:    "Duration of a full refresh cycle in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		PairsUpdatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "rate_pairs_updated_total",
			Help: "Total number of currency pairs written to the rate history",
		}),
		ProviderFetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_provider_fetches_total",
			Help: "Total number of provider fetch attempts",
		}, []string{"provider"}),
		ProviderFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_provider_failures_total",
			Help: "Total number of provider fetches absorbed as no-data",
		}, []string{"provider"}),
		CacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "rate_cache_hits_total",
			Help: "Total number of rate reads answered by the cache",
		}),
		CacheMissesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "rate_cache_misses_total",
			Help: "Total number of rate reads that fell through to the store",
		}),
	}
}
