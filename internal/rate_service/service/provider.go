package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/internal/entities"
)

// Provider is one external rate source. The core never depends on a
// provider's wire format; any transport or parse fault surfaces as an error
// and is absorbed by the aggregator as "no data for this cycle".
type Provider interface {
	// FetchLatestRates returns all target rates the provider quotes for the
	// given base currency.
	FetchLatestRates(ctx context.Context, base entities.CurrencyCode) (map[entities.CurrencyCode]decimal.Decimal, error)

	// FetchHistoricalRate returns the rate for a pair on a given date, or
	// entities.ErrRateNotFound when the provider has no data for it.
	FetchHistoricalRate(ctx context.Context, base, target entities.CurrencyCode, date time.Time) (decimal.Decimal, error)

	// IsAvailable is a fast provider-local health check. An unavailable
	// provider is skipped for the cycle, not an error.
	IsAvailable(ctx context.Context) bool

	Name() string
}
