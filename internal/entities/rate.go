package entities

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// AggregatedProvider tags rates produced by reconciling several provider quotes.
const AggregatedProvider = "aggregated"

// RateQuote is a single provider's answer for one pair. It lives only for
// the duration of one aggregation pass.
type RateQuote struct {
	Base     CurrencyCode
	Target   CurrencyCode
	Rate     decimal.Decimal
	Provider string
}

// ReconciledRate is the winning rate for a pair at a point in time.
// Immutable once created; a newer rate is always a new history entry.
type ReconciledRate struct {
	Base      CurrencyCode
	Target    CurrencyCode
	Rate      decimal.Decimal
	Timestamp time.Time
	Provider  string
}

func NewReconciledRate(base, target CurrencyCode, rate decimal.Decimal, ts time.Time) (*ReconciledRate, error) {
	if !rate.IsPositive() {
		return nil, errors.Wrapf(ErrNonPositiveRate, "%s/%s: %s", base, target, rate)
	}

	return &ReconciledRate{
		Base:      base,
		Target:    target,
		Rate:      rate,
		Timestamp: ts,
		Provider:  AggregatedProvider,
	}, nil
}
