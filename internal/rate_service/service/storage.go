package service

import (
	"context"
	"time"

	"github.com/ratefeed/ratefeed/internal/entities"
)

// Storage is the durable, append-only rate history. It is the source of
// truth whenever the cache cannot answer.
type Storage interface {
	InsertRate(ctx context.Context, rate *entities.ReconciledRate) error

	// LatestRate returns the most recent reconciled rate for the exact pair,
	// or entities.ErrRateNotFound.
	LatestRate(ctx context.Context, base, target entities.CurrencyCode) (*entities.ReconciledRate, error)

	// LatestRates returns the most recent reconciled rate per target for the
	// given base currency.
	LatestRates(ctx context.Context, base entities.CurrencyCode) ([]entities.ReconciledRate, error)

	// RatesInWindow returns all history entries for the pair with a timestamp
	// in [from, to], ordered ascending by time.
	RatesInWindow(ctx context.Context, base, target entities.CurrencyCode, from, to time.Time) ([]entities.ReconciledRate, error)
}
