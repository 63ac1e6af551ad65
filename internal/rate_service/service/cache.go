package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/internal/entities"
)

// Cache is a best-effort acceleration layer, never a correctness
// dependency. Implementations must degrade to no-ops (writes) or misses
// (reads) when the backend is unreachable; no cache error ever reaches a
// caller.
type Cache interface {
	// Store writes all target rates for one base currency as a single
	// TTL-bounded record.
	Store(ctx context.Context, base entities.CurrencyCode, rates map[entities.CurrencyCode]decimal.Decimal)

	Get(ctx context.Context, base, target entities.CurrencyCode) (decimal.Decimal, bool)

	GetAll(ctx context.Context, base entities.CurrencyCode) map[entities.CurrencyCode]decimal.Decimal

	Evict(ctx context.Context, base entities.CurrencyCode)

	EvictAll(ctx context.Context)

	IsAvailable(ctx context.Context) bool
}
