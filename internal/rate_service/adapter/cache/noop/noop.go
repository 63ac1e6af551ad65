package noop

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/internal/entities"
)

// Cache satisfies the cache port when no cache backend is configured:
// writes vanish, reads miss. Retrieval then always falls through to the
// durable store, which is correct by contract, just slower.
type Cache struct{}

func NewCache() *Cache {
	return &Cache{}
}

func (*Cache) Store(ctx context.Context, base entities.CurrencyCode, rates map[entities.CurrencyCode]decimal.Decimal) {
}

func (*Cache) Get(ctx context.Context, base, target entities.CurrencyCode) (decimal.Decimal, bool) {
	return decimal.Zero, false
}

func (*Cache) GetAll(ctx context.Context, base entities.CurrencyCode) map[entities.CurrencyCode]decimal.Decimal {
	return nil
}

func (*Cache) Evict(ctx context.Context, base entities.CurrencyCode) {}

func (*Cache) EvictAll(ctx context.Context) {}

func (*Cache) IsAvailable(ctx context.Context) bool {
	return false
}
