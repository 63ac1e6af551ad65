package public

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/internal/entities"
	"github.com/ratefeed/ratefeed/internal/rate_service/service"
)

type RateReader interface {
	GetRate(ctx context.Context, base, target entities.CurrencyCode) (*entities.ReconciledRate, error)
	GetRates(ctx context.Context, base entities.CurrencyCode) ([]entities.ReconciledRate, error)
	Convert(ctx context.Context, amount decimal.Decimal, from, to entities.CurrencyCode) (*service.Conversion, error)
}

type TrendComputer interface {
	Trend(ctx context.Context, base, target entities.CurrencyCode, period string) (decimal.Decimal, error)
}

type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}
