package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/internal/entities"
)

var hundred = decimal.NewFromInt(100)

// TrendAnalyzer computes the signed percentage change of a pair's rate over
// a named historical period, straight from the durable history.
type TrendAnalyzer struct {
	storage  Storage
	minHours int
	now      func() time.Time
}

func NewTrendAnalyzer(storage Storage, minHours int) *TrendAnalyzer {
	if minHours <= 0 {
		minHours = entities.DefaultMinTrendHours
	}

	return &TrendAnalyzer{
		storage:  storage,
		minHours: minHours,
		now:      time.Now,
	}
}

// Trend parses the period string, derives the [start, now] window and
// returns ((newest - oldest) / oldest) * 100 rounded to two decimal
// places. A window with exactly one entry yields 0.00; a window with no
// entries is an insufficient-history condition, distinct from an unknown
// pair or a malformed period.
func (t *TrendAnalyzer) Trend(ctx context.Context, base, target entities.CurrencyCode, period string) (decimal.Decimal, error) {
	const op = "service.TrendAnalyzer.Trend"

	spec, err := entities.ParsePeriod(period, t.minHours)
	if err != nil {
		return decimal.Zero, err
	}

	start, end := spec.Window(t.now().UTC())

	rates, err := t.storage.RatesInWindow(ctx, base, target, start, end)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, op)
	}

	if len(rates) == 0 {
		return decimal.Zero, errors.Wrapf(entities.ErrInsufficientHistory, "%s/%s over %s", base, target, period)
	}

	oldest := rates[0]
	newest := rates[len(rates)-1]

	change := newest.Rate.Sub(oldest.Rate).
		Div(oldest.Rate).
		Mul(hundred).
		Round(2)

	return change, nil
}
