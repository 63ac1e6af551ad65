package entities_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/internal/entities"
)

func TestParseCurrencyCode(t *testing.T) {
	testCases := []struct {
		input   string
		want    entities.CurrencyCode
		wantErr bool
	}{
		{input: "USD", want: "USD"},
		{input: "usd", want: "USD"},
		{input: " eur ", want: "EUR"},
		{input: "US", wantErr: true},
		{input: "USDT", wantErr: true},
		{input: "U$D", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			code, err := entities.ParseCurrencyCode(tc.input)

			if tc.wantErr {
				if !errors.Is(err, entities.ErrInvalidCurrency) {
					t.Fatalf("expected ErrInvalidCurrency for %q, got %v", tc.input, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.input, err)
			}
			if code != tc.want {
				t.Fatalf("got %q, want %q", code, tc.want)
			}
		})
	}
}

func TestNewReconciledRate(t *testing.T) {
	rate, err := entities.NewReconciledRate("USD", "EUR", decimal.RequireFromString("0.87"), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate.Provider != entities.AggregatedProvider {
		t.Fatalf("expected provider %q, got %q", entities.AggregatedProvider, rate.Provider)
	}

	if _, err := entities.NewReconciledRate("USD", "EUR", decimal.Zero, time.Now()); !errors.Is(err, entities.ErrNonPositiveRate) {
		t.Fatalf("expected ErrNonPositiveRate for zero rate, got %v", err)
	}

	if _, err := entities.NewReconciledRate("USD", "EUR", decimal.NewFromInt(-1), time.Now()); !errors.Is(err, entities.ErrNonPositiveRate) {
		t.Fatalf("expected ErrNonPositiveRate for negative rate, got %v", err)
	}
}
