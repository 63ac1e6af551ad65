package cryptocompare_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/internal/entities"
	"github.com/ratefeed/ratefeed/internal/rate_service/adapter/provider/cryptocompare"
)

func TestFetchLatestRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/price" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("fsym"); got != "USD" {
			t.Errorf("unexpected fsym %q", got)
		}
		if got := r.URL.Query().Get("tsyms"); got != "EUR,GBP" {
			t.Errorf("unexpected tsyms %q", got)
		}
		_, _ = w.Write([]byte(`{"EUR": 0.87654321, "GBP": 0.8}`))
	}))
	defer srv.Close()

	targets := []entities.CurrencyCode{"USD", "EUR", "GBP"}
	client := cryptocompare.New(srv.URL, targets, 5*time.Second)

	rates, err := client.FetchLatestRates(context.Background(), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !rates["EUR"].Equal(decimal.RequireFromString("0.87654321")) {
		t.Fatalf("EUR rate lost precision: got %s", rates["EUR"])
	}
	if len(rates) != 2 {
		t.Fatalf("expected 2 rates, got %d", len(rates))
	}
}

func TestFetchLatestRatesNoTargetsBesidesBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected when the target list is empty")
	}))
	defer srv.Close()

	client := cryptocompare.New(srv.URL, []entities.CurrencyCode{"USD"}, 5*time.Second)

	rates, err := client.FetchLatestRates(context.Background(), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rates) != 0 {
		t.Fatalf("expected no rates, got %+v", rates)
	}
}

func TestFetchHistoricalRate(t *testing.T) {
	date := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/pricehistorical" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("ts"); got != "1709251200" {
			t.Errorf("unexpected ts %q", got)
		}
		_, _ = w.Write([]byte(`{"USD": {"EUR": 0.91}}`))
	}))
	defer srv.Close()

	client := cryptocompare.New(srv.URL, []entities.CurrencyCode{"USD", "EUR"}, 5*time.Second)

	rate, err := client.FetchHistoricalRate(context.Background(), "USD", "EUR", date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("0.91")) {
		t.Fatalf("unexpected rate: %s", rate)
	}
}

func TestFetchHistoricalRateMissingPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"USD": {}}`))
	}))
	defer srv.Close()

	client := cryptocompare.New(srv.URL, []entities.CurrencyCode{"USD", "EUR"}, 5*time.Second)

	_, err := client.FetchHistoricalRate(context.Background(), "USD", "EUR", time.Now())
	if !errors.Is(err, entities.ErrRateNotFound) {
		t.Fatalf("expected ErrRateNotFound, got %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"EUR": 0.9}`))
	}))
	defer srv.Close()

	client := cryptocompare.New(srv.URL, []entities.CurrencyCode{"USD", "EUR"}, 5*time.Second)
	if !client.IsAvailable(context.Background()) {
		t.Fatal("expected a healthy endpoint to report available")
	}

	srv.Close()
	if client.IsAvailable(context.Background()) {
		t.Fatal("expected a closed endpoint to report unavailable")
	}
}
