package public

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/deploy/config"
	"github.com/ratefeed/ratefeed/internal/entities"
	mwLogger "github.com/ratefeed/ratefeed/internal/rate_service/ports/http/public/middleware/logger"
)

type Server struct {
	Server    *http.Server
	cfg       *config.Config
	rates     RateReader
	trends    TrendComputer
	refresher Refresher
}

func NewServer(server *http.Server, cfg *config.Config, rates RateReader, trends TrendComputer, refresher Refresher) *Server {
	return &Server{
		Server:    server,
		cfg:       cfg,
		rates:     rates,
		trends:    trends,
		refresher: refresher,
	}
}

func StartServer(ctx context.Context, rates RateReader, trends TrendComputer, refresher Refresher, cfg *config.Config) <-chan struct{} {

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mwLogger.New())
	r.Use(middleware.Recoverer)

	serverConfig := &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      r,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	server := NewServer(serverConfig, cfg, rates, trends, refresher)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", server.Healthz)
	r.Get("/rates/{base}", server.GetRatesByBase)
	r.Get("/rates/{base}/{target}", server.GetRateByPair)
	r.Get("/convert", server.Convert)
	r.Get("/trend/{base}/{target}", server.GetTrend)
	r.Post("/refresh", server.Refresh)

	doneChan := make(chan struct{})

	go func() {
		if err := server.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to stop server", "error", err)
		}

		close(doneChan)
	}()

	return doneChan
}

type RateResponse struct {
	Base      string          `json:"base"`
	Target    string          `json:"target"`
	Rate      decimal.Decimal `json:"rate"`
	Timestamp time.Time       `json:"timestamp"`
	Provider  string          `json:"provider"`
}

type ConversionResponse struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Rate   decimal.Decimal `json:"rate"`
	Result decimal.Decimal `json:"result"`
}

type TrendResponse struct {
	Base          string          `json:"base"`
	Target        string          `json:"target"`
	Period        string          `json:"period"`
	ChangePercent decimal.Decimal `json:"change_percent"`
}

type RefreshResponse struct {
	Updated int `json:"updated"`
}

func (s *Server) GetRateByPair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	base, err := entities.ParseCurrencyCode(chi.URLParam(r, "base"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	target, err := entities.ParseCurrencyCode(chi.URLParam(r, "target"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	rate, err := s.rates.GetRate(ctx, base, target)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, rateResponse(rate))
}

func (s *Server) GetRatesByBase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	base, err := entities.ParseCurrencyCode(chi.URLParam(r, "base"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	rates, err := s.rates.GetRates(ctx, base)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response := make([]RateResponse, len(rates))
	for i, rate := range rates {
		response[i] = rateResponse(&rate)
	}

	RespondWithJSON(w, http.StatusOK, response)
}

func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, err := entities.ParseCurrencyCode(r.URL.Query().Get("from"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	to, err := entities.ParseCurrencyCode(r.URL.Query().Get("to"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	conversion, err := s.rates.Convert(ctx, amount, from, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, ConversionResponse{
		From:   conversion.From.String(),
		To:     conversion.To.String(),
		Amount: conversion.Amount,
		Rate:   conversion.Rate,
		Result: conversion.Result,
	})
}

func (s *Server) GetTrend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	base, err := entities.ParseCurrencyCode(chi.URLParam(r, "base"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	target, err := entities.ParseCurrencyCode(chi.URLParam(r, "target"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	period := r.URL.Query().Get("period")

	change, err := s.trends.Trend(ctx, base, target, period)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, TrendResponse{
		Base:          base.String(),
		Target:        target.String(),
		Period:        period,
		ChangePercent: change,
	})
}

func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	updated, err := s.refresher.Refresh(ctx)
	if err != nil {
		slog.Error("manual refresh failed", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "refresh failed")
		return
	}

	RespondWithJSON(w, http.StatusOK, RefreshResponse{Updated: updated})
}

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func rateResponse(rate *entities.ReconciledRate) RateResponse {
	return RateResponse{
		Base:      rate.Base.String(),
		Target:    rate.Target.String(),
		Rate:      rate.Rate,
		Timestamp: rate.Timestamp,
		Provider:  rate.Provider,
	}
}

// respondServiceError maps the typed service conditions onto status codes:
// caller input faults are 400s, missing data and thin history are 404s,
// anything else is a 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrInvalidPeriod),
		errors.Is(err, entities.ErrInvalidCurrency),
		errors.Is(err, entities.ErrInvalidAmount):
		RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrRateNotFound):
		RespondWithError(w, http.StatusNotFound, "rate not found")
	case errors.Is(err, entities.ErrInsufficientHistory):
		RespondWithError(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("request failed", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "internal error")
	}
}

func RespondWithJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string, details ...string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)

	errorText := message
	if len(details) > 0 {
		errorText += "\nDetails: " + details[0]
	}

	if _, err := w.Write([]byte(errorText)); err != nil {
		slog.Error("Failed to write error response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
