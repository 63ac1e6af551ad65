package entities

import "errors"

var (
	ErrRateNotFound        = errors.New("rate not found")
	ErrInsufficientHistory = errors.New("not enough history to compute a trend")
	ErrInvalidPeriod       = errors.New("invalid period")
	ErrInvalidCurrency     = errors.New("invalid currency code")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrNonPositiveRate     = errors.New("rate must be positive")
)
