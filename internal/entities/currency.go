package entities

import (
	"strings"

	"github.com/pkg/errors"
)

// CurrencyCode is a 3-letter ISO 4217 code, always stored uppercase.
type CurrencyCode string

func ParseCurrencyCode(s string) (CurrencyCode, error) {
	code := strings.ToUpper(strings.TrimSpace(s))

	if len(code) != 3 {
		return "", errors.Wrapf(ErrInvalidCurrency, "%q", s)
	}

	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", errors.Wrapf(ErrInvalidCurrency, "%q", s)
		}
	}

	return CurrencyCode(code), nil
}

func (c CurrencyCode) String() string {
	return string(c)
}
