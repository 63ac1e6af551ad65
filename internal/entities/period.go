package entities

import (
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

type PeriodUnit int

const (
	_ PeriodUnit = iota
	Hour
	Day
	Month
	Year
)

func (u PeriodUnit) String() string {
	return [...]string{"", "hour", "day", "month", "year"}[u]
}

// DefaultMinTrendHours is the floor for H-unit periods. Trends over shorter
// windows are too noisy to be meaningful.
const DefaultMinTrendHours = 12

// PeriodSpec is a parsed trend period such as "12H", "7D", "3M" or "1Y".
type PeriodSpec struct {
	Amount int
	Unit   PeriodUnit
}

var periodRe = regexp.MustCompile(`(?i)^(\d+)([HDMY])$`)

// ParsePeriod parses "<positive integer><unit>" with unit one of H, D, M, Y
// (case-insensitive). Hour periods below minHours are rejected.
func ParsePeriod(s string, minHours int) (PeriodSpec, error) {
	m := periodRe.FindStringSubmatch(s)
	if m == nil {
		return PeriodSpec{}, errors.Wrapf(ErrInvalidPeriod, "%q", s)
	}

	amount, err := strconv.Atoi(m[1])
	if err != nil || amount <= 0 {
		return PeriodSpec{}, errors.Wrapf(ErrInvalidPeriod, "%q", s)
	}

	var unit PeriodUnit
	switch m[2][0] {
	case 'H', 'h':
		unit = Hour
	case 'D', 'd':
		unit = Day
	case 'M', 'm':
		unit = Month
	case 'Y', 'y':
		unit = Year
	}

	if unit == Hour && amount < minHours {
		return PeriodSpec{}, errors.Wrapf(ErrInvalidPeriod, "%q: hour periods below %dH are rejected", s, minHours)
	}

	return PeriodSpec{Amount: amount, Unit: unit}, nil
}

// Window derives the [start, end] interval covered by the period. Hours and
// days are fixed-duration; months and years use calendar-aware subtraction.
func (p PeriodSpec) Window(end time.Time) (time.Time, time.Time) {
	var start time.Time

	switch p.Unit {
	case Hour:
		start = end.Add(-time.Duration(p.Amount) * time.Hour)
	case Day:
		start = end.Add(-time.Duration(p.Amount) * 24 * time.Hour)
	case Month:
		start = end.AddDate(0, -p.Amount, 0)
	case Year:
		start = end.AddDate(-p.Amount, 0, 0)
	}

	return start, end
}
