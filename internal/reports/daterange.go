package reports

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

const maxRangeAhead = 365 * 24 * time.Hour

var ErrInvalidRange = errors.New("invalid_date_range")

type RangeError struct{ Message string }

func (e *RangeError) Error() string { return e.Message }

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

// ResolveRange fills empty bounds with today and checks the range.
func ResolveRange(from, to string, today time.Time) (string, string, error) {
	day := today.Format(DateLayout)
	if from == "" {
		from = day
	}
	if to == "" {
		to = day
	}
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return "", "", &RangeError{Message: "Invalid date format"}
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return "", "", &RangeError{Message: "Invalid date format"}
	}
	if f.After(t) {
		return "", "", &RangeError{Message: "From date cannot be after to date"}
	}
	base, _ := time.Parse(DateLayout, day)
	if t.Sub(base) > maxRangeAhead {
		return "", "", &RangeError{Message: "Date range cannot exceed 1 year"}
	}
	return from, to, nil
}

func FormatCurrency(amount float64) string {
	return fmt.Sprintf("Br. %.2f", amount)
}
