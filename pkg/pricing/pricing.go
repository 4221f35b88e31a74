// Package pricing computes rental line totals and validates rental periods.
package pricing

import (
	"math"
	"strings"
	"time"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// RentalDays is the number of started days between start and end. Any part
// of a day counts as a full day. The caller guarantees end is after start.
func RentalDays(start, end time.Time) int64 {
	return int64(math.Ceil(float64(end.Sub(start)) / float64(day)))
}

// LineTotal is days × unit price × quantity.
func LineTotal(start, end time.Time, unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	days := decimal.NewFromInt(RentalDays(start, end))
	return days.Mul(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns UTC.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperr.Validation(field + " is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("Invalid " + field + ", expected YYYY-MM-DD")
}

// ValidateRange rejects periods whose end is not strictly after the start.
func ValidateRange(start, end time.Time) error {
	if !end.After(start) {
		return apperr.Validation("End date must be after start date")
	}
	return nil
}

// ValidateQuantity rejects anything below one.
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return apperr.Validation("Quantity must be a positive integer")
	}
	return nil
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
