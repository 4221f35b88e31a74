package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate("date", s)
	require.NoError(t, err)
	return d
}

func TestLineTotalExample(t *testing.T) {
	start := date(t, "2024-01-01")
	end := date(t, "2024-01-04")

	total := LineTotal(start, end, decimal.NewFromInt(20), 2)
	assert.Equal(t, int64(3), RentalDays(start, end))
	assert.True(t, total.Equal(decimal.NewFromInt(120)), total.String())
}

func TestRentalDaysRoundsPartialDaysUp(t *testing.T) {
	start := date(t, "2024-03-10T10:00:00Z")

	assert.Equal(t, int64(1), RentalDays(start, start.Add(time.Minute)))
	assert.Equal(t, int64(1), RentalDays(start, start.Add(24*time.Hour)))
	assert.Equal(t, int64(2), RentalDays(start, start.Add(24*time.Hour+time.Second)))
}

func TestLineTotalMonotonic(t *testing.T) {
	start := date(t, "2024-05-01")
	price := decimal.RequireFromString("12.50")

	prev := decimal.Zero
	for days := 1; days <= 10; days++ {
		for qty := 1; qty <= 5; qty++ {
			end := start.AddDate(0, 0, days)
			total := LineTotal(start, end, price, qty)

			want := price.Mul(decimal.NewFromInt(int64(days * qty)))
			assert.True(t, total.Equal(want), "days=%d qty=%d got %s", days, qty, total)

			more := LineTotal(start, end, price, qty+1)
			assert.True(t, more.GreaterThanOrEqual(total))
			longer := LineTotal(start, end.AddDate(0, 0, 1), price, qty)
			assert.True(t, longer.GreaterThanOrEqual(total))
		}
		single := LineTotal(start, start.AddDate(0, 0, days), price, 1)
		assert.True(t, single.GreaterThanOrEqual(prev))
		prev = single
	}
}

func TestParseDate(t *testing.T) {
	d := date(t, "2024-02-29")
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	d = date(t, "2024-02-29T12:30:00+02:00")
	assert.Equal(t, time.Date(2024, 2, 29, 10, 30, 0, 0, time.UTC), d)

	_, err := ParseDate("start_date", "29/02/2024")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = ParseDate("start_date", " ")
	assert.EqualError(t, err, "start_date is required")
}

func TestValidateRangeAndQuantity(t *testing.T) {
	start := date(t, "2024-01-02")
	assert.Error(t, ValidateRange(start, start))
	assert.Error(t, ValidateRange(start, start.Add(-time.Hour)))
	assert.NoError(t, ValidateRange(start, start.Add(time.Hour)))

	assert.Error(t, ValidateQuantity(0))
	assert.Error(t, ValidateQuantity(-3))
	assert.NoError(t, ValidateQuantity(1))
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2024, 7, 9, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}
