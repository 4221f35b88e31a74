// Package stats aggregates orders, revenue and sign-ups for the admin
// dashboard.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/example/rentalshop/pkg/models"
	"github.com/example/rentalshop/pkg/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

const (
	seriesLength = 12
	topProducts  = 5
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	case "":
		return PeriodMonth, nil
	}
	return "", apperr.Validation("Invalid period, expected one of day, week, month, year")
}

// sqliteISOWeek labels a row with the ISO year and week of the Thursday in
// its Monday-start week, matching %x-W%v on mysql and IYYY-"W"IW on postgres.
const sqliteISOWeek = "strftime('%Y', date(orders.created_at, '-3 days', 'weekday 4')) || '-W' || " +
	"printf('%02d', (strftime('%j', date(orders.created_at, '-3 days', 'weekday 4')) - 1) / 7 + 1)"

// bucketExprs holds the date grouping expression for orders.created_at per
// dialect and period.
var bucketExprs = map[string]map[Period]string{
	"sqlite": {
		PeriodDay:   "strftime('%Y-%m-%d', orders.created_at)",
		PeriodWeek:  sqliteISOWeek,
		PeriodMonth: "strftime('%Y-%m', orders.created_at)",
		PeriodYear:  "strftime('%Y', orders.created_at)",
	},
	"mysql": {
		PeriodDay:   "DATE_FORMAT(orders.created_at, '%Y-%m-%d')",
		PeriodWeek:  "DATE_FORMAT(orders.created_at, '%x-W%v')",
		PeriodMonth: "DATE_FORMAT(orders.created_at, '%Y-%m')",
		PeriodYear:  "DATE_FORMAT(orders.created_at, '%Y')",
	},
	"postgres": {
		PeriodDay:   "to_char(orders.created_at, 'YYYY-MM-DD')",
		PeriodWeek:  "to_char(orders.created_at, 'IYYY-\"W\"IW')",
		PeriodMonth: "to_char(orders.created_at, 'YYYY-MM')",
		PeriodYear:  "to_char(orders.created_at, 'YYYY')",
	},
}

func bucketExpr(dialect string, p Period) (string, error) {
	expr, ok := bucketExprs[dialect][p]
	if !ok {
		return "", fmt.Errorf("no date grouping for dialect %q period %q", dialect, p)
	}
	return expr, nil
}

// Window is the half-open interval [From, To).
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func periodStart(t time.Time, p Period) time.Time {
	day := pricing.StartOfDay(t)
	switch p {
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	case PeriodYear:
		return time.Date(day.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

func shift(t time.Time, p Period, n int) time.Time {
	switch p {
	case PeriodWeek:
		return t.AddDate(0, 0, 7*n)
	case PeriodMonth:
		return t.AddDate(0, n, 0)
	case PeriodYear:
		return t.AddDate(n, 0, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

// Windows returns the period containing now and the one before it.
func Windows(now time.Time, p Period) (current, previous Window) {
	start := periodStart(now, p)
	current = Window{From: start, To: shift(start, p, 1)}
	previous = Window{From: shift(start, p, -1), To: start}
	return current, previous
}

type Totals struct {
	Orders   int64           `json:"orders"`
	Revenue  decimal.Decimal `json:"revenue"`
	NewUsers int64           `json:"new_users"`
}

type Bucket struct {
	Bucket  string          `json:"bucket"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ProductRevenue struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type Summary struct {
	Period         Period           `json:"period"`
	CurrentWindow  Window           `json:"current_window"`
	PreviousWindow Window           `json:"previous_window"`
	Current        Totals           `json:"current"`
	Previous       Totals           `json:"previous"`
	ByStatus       map[string]int64 `json:"by_status"`
	Series         []Bucket         `json:"series"`
	TopProducts    []ProductRevenue `json:"top_products"`
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Summary aggregates the dashboard figures for period. Revenue ignores
// cancelled orders.
func (s *Service) Summary(ctx context.Context, p Period) (*Summary, error) {
	expr, err := bucketExpr(s.db.Dialector.Name(), p)
	if err != nil {
		return nil, apperr.Internal("Unsupported database for statistics", err)
	}

	db := s.db.WithContext(ctx)
	current, previous := Windows(s.now().UTC(), p)
	out := &Summary{
		Period:         p,
		CurrentWindow:  current,
		PreviousWindow: previous,
		ByStatus:       make(map[string]int64),
	}

	if out.Current, err = totals(db, current); err != nil {
		return nil, err
	}
	if out.Previous, err = totals(db, previous); err != nil {
		return nil, err
	}
	if err := byStatus(db, out.ByStatus); err != nil {
		return nil, err
	}

	seriesFrom := shift(current.From, p, -(seriesLength - 1))
	if out.Series, err = series(db, expr, Window{From: seriesFrom, To: current.To}); err != nil {
		return nil, err
	}
	if out.TopProducts, err = top(db, Window{From: seriesFrom, To: current.To}); err != nil {
		return nil, err
	}
	return out, nil
}

func revenueQuery(db *gorm.DB, w Window) *gorm.DB {
	return db.Table("order_items").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ?", models.OrderStatusCancelled).
		Where("orders.created_at >= ? AND orders.created_at < ?", w.From, w.To)
}

func totals(db *gorm.DB, w Window) (Totals, error) {
	var t Totals
	if err := db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", w.From, w.To).
		Count(&t.Orders).Error; err != nil {
		return t, apperr.Internal("Failed to count orders", err)
	}

	var row struct{ Revenue decimal.NullDecimal }
	if err := revenueQuery(db, w).
		Select("SUM(order_items.total_price) AS revenue").
		Scan(&row).Error; err != nil {
		return t, apperr.Internal("Failed to sum revenue", err)
	}
	t.Revenue = row.Revenue.Decimal

	if err := db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", w.From, w.To).
		Count(&t.NewUsers).Error; err != nil {
		return t, apperr.Internal("Failed to count users", err)
	}
	return t, nil
}

func byStatus(db *gorm.DB, into map[string]int64) error {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return apperr.Internal("Failed to count orders by status", err)
	}
	for _, r := range rows {
		into[r.Status] = r.Count
	}
	return nil
}

func series(db *gorm.DB, expr string, w Window) ([]Bucket, error) {
	var rows []struct {
		Bucket  string
		Orders  int64
		Revenue decimal.NullDecimal
	}
	if err := revenueQuery(db, w).
		Select(expr + " AS bucket, COUNT(DISTINCT orders.id) AS orders, SUM(order_items.total_price) AS revenue").
		Group("bucket").
		Order("bucket ASC").
		Scan(&rows).Error; err != nil {
		return nil, apperr.Internal("Failed to build revenue series", err)
	}

	out := make([]Bucket, 0, len(rows))
	for _, r := range rows {
		out = append(out, Bucket{Bucket: r.Bucket, Orders: r.Orders, Revenue: r.Revenue.Decimal})
	}
	return out, nil
}

func top(db *gorm.DB, w Window) ([]ProductRevenue, error) {
	var rows []struct {
		ProductID   uint
		ProductName string
		Quantity    int64
		Revenue     decimal.NullDecimal
	}
	if err := revenueQuery(db, w).
		Select("order_items.product_id, order_items.product_name, SUM(order_items.quantity) AS quantity, SUM(order_items.total_price) AS revenue").
		Group("order_items.product_id, order_items.product_name").
		Order("revenue DESC").
		Limit(topProducts).
		Scan(&rows).Error; err != nil {
		return nil, apperr.Internal("Failed to rank products", err)
	}

	out := make([]ProductRevenue, 0, len(rows))
	for _, r := range rows {
		out = append(out, ProductRevenue{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			Revenue:     r.Revenue.Decimal,
		})
	}
	return out, nil
}
