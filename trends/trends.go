// Package trends derives month-over-month and category trends and spending
// patterns from the classified ledger.
package trends

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/finboard/classifier"
	"github.com/robinvdvleuten/finboard/hledger"
)

// DefaultMonths is the number of months analysed when none is given.
const DefaultMonths = 12

// changeThreshold is the percentage change beyond which a series is no
// longer considered stable.
var changeThreshold = decimal.NewFromInt(10)

var hundred = decimal.NewFromInt(100)

// Direction is the overall movement of a series.
type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
	Stable     Direction = "stable"
)

// Point is the income and expense total of one month.
type Point struct {
	Month       string          `json:"month"`
	Income      decimal.Decimal `json:"income"`
	Expenses    decimal.Decimal `json:"expenses"`
	Savings     decimal.Decimal `json:"savings"`
	SavingsRate decimal.Decimal `json:"savingsRate"`
}

func sumByMonth(series []hledger.MonthAmount) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(series))
	for _, m := range series {
		totals[m.Month] = totals[m.Month].Add(m.Amount)
	}
	return totals
}

// MonthlyTrends merges the income and expense series into one point per
// month, ascending. A month missing from one series counts as zero there.
func MonthlyTrends(income, expenses []hledger.MonthAmount) []Point {
	incomes := sumByMonth(income)
	spent := sumByMonth(expenses)

	months := maps.Keys(incomes)
	for m := range spent {
		if _, ok := incomes[m]; !ok {
			months = append(months, m)
		}
	}
	slices.Sort(months)

	points := make([]Point, 0, len(months))
	for _, month := range months {
		in, out := incomes[month], spent[month]
		savings := in.Sub(out)

		rate := decimal.Zero
		if in.IsPositive() {
			rate = savings.Div(in).Mul(hundred).Round(2)
		}

		points = append(points, Point{
			Month:       month,
			Income:      in,
			Expenses:    out,
			Savings:     savings,
			SavingsRate: rate,
		})
	}
	return points
}

// Window keeps the last n points. n <= 0 keeps everything.
func Window(points []Point, n int) []Point {
	if n <= 0 || len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}

// Period describes the analysed range.
type Period struct {
	Months int    `json:"months"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

// NewPeriod returns the period covered by points.
func NewPeriod(months int, points []Point) Period {
	p := Period{Months: months}
	if len(points) > 0 {
		p.From = points[0].Month
		p.To = points[len(points)-1].Month
	}
	return p
}

func average(amounts []decimal.Decimal) decimal.Decimal {
	if len(amounts) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(decimal.Zero, amounts...).Div(decimal.NewFromInt(int64(len(amounts))))
}

// CalculateTrend compares the average of the first half of amounts with the
// average of the second half. The midpoint is len/2 rounded down, so the
// second half holds the extra element of an odd-length series.
func CalculateTrend(amounts []decimal.Decimal) Direction {
	if len(amounts) < 2 {
		return Stable
	}

	mid := len(amounts) / 2
	first, second := average(amounts[:mid]), average(amounts[mid:])

	if first.IsZero() {
		if second.IsPositive() {
			return Increasing
		}
		return Stable
	}

	change := second.Sub(first).Div(first).Mul(hundred)
	switch {
	case change.GreaterThan(changeThreshold):
		return Increasing
	case change.LessThan(changeThreshold.Neg()):
		return Decreasing
	default:
		return Stable
	}
}

// Category is the monthly history of one expense category.
type Category struct {
	Category string                `json:"category"`
	Months   []hledger.MonthAmount `json:"months"`
	Average  decimal.Decimal       `json:"average"`
	Trend    Direction             `json:"trend"`
	Min      decimal.Decimal       `json:"min"`
	Max      decimal.Decimal       `json:"max"`
}

// CategoryTrend summarises the non-zero months of a category. It reports
// false when the category has no activity.
func CategoryTrend(category string, months []hledger.MonthAmount) (Category, bool) {
	var (
		active  []hledger.MonthAmount
		amounts []decimal.Decimal
	)
	for _, m := range months {
		if m.Amount.IsZero() {
			continue
		}
		amount := m.Amount.Abs()
		active = append(active, hledger.MonthAmount{Month: m.Month, Amount: amount})
		amounts = append(amounts, amount)
	}
	if len(amounts) == 0 {
		return Category{}, false
	}

	return Category{
		Category: category,
		Months:   active,
		Average:  average(amounts).Round(2),
		Trend:    CalculateTrend(amounts),
		Min:      decimal.Min(amounts[0], amounts[1:]...),
		Max:      decimal.Max(amounts[0], amounts[1:]...),
	}, true
}

// DayOfMonth is the spending recorded on one day of the month.
type DayOfMonth struct {
	Day               int             `json:"day"`
	AverageSpending   decimal.Decimal `json:"averageSpending"`
	TotalTransactions int             `json:"totalTransactions"`
}

// DayOfWeek is the spending recorded on one weekday.
type DayOfWeek struct {
	Day               string          `json:"day"`
	AverageSpending   decimal.Decimal `json:"averageSpending"`
	TotalSpending     decimal.Decimal `json:"totalSpending"`
	TotalTransactions int             `json:"totalTransactions"`
}

// Patterns buckets expense rows by day of month and weekday.
type Patterns struct {
	ByDayOfMonth []DayOfMonth `json:"byDayOfMonth"`
	ByDayOfWeek  []DayOfWeek  `json:"byDayOfWeek"`
}

type bucket struct {
	total decimal.Decimal
	count int
}

func (b bucket) average() decimal.Decimal {
	if b.count == 0 {
		return decimal.Zero
	}
	return b.total.Div(decimal.NewFromInt(int64(b.count))).Round(2)
}

// SpendingPatterns accumulates expense rows into 31 day-of-month and 7
// weekday buckets (Sunday first). Income rows and rows with an unparseable
// date are ignored.
func SpendingPatterns(rows []classifier.Transaction) Patterns {
	var (
		days     [31]bucket
		weekdays [7]bucket
	)

	for _, row := range rows {
		if row.Type != classifier.TypeExpense {
			continue
		}
		date, err := time.Parse(time.DateOnly, row.Date)
		if err != nil {
			continue
		}

		d := &days[date.Day()-1]
		d.total = d.total.Add(row.Amount)
		d.count++

		w := &weekdays[date.Weekday()]
		w.total = w.total.Add(row.Amount)
		w.count++
	}

	patterns := Patterns{
		ByDayOfMonth: make([]DayOfMonth, 0, len(days)),
		ByDayOfWeek:  make([]DayOfWeek, 0, len(weekdays)),
	}
	for i, b := range days {
		patterns.ByDayOfMonth = append(patterns.ByDayOfMonth, DayOfMonth{
			Day:               i + 1,
			AverageSpending:   b.average(),
			TotalTransactions: b.count,
		})
	}
	for i, b := range weekdays {
		patterns.ByDayOfWeek = append(patterns.ByDayOfWeek, DayOfWeek{
			Day:               time.Weekday(i).String(),
			AverageSpending:   b.average(),
			TotalSpending:     b.total.Round(2),
			TotalTransactions: b.count,
		})
	}
	return patterns
}

// Change compares a figure between two months.
type Change struct {
	Current       decimal.Decimal `json:"current"`
	Previous      decimal.Decimal `json:"previous"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
}

func newChange(current, previous decimal.Decimal) Change {
	c := Change{
		Current:  current,
		Previous: previous,
		Change:   current.Sub(previous),
	}
	if previous.IsPositive() {
		c.ChangePercent = c.Change.Div(previous).Mul(hundred).Round(2)
	}
	return c
}

// SavingsChange compares savings between two months.
type SavingsChange struct {
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
	Change   decimal.Decimal `json:"change"`
}

// Comparison compares the latest month with the one before.
type Comparison struct {
	CurrentMonth  string        `json:"currentMonth"`
	PreviousMonth string        `json:"previousMonth"`
	Income        Change        `json:"income"`
	Expenses      Change        `json:"expenses"`
	Savings       SavingsChange `json:"savings"`
}

// Compare compares the last two points. It returns nil when fewer than two
// months are available.
func Compare(points []Point) *Comparison {
	if len(points) < 2 {
		return nil
	}

	latest, previous := points[len(points)-1], points[len(points)-2]
	return &Comparison{
		CurrentMonth:  latest.Month,
		PreviousMonth: previous.Month,
		Income:        newChange(latest.Income, previous.Income),
		Expenses:      newChange(latest.Expenses, previous.Expenses),
		Savings: SavingsChange{
			Current:  latest.Savings,
			Previous: previous.Savings,
			Change:   latest.Savings.Sub(previous.Savings),
		},
	}
}
