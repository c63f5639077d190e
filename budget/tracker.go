package budget

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/finboard/ledger"
)

// DefaultTrackMonths is the number of months tracked when none is given.
const DefaultTrackMonths = 7

var hundred = decimal.NewFromInt(100)

// Status is the alert level of a tracking entry.
type Status string

const (
	StatusOK       Status = "ok"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Entry is the state of one budget in one month.
type Entry struct {
	BudgetID     string          `json:"budgetId"`
	Category     string          `json:"category"`
	BudgetAmount decimal.Decimal `json:"budgetAmount"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	Percentage   decimal.Decimal `json:"percentage"`
	Status       Status          `json:"status"`
}

// StatusCounts counts entries per status.
type StatusCounts struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	OK       int `json:"ok"`
}

// Summary aggregates the entries of a single month.
type Summary struct {
	Month             string          `json:"month"`
	TotalBudget       decimal.Decimal `json:"totalBudget"`
	TotalSpent        decimal.Decimal `json:"totalSpent"`
	TotalRemaining    decimal.Decimal `json:"totalRemaining"`
	OverallPercentage decimal.Decimal `json:"overallPercentage"`
	StatusCounts      StatusCounts    `json:"statusCounts"`
	Budgets           []Entry         `json:"budgets"`
}

// SpendingFunc returns the amount spent in a category during a month
// (YYYY-MM).
type SpendingFunc func(category, month string) decimal.Decimal

// MonthsToTrack returns the n calendar months ending at now's month, oldest
// first, formatted as YYYY-MM.
func MonthsToTrack(now time.Time, n int) []string {
	if n <= 0 {
		n = DefaultTrackMonths
	}

	months := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		m := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		months = append(months, m.Format("2006-01"))
	}
	return months
}

// Evaluate computes the tracking entry of budget b given the amount spent.
func Evaluate(b Budget, spent decimal.Decimal, display string) Entry {
	percentage := decimal.Zero
	if !b.Amount.IsZero() {
		percentage = spent.Div(b.Amount).Mul(hundred)
	}

	status := StatusOK
	switch {
	case percentage.GreaterThanOrEqual(b.Alerts.CriticalThreshold):
		status = StatusCritical
	case percentage.GreaterThanOrEqual(b.Alerts.WarningThreshold):
		status = StatusWarning
	}

	// A budget without thresholds stays ok until something is spent.
	if spent.IsZero() {
		status = StatusOK
	}

	return Entry{
		BudgetID:     b.ID,
		Category:     display,
		BudgetAmount: b.Amount,
		Spent:        spent.Round(2),
		Remaining:    b.Amount.Sub(spent).Round(2),
		Percentage:   percentage.Round(2),
		Status:       status,
	}
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithRoots sets the account roots used to render category names.
func WithRoots(roots ledger.Roots) TrackerOption {
	return func(t *Tracker) {
		t.roots = roots
	}
}

// Tracker compares spending against budgets.
type Tracker struct {
	spending SpendingFunc
	roots    ledger.Roots
}

// NewTracker returns a Tracker that looks spending up with fn.
func NewTracker(fn SpendingFunc, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		spending: fn,
		roots:    ledger.DefaultRoots(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track evaluates every budget for every month. The spending function is
// called once per (budget, month) pair.
func (t *Tracker) Track(budgets []Budget, months []string) map[string][]Entry {
	tracking := make(map[string][]Entry, len(months))
	for _, month := range months {
		entries := make([]Entry, 0, len(budgets))
		for _, b := range budgets {
			spent := t.spending(b.Category, month)
			entries = append(entries, Evaluate(b, spent, t.displayCategory(b.Category)))
		}
		tracking[month] = entries
	}
	return tracking
}

func (t *Tracker) displayCategory(category string) string {
	return ledger.DisplayPath(t.roots.StripRoot(category, ledger.AccountTypeExpenses))
}

// LatestMonth returns the most recent month present in tracking, or "" when
// tracking is empty.
func LatestMonth(tracking map[string][]Entry) string {
	months := maps.Keys(tracking)
	if len(months) == 0 {
		return ""
	}
	slices.Sort(months)
	return months[len(months)-1]
}

// Summarize totals the entries tracked for month.
func Summarize(tracking map[string][]Entry, month string) Summary {
	entries := tracking[month]
	summary := Summary{
		Month:   month,
		Budgets: entries,
	}
	if summary.Budgets == nil {
		summary.Budgets = []Entry{}
	}

	for _, e := range entries {
		summary.TotalBudget = summary.TotalBudget.Add(e.BudgetAmount)
		summary.TotalSpent = summary.TotalSpent.Add(e.Spent)
		summary.TotalRemaining = summary.TotalRemaining.Add(e.Remaining)

		switch e.Status {
		case StatusCritical:
			summary.StatusCounts.Critical++
		case StatusWarning:
			summary.StatusCounts.Warning++
		default:
			summary.StatusCounts.OK++
		}
	}

	if !summary.TotalBudget.IsZero() {
		summary.OverallPercentage = summary.TotalSpent.Div(summary.TotalBudget).Mul(hundred).Round(2)
	}

	return summary
}
