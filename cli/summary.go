package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/finboard/hledger"
	"github.com/robinvdvleuten/finboard/output"
	"github.com/robinvdvleuten/finboard/report"
)

const maxColumn = 28

// pad truncates s to width display cells and pads it on the right. Category
// names may contain wide runes, so byte length is not enough.
func pad(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func columnWidth(names []string) int {
	width := 0
	for _, name := range names {
		width = max(width, runewidth.StringWidth(name))
	}
	return min(width, maxColumn)
}

func printFinanceSummary(w io.Writer, styles *output.Styles, doc *report.FinanceData) {
	stats := doc.Stats
	c := hledger.DefaultCommodity

	_, _ = fmt.Fprintf(w, "  %s transactions, %s accounts, %s expense and %s income categories\n",
		styles.Keyword(fmt.Sprint(len(doc.Transactions))),
		styles.Keyword(fmt.Sprint(len(doc.Accounts))),
		styles.Keyword(fmt.Sprint(len(doc.Categories.Expenses))),
		styles.Keyword(fmt.Sprint(len(doc.Categories.Income))),
	)
	_, _ = fmt.Fprintf(w, "  income %s  expenses %s  net worth %s\n",
		styles.Money(stats.TotalIncome, c),
		styles.Money(stats.TotalExpenses, c),
		styles.Money(stats.NetWorth, c),
	)
}

func printTrendsSummary(w io.Writer, styles *output.Styles, doc *report.TrendsReport) {
	c := hledger.DefaultCommodity

	if doc.Period.From != "" {
		_, _ = fmt.Fprintf(w, "  %s to %s, %s categories\n",
			styles.Keyword(doc.Period.From),
			styles.Keyword(doc.Period.To),
			styles.Keyword(fmt.Sprint(len(doc.CategoryTrends))),
		)
	}

	if cmp := doc.Comparisons; cmp != nil {
		_, _ = fmt.Fprintf(w, "  %s: expenses %s (%s%%), savings %s\n",
			styles.Keyword(cmp.CurrentMonth),
			styles.Money(cmp.Expenses.Current, c),
			cmp.Expenses.ChangePercent.StringFixed(1),
			styles.Money(cmp.Savings.Current, c),
		)
	}

	names := make([]string, 0, len(doc.CategoryTrends))
	for _, category := range doc.CategoryTrends {
		names = append(names, category.Category)
	}
	width := columnWidth(names)
	for _, category := range doc.CategoryTrends {
		_, _ = fmt.Fprintf(w, "  %s  avg %s  %s\n",
			styles.Category(pad(category.Category, width)),
			styles.Money(category.Average, c),
			styles.Dim(string(category.Trend)),
		)
	}
}

func printBudgetsSummary(w io.Writer, styles *output.Styles, doc *report.BudgetsReport) {
	summary := doc.Summary
	c := hledger.DefaultCommodity

	if summary.Month == "" {
		_, _ = fmt.Fprintln(w, "  no budgets tracked")
		return
	}

	_, _ = fmt.Fprintf(w, "  %s: spent %s of %s (%s%%)\n",
		styles.Keyword(summary.Month),
		styles.Money(summary.TotalSpent, c),
		styles.Money(summary.TotalBudget, c),
		summary.OverallPercentage.StringFixed(1),
	)

	names := make([]string, 0, len(summary.Budgets))
	for _, entry := range summary.Budgets {
		names = append(names, entry.Category)
	}
	width := columnWidth(names)
	for _, entry := range summary.Budgets {
		percentage := fmt.Sprintf("%5s%%", entry.Percentage.StringFixed(1))
		_, _ = fmt.Fprintf(w, "  %s  %s / %s  %s  %s\n",
			styles.Category(pad(entry.Category, width)),
			styles.Money(entry.Spent, c),
			styles.Money(entry.BudgetAmount, c),
			percentage,
			styles.BudgetStatus(string(entry.Status)),
		)
	}

	counts := summary.StatusCounts
	if counts.Critical+counts.Warning > 0 {
		var parts []string
		if counts.Critical > 0 {
			parts = append(parts, styles.BudgetStatus("critical")+fmt.Sprintf(" %d", counts.Critical))
		}
		if counts.Warning > 0 {
			parts = append(parts, styles.BudgetStatus("warning")+fmt.Sprintf(" %d", counts.Warning))
		}
		_, _ = fmt.Fprintf(w, "  %s\n", strings.Join(parts, ", "))
	}
}
