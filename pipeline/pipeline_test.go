package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/finboard/aggregate"
	"github.com/robinvdvleuten/finboard/budget"
	"github.com/robinvdvleuten/finboard/report"
	"github.com/robinvdvleuten/finboard/telemetry"
	"github.com/robinvdvleuten/finboard/trends"
)

const journalJSON = `[
  {"tindex": 1, "tdate": "2024-02-20", "tdescription": "Pizza place", "tcomment": "",
   "tpostings": [
     {"paccount": "expenses:food:dining", "pstatus": "Cleared", "pamount": [{"acommodity": "$", "aquantity": {"floatingPoint": 80}}]},
     {"paccount": "liabilities:card", "pstatus": "Cleared", "pamount": [{"acommodity": "$", "aquantity": {"floatingPoint": -80}}]}
   ]},
  {"tindex": 2, "tdate": "2024-03-05", "tdescription": "Salary", "tcomment": "",
   "tpostings": [
     {"paccount": "assets:checking", "pstatus": "Cleared", "pamount": [{"acommodity": "$", "aquantity": {"floatingPoint": 3000}}]},
     {"paccount": "income:salary", "pstatus": "Cleared", "pamount": [{"acommodity": "$", "aquantity": {"floatingPoint": -3000}}]}
   ]},
  {"tindex": 3, "tdate": "2024-03-10", "tdescription": "Supermarket", "tcomment": "",
   "tpostings": [
     {"paccount": "expenses:food:groceries", "pstatus": "", "pamount": [{"acommodity": "$", "aquantity": {"floatingPoint": 120}}]},
     {"paccount": "assets:checking", "pstatus": "", "pamount": [{"acommodity": "$", "aquantity": {"floatingPoint": -120}}]}
   ]}
]`

const balancesJSON = `[
  [
    ["assets:checking", "assets:checking", 1, [{"acommodity": "$", "aquantity": {"floatingPoint": 2880}}]],
    ["liabilities:card", "liabilities:card", 1, [{"acommodity": "$", "aquantity": {"floatingPoint": -80}}]]
  ],
  [{"acommodity": "$", "aquantity": {"floatingPoint": 2800}}]
]`

const registerHeader = `"date","code","description","account","amount","total"` + "\n"

// fakeQuerier answers queries from a map keyed by the joined arguments and
// fails every other query.
type fakeQuerier struct {
	mu        sync.Mutex
	responses map[string]string
	calls     []string
}

func (f *fakeQuerier) Query(ctx context.Context, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	out, ok := f.responses[key]
	if !ok {
		return "", errors.New("exit status 1")
	}
	return out, nil
}

func journalResponses() map[string]string {
	return map[string]string{
		"print -O json": journalJSON,
		"balance assets liabilities --flat -N -O json": balancesJSON,
		"balance expenses --tree -N": "             $200.00  expenses\n" +
			"             $200.00    food\n" +
			"             $80.00       dining\n" +
			"            $120.00       groceries",
		"balance income --tree -N": "          $-3,000.00  income:salary",
		"register income --monthly -O csv": registerHeader +
			`"2024-02","","","income:salary","$-2,500.00","$-2,500.00"` + "\n" +
			`"2024-03","","","income:salary","$-3,000.00","$-5,500.00"`,
		"register expenses --monthly -O csv": registerHeader +
			`"2024-02","","","expenses:food:dining","$80.00","$80.00"` + "\n" +
			`"2024-03","","","expenses:food:groceries","$120.00","$200.00"`,
		"accounts expenses --flat": "expenses:food:dining\nexpenses:food:groceries",
		"register expenses:food:dining --monthly -O csv": registerHeader +
			`"2024-02","","","expenses:food:dining","$80.00","$80.00"`,
		"register expenses:food:groceries --monthly -O csv": registerHeader +
			`"2024-03","","","expenses:food:groceries","$120.00","$120.00"`,
		"balance expenses:food:groceries --begin 2024-03-01 --end 2024-04-01 --tree -N": "            $120.00  expenses:food:groceries",
		"balance expenses:food:dining --begin 2024-02-01 --end 2024-03-01 --tree -N":    "             $80.00  expenses:food:dining",
	}
}

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		DataDir:     filepath.Join(dir, "data"),
		BudgetsPath: filepath.Join(dir, "data", report.BudgetConfigFile),
		TrackMonths: 2,
		Now: func() time.Time {
			return time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	q := &fakeQuerier{responses: journalResponses()}

	result, err := Run(context.Background(), q, cfg)
	assert.NoError(t, err)

	for _, name := range []string{
		report.FinanceDataFile, report.TransactionsFile, report.AccountsFile,
		report.CategoriesFile, report.StatsFile, report.TrendsFile,
		report.BudgetsFile, report.BudgetConfigFile,
	} {
		_, err := os.Stat(filepath.Join(cfg.DataDir, name))
		assert.NoError(t, err, name)
	}

	finance := result.Finance
	assert.Equal(t, 3, len(finance.Transactions))
	assert.Equal(t, "2024-02-20", finance.Transactions[0].Date)
	assert.Equal(t, "card", finance.Transactions[0].Account)
	assert.Equal(t, "3000", finance.Stats.TotalIncome.String())
	assert.Equal(t, "200", finance.Stats.TotalExpenses.String())
	assert.Equal(t, "2800", finance.Stats.NetWorth.String())
	assert.Equal(t, "120", finance.Stats.CurrentMonth.Expenses.String())
	assert.Equal(t, "2880", finance.Stats.CurrentMonth.Savings.String())
	assert.Equal(t, 2, len(finance.Accounts))
	assert.Equal(t, 4, len(finance.Categories.Expenses))
	assert.Equal(t, 2, finance.Categories.Expenses[2].Level)
	assert.Equal(t, 2, len(finance.MonthlySummary.Income))

	tr := result.Trends
	assert.Equal(t, 2, len(tr.MonthlyTrends))
	assert.Equal(t, trends.Period{Months: trends.DefaultMonths, From: "2024-02", To: "2024-03"}, tr.Period)
	assert.Equal(t, "20", tr.Comparisons.Income.ChangePercent.String())
	assert.Equal(t, 2, len(tr.CategoryTrends))
	assert.Equal(t, "food > dining", tr.CategoryTrends[0].Category)
	assert.True(t, tr.SpendingPatterns != nil)

	assert.True(t, result.BudgetConfigCreated)
	b := result.Budgets
	assert.Equal(t, 4, len(b.Budgets))
	assert.Equal(t, 2, len(b.Tracking))
	assert.Equal(t, "2024-03", b.Summary.Month)
	assert.Equal(t, "120", b.Summary.TotalSpent.String())
	assert.Equal(t, "food > groceries", b.Tracking["2024-03"][0].Category)
	assert.Equal(t, "24", b.Tracking["2024-03"][0].Percentage.String())
	assert.Equal(t, "32", b.Tracking["2024-02"][1].Percentage.String())
}

func TestWriterUsesDataDir(t *testing.T) {
	cfg := testConfig(t)
	p := New(&fakeQuerier{responses: journalResponses()}, cfg)

	_, err := p.Transform(context.Background())
	assert.NoError(t, err)

	path := p.Writer().Path(report.FinanceDataFile)
	assert.Equal(t, filepath.Join(cfg.DataDir, report.FinanceDataFile), path)
	_, err = report.ReadFinanceData(path)
	assert.NoError(t, err)
}

func TestRunSecondTimeKeepsBudgetConfig(t *testing.T) {
	cfg := testConfig(t)
	q := &fakeQuerier{responses: journalResponses()}

	custom := &budget.Config{Budgets: budget.Default().Budgets[:1]}
	assert.NoError(t, custom.Save(cfg.BudgetsPath))

	result, err := Run(context.Background(), q, cfg)
	assert.NoError(t, err)
	assert.False(t, result.BudgetConfigCreated)
	assert.Equal(t, 1, len(result.Budgets.Budgets))
}

func TestRunFlatCategories(t *testing.T) {
	cfg := testConfig(t)
	cfg.Categories = aggregate.ModeFlat
	q := &fakeQuerier{responses: journalResponses()}

	finance, err := New(q, cfg).Transform(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, len(finance.Categories.Expenses))
	assert.Equal(t, "food", finance.Categories.Expenses[0].Name)
	assert.Equal(t, "200", finance.Categories.Expenses[0].Amount.String())
	assert.Equal(t, "salary", finance.Categories.Income[0].Name)

	for _, call := range q.calls {
		assert.False(t, strings.HasSuffix(call, "--tree -N") && strings.HasPrefix(call, "balance expenses "), call)
	}
}

func TestRunUnknownCategoryMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Categories = "nested"

	_, err := Run(context.Background(), &fakeQuerier{responses: journalResponses()}, cfg)
	assert.Error(t, err)
}

func TestRunWithFailingLedger(t *testing.T) {
	cfg := testConfig(t)

	// Every query fails: the run still succeeds with empty documents.
	result, err := Run(context.Background(), &fakeQuerier{}, cfg)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(result.Finance.Transactions))
	assert.Equal(t, "0", result.Finance.Stats.NetWorth.String())
	assert.Equal(t, 0, len(result.Trends.MonthlyTrends))
	assert.True(t, result.Trends.Comparisons == nil)
	assert.Equal(t, "0", result.Budgets.Summary.TotalSpent.String())

	doc, err := report.ReadFinanceData(filepath.Join(cfg.DataDir, report.FinanceDataFile))
	assert.NoError(t, err)
	assert.True(t, doc.Transactions != nil)
}

func TestRunAbortsOnStageError(t *testing.T) {
	cfg := testConfig(t)
	// The data directory path is taken by a file, so nothing can be written.
	assert.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(cfg.DataDir), "data"), nil, 0o644))

	result, err := Run(context.Background(), &fakeQuerier{responses: journalResponses()}, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "transform")
	assert.True(t, result.Trends == nil)
}

func TestRunMalformedBudgetConfig(t *testing.T) {
	cfg := testConfig(t)
	assert.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))
	assert.NoError(t, os.WriteFile(cfg.BudgetsPath, []byte("{"), 0o644))

	result, err := Run(context.Background(), &fakeQuerier{responses: journalResponses()}, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "budgets")

	// Earlier stages keep their output.
	assert.True(t, result.Finance != nil)
	_, statErr := os.Stat(filepath.Join(cfg.DataDir, report.TrendsFile))
	assert.NoError(t, statErr)
}

func TestTrendsUsesPreviousTransactions(t *testing.T) {
	cfg := testConfig(t)
	q := &fakeQuerier{responses: journalResponses()}

	// Without a transactions document the spending patterns are skipped.
	tr, err := New(q, cfg).Trends(context.Background(), nil)
	assert.NoError(t, err)
	assert.True(t, tr.SpendingPatterns == nil)

	_, err = New(q, cfg).Transform(context.Background())
	assert.NoError(t, err)

	tr, err = New(q, cfg).Trends(context.Background(), nil)
	assert.NoError(t, err)
	assert.True(t, tr.SpendingPatterns != nil)
	// 2024-03-10 is a Sunday.
	assert.Equal(t, 1, tr.SpendingPatterns.ByDayOfWeek[0].TotalTransactions)
}

func TestRunRecordsStageTimings(t *testing.T) {
	cfg := testConfig(t)
	collector := telemetry.NewTimingCollector()
	ctx := telemetry.WithCollector(context.Background(), collector)

	_, err := Run(ctx, &fakeQuerier{responses: journalResponses()}, cfg)
	assert.NoError(t, err)

	var buf strings.Builder
	collector.Report(&buf, nil)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "generate: "))
	assert.Contains(t, out, "├─ transform")
	assert.Contains(t, out, "├─ trends")
	assert.Contains(t, out, "└─ budgets")
	assert.Contains(t, out, "hledger print -O json")
}
