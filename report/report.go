// Package report defines the JSON documents consumed by the dashboard and
// writes them into the data directory.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robinvdvleuten/finboard/aggregate"
	"github.com/robinvdvleuten/finboard/budget"
	"github.com/robinvdvleuten/finboard/classifier"
	"github.com/robinvdvleuten/finboard/hledger"
	"github.com/robinvdvleuten/finboard/trends"
)

// File names written into the data directory.
const (
	FinanceDataFile  = "finance-data.json"
	TransactionsFile = "transactions-clean.json"
	AccountsFile     = "accounts-clean.json"
	CategoriesFile   = "categories-clean.json"
	StatsFile        = "stats.json"
	TrendsFile       = "trends.json"
	BudgetsFile      = "budgets.json"
	BudgetConfigFile = "budgets-config.json"
)

// MonthlySummary holds the per-month income and expense totals.
type MonthlySummary struct {
	Income   []hledger.MonthAmount `json:"income"`
	Expenses []hledger.MonthAmount `json:"expenses"`
}

// FinanceData is the combined dashboard document.
type FinanceData struct {
	GeneratedAt    time.Time                `json:"generatedAt"`
	Stats          aggregate.Stats          `json:"stats"`
	Transactions   []classifier.Transaction `json:"transactions"`
	Accounts       []aggregate.Account      `json:"accounts"`
	Categories     aggregate.Categories     `json:"categories"`
	MonthlySummary MonthlySummary           `json:"monthlySummary"`
}

// TrendsReport is the trend analysis document.
type TrendsReport struct {
	GeneratedAt      time.Time          `json:"generatedAt"`
	Period           trends.Period      `json:"period"`
	MonthlyTrends    []trends.Point     `json:"monthlyTrends"`
	CategoryTrends   []trends.Category  `json:"categoryTrends"`
	SpendingPatterns *trends.Patterns   `json:"spendingPatterns"`
	Comparisons      *trends.Comparison `json:"comparisons"`
}

// BudgetsReport is the budget tracking document.
type BudgetsReport struct {
	GeneratedAt time.Time                 `json:"generatedAt"`
	Budgets     []budget.Budget           `json:"budgets"`
	Tracking    map[string][]budget.Entry `json:"tracking"`
	Summary     budget.Summary            `json:"summary"`
}

// Writer writes documents into a data directory. Every write replaces the
// previous file wholesale.
type Writer struct {
	Dir string
}

// NewWriter returns a Writer for dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Path returns the location of name inside the data directory.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

func (w *Writer) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(w.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// WriteFinanceData writes the combined document followed by the
// per-concern documents derived from it.
func (w *Writer) WriteFinanceData(doc *FinanceData) error {
	files := []struct {
		name string
		v    any
	}{
		{FinanceDataFile, doc},
		{TransactionsFile, doc.Transactions},
		{AccountsFile, doc.Accounts},
		{CategoriesFile, doc.Categories},
		{StatsFile, doc.Stats},
	}
	for _, f := range files {
		if err := w.write(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

// WriteTrends writes the trend analysis document.
func (w *Writer) WriteTrends(doc *TrendsReport) error {
	return w.write(TrendsFile, doc)
}

// WriteBudgets writes the budget tracking document.
func (w *Writer) WriteBudgets(doc *BudgetsReport) error {
	return w.write(BudgetsFile, doc)
}

func read(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("malformed document %s: %w", path, err)
	}
	return nil
}

// ReadFinanceData decodes a combined document.
func ReadFinanceData(path string) (*FinanceData, error) {
	doc := &FinanceData{}
	if err := read(path, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ReadTrends decodes a trend analysis document.
func ReadTrends(path string) (*TrendsReport, error) {
	doc := &TrendsReport{}
	if err := read(path, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ReadBudgets decodes a budget tracking document.
func ReadBudgets(path string) (*BudgetsReport, error) {
	doc := &BudgetsReport{}
	if err := read(path, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
