// Package aggregate folds classified rows and balance reports into the
// account, category and dashboard figures of the finance document.
package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/finboard/classifier"
	"github.com/robinvdvleuten/finboard/hledger"
	"github.com/robinvdvleuten/finboard/ledger"
)

// AccountType is the balance sheet side of an account.
type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
)

// Account is a balance sheet account with its running balance.
type Account struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	FullName string          `json:"fullName"`
	Type     AccountType     `json:"type"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// Accounts converts balance report rows into accounts. Balances come from
// the ledger report rather than from classified rows so the dashboard shows
// the ledger's own running balance. Liability balances are reported as the
// positive amount owed.
func Accounts(rows []hledger.BalanceRow, roots ledger.Roots) []Account {
	accounts := make([]Account, 0, len(rows))
	for i, row := range rows {
		typ := roots.TypeOf(row.Account)
		if row.Account != "" && !typ.IsBalanceSheet() {
			continue
		}

		account := Account{
			ID:       fmt.Sprintf("account-%d", i),
			Name:     ledger.Leaf(row.Account),
			FullName: row.Account,
			Type:     AccountAsset,
			Balance:  row.Amount,
			Currency: row.Commodity,
		}
		if row.Account != "" {
			account.ID = strings.ReplaceAll(row.Account, ledger.Separator, "-")
		}
		if typ == ledger.AccountTypeLiabilities {
			account.Type = AccountLiability
			account.Balance = row.Amount.Abs()
		}
		if account.Currency == "" {
			account.Currency = hledger.DefaultCommodity
		}

		accounts = append(accounts, account)
	}
	return accounts
}

// CategoryType is the side of a category.
type CategoryType string

const (
	CategoryExpense CategoryType = "expense"
	CategoryIncome  CategoryType = "income"
)

// Category is an aggregated spending or income category.
type Category struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Level  int             `json:"level"`
	Type   CategoryType    `json:"type"`
}

// Categories groups categories by side.
type Categories struct {
	Expenses []Category `json:"expenses"`
	Income   []Category `json:"income"`
}

// Mode selects how categories are aggregated.
type Mode string

const (
	// ModeTree reads categories from a tree balance report, keeping its
	// nesting depth.
	ModeTree Mode = "tree"

	// ModeFlat groups classified rows by their top-level category.
	ModeFlat Mode = "flat"
)

// FlatCategories groups rows by the top-level segment of their category and
// sorts each side by descending amount.
func FlatCategories(rows []classifier.Transaction) Categories {
	type bucket struct {
		name   string
		typ    classifier.Type
		amount decimal.Decimal
	}

	var order []string
	buckets := make(map[string]*bucket)
	for _, row := range rows {
		name := ledger.TopLevel(row.Category)
		key := string(row.Type) + "/" + name
		b, ok := buckets[key]
		if !ok {
			b = &bucket{name: name, typ: row.Type}
			buckets[key] = b
			order = append(order, key)
		}
		b.amount = b.amount.Add(row.Amount)
	}

	out := Categories{Expenses: []Category{}, Income: []Category{}}
	for _, key := range order {
		b := buckets[key]
		category := Category{
			ID:     "cat-" + slug(strings.ToLower(b.name)),
			Name:   b.name,
			Amount: b.amount,
			Level:  0,
		}
		if b.typ == classifier.TypeExpense {
			category.Type = CategoryExpense
			out.Expenses = append(out.Expenses, category)
		} else {
			category.Type = CategoryIncome
			out.Income = append(out.Income, category)
		}
	}

	byAmount := func(cats []Category) {
		sort.SliceStable(cats, func(i, j int) bool {
			return cats[i].Amount.GreaterThan(cats[j].Amount)
		})
	}
	byAmount(out.Expenses)
	byAmount(out.Income)

	return out
}

// TreeCategories converts the lines of a tree balance report, keeping report
// order and taking each level from the report's indentation.
func TreeCategories(lines []hledger.TreeLine, typ CategoryType) []Category {
	cats := make([]Category, 0, len(lines))
	for _, line := range lines {
		cats = append(cats, Category{
			ID:     "cat-" + slug(line.Name),
			Name:   line.Name,
			Amount: line.Amount,
			Level:  line.Depth,
			Type:   typ,
		})
	}
	return cats
}

func slug(name string) string {
	return strings.Join(strings.Fields(name), "-")
}

// MonthTotals is the income, expenses and savings of one month.
type MonthTotals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Savings  decimal.Decimal `json:"savings"`
}

// Stats are the headline dashboard figures.
type Stats struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	NetWorth         decimal.Decimal `json:"netWorth"`
	CurrentMonth     MonthTotals     `json:"currentMonth"`
}

// ComputeStats totals rows and accounts. Current-month figures cover the
// calendar month of now.
func ComputeStats(rows []classifier.Transaction, accounts []Account, now time.Time) Stats {
	var stats Stats
	month := now.Format("2006-01")

	for _, row := range rows {
		inMonth := strings.HasPrefix(row.Date, month)
		switch row.Type {
		case classifier.TypeIncome:
			stats.TotalIncome = stats.TotalIncome.Add(row.Amount)
			if inMonth {
				stats.CurrentMonth.Income = stats.CurrentMonth.Income.Add(row.Amount)
			}
		case classifier.TypeExpense:
			stats.TotalExpenses = stats.TotalExpenses.Add(row.Amount)
			if inMonth {
				stats.CurrentMonth.Expenses = stats.CurrentMonth.Expenses.Add(row.Amount)
			}
		}
	}

	for _, account := range accounts {
		switch account.Type {
		case AccountAsset:
			stats.TotalAssets = stats.TotalAssets.Add(account.Balance)
		case AccountLiability:
			stats.TotalLiabilities = stats.TotalLiabilities.Add(account.Balance.Abs())
		}
	}

	stats.NetWorth = stats.TotalAssets.Sub(stats.TotalLiabilities)
	stats.CurrentMonth.Savings = stats.CurrentMonth.Income.Sub(stats.CurrentMonth.Expenses)

	return stats
}
