// Package classifier turns ledger transactions into the income and expense
// rows shown by the dashboard.
package classifier

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/finboard/ledger"
)

// OtherIncome is the category of an inferred income row without an equity
// or income counterpart.
const OtherIncome = "Other Income"

// Type is the economic type of a classified row.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Transaction is a classified income or expense row.
type Transaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        Type            `json:"type"`
	Category    string          `json:"category"`
	Account     string          `json:"account"`
	Status      ledger.Status   `json:"status"`
	Note        string          `json:"note"`
	Currency    string          `json:"currency,omitempty"`
}

// Classifier assigns run-scoped ids, so one Classifier is used per pipeline
// run.
type Classifier struct {
	roots ledger.Roots
	next  int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRoots overrides the account root names.
func WithRoots(roots ledger.Roots) Option {
	return func(c *Classifier) {
		c.roots = roots
	}
}

// New creates a Classifier whose ids start at txn-1.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		roots: ledger.DefaultRoots(),
		next:  1,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Classify returns the rows for one transaction, in posting order. Pure
// transfers between balance sheet accounts yield no rows.
func (c *Classifier) Classify(txn ledger.Transaction) []Transaction {
	var (
		rows       []Transaction
		settling   string
		hasIncome  bool
		hasExpense bool
		sheet      []ledger.Posting
	)

	status := txn.Status()

	for _, p := range txn.Postings {
		switch c.roots.TypeOf(p.Account) {
		case ledger.AccountTypeExpenses:
			hasExpense = true
			if row, ok := c.row(txn, p, TypeExpense, ledger.AccountTypeExpenses, status); ok {
				rows = append(rows, row)
			}
		case ledger.AccountTypeIncome:
			hasIncome = true
			if row, ok := c.row(txn, p, TypeIncome, ledger.AccountTypeIncome, status); ok {
				rows = append(rows, row)
			}
		case ledger.AccountTypeAssets, ledger.AccountTypeLiabilities:
			sheet = append(sheet, p)
			settling = ledger.DisplayPath(c.roots.StripRoot(p.Account, ledger.AccountTypeAssets, ledger.AccountTypeLiabilities))
		}
	}

	for i := range rows {
		rows[i].Account = settling
	}

	if !hasIncome && !hasExpense && len(sheet) == 1 && sheet[0].Amount.IsPositive() {
		rows = append(rows, c.inferredIncome(txn, sheet[0], status))
	}

	return rows
}

// row builds a row for an income or expense posting. Zero amounts yield no
// row.
func (c *Classifier) row(txn ledger.Transaction, p ledger.Posting, typ Type, root ledger.AccountType, status ledger.Status) (Transaction, bool) {
	if p.Amount.IsZero() {
		return Transaction{}, false
	}

	return Transaction{
		ID:          c.nextID(),
		Date:        txn.Date,
		Description: txn.Description,
		Amount:      p.Amount.Abs(),
		Type:        typ,
		Category:    ledger.DisplayPath(c.roots.StripRoot(p.Account, root)),
		Status:      status,
		Note:        txn.Comment,
		Currency:    p.Commodity,
	}, true
}

// inferredIncome treats a lone positive asset posting, such as a salary
// deposit booked against an equity placeholder, as income.
func (c *Classifier) inferredIncome(txn ledger.Transaction, asset ledger.Posting, status ledger.Status) Transaction {
	category := OtherIncome
	for _, p := range txn.Postings {
		typ := c.roots.TypeOf(p.Account)
		if typ == ledger.AccountTypeEquity || typ == ledger.AccountTypeIncome {
			category = ledger.DisplayPath(c.roots.StripRoot(p.Account, ledger.AccountTypeEquity, ledger.AccountTypeIncome))
			break
		}
	}

	return Transaction{
		ID:          c.nextID(),
		Date:        txn.Date,
		Description: txn.Description,
		Amount:      asset.Amount.Abs(),
		Type:        TypeIncome,
		Category:    category,
		Account:     asset.Account,
		Status:      status,
		Note:        txn.Comment,
		Currency:    asset.Commodity,
	}
}

func (c *Classifier) nextID() string {
	id := fmt.Sprintf("txn-%d", c.next)
	c.next++
	return id
}

// ClassifyAll classifies txns in order and sorts the rows by date. Rows of
// the same date keep their classification order.
func (c *Classifier) ClassifyAll(txns []ledger.Transaction) []Transaction {
	var rows []Transaction
	for _, txn := range txns {
		rows = append(rows, c.Classify(txn)...)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date < rows[j].Date
	})

	return rows
}
