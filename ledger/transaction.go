// Package ledger defines the ledger records read from the journal: postings,
// transactions and the account path conventions shared by every stage.
package ledger

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Documents are consumed by a JavaScript front end that expects numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Status is the clearing state of a posting or classified row.
type Status string

const (
	StatusCleared Status = "cleared"
	StatusPending Status = "pending"
)

// ParseStatus maps hledger's posting status to a Status. Anything other than
// "Cleared" (including "Unmarked") is pending.
func ParseStatus(s string) Status {
	if s == "Cleared" || s == string(StatusCleared) {
		return StatusCleared
	}
	return StatusPending
}

// Posting is one leg of a double-entry transaction.
type Posting struct {
	Account   string
	Amount    decimal.Decimal
	Commodity string
	Status    Status
}

// Transaction is a dated entry with its ordered postings. Postings are
// expected to sum to zero per commodity; nothing here verifies it.
type Transaction struct {
	Index       int
	Date        string
	Description string
	Comment     string
	Postings    []Posting
}

// Status returns the status of the first posting, or pending when the
// transaction has none.
func (t Transaction) Status() Status {
	if len(t.Postings) == 0 {
		return StatusPending
	}
	return t.Postings[0].Status
}
