package ledger

import "strings"

// Separator splits the segments of a hierarchical account path.
const Separator = ":"

// AccountType represents the root namespace of an account path.
type AccountType int

const (
	AccountTypeUnknown AccountType = iota
	AccountTypeAssets
	AccountTypeLiabilities
	AccountTypeEquity
	AccountTypeIncome
	AccountTypeExpenses
)

// String returns the string representation of the account type
func (t AccountType) String() string {
	switch t {
	case AccountTypeAssets:
		return "assets"
	case AccountTypeLiabilities:
		return "liabilities"
	case AccountTypeEquity:
		return "equity"
	case AccountTypeIncome:
		return "income"
	case AccountTypeExpenses:
		return "expenses"
	default:
		return "unknown"
	}
}

// IsBalanceSheet reports whether the type holds a running balance
// (assets and liabilities).
func (t AccountType) IsBalanceSheet() bool {
	return t == AccountTypeAssets || t == AccountTypeLiabilities
}

// Roots names the top-level segment used for each account type.
// hledger journals conventionally use lowercase names.
type Roots struct {
	Assets      string
	Liabilities string
	Equity      string
	Income      string
	Expenses    string
}

// DefaultRoots returns the conventional hledger root names.
func DefaultRoots() Roots {
	return Roots{
		Assets:      "assets",
		Liabilities: "liabilities",
		Equity:      "equity",
		Income:      "income",
		Expenses:    "expenses",
	}
}

// TypeOf returns the account type of a full account path. Only paths below a
// root match: "expenses" alone has no prefix "expenses:" and is unknown.
func (r Roots) TypeOf(account string) AccountType {
	switch {
	case hasRoot(account, r.Assets):
		return AccountTypeAssets
	case hasRoot(account, r.Liabilities):
		return AccountTypeLiabilities
	case hasRoot(account, r.Equity):
		return AccountTypeEquity
	case hasRoot(account, r.Income):
		return AccountTypeIncome
	case hasRoot(account, r.Expenses):
		return AccountTypeExpenses
	default:
		return AccountTypeUnknown
	}
}

// Root returns the configured root name for an account type.
func (r Roots) Root(t AccountType) string {
	switch t {
	case AccountTypeAssets:
		return r.Assets
	case AccountTypeLiabilities:
		return r.Liabilities
	case AccountTypeEquity:
		return r.Equity
	case AccountTypeIncome:
		return r.Income
	case AccountTypeExpenses:
		return r.Expenses
	default:
		return ""
	}
}

// StripRoot removes the root segment of account if it belongs to one of the
// given types. The path is returned unchanged otherwise.
func (r Roots) StripRoot(account string, types ...AccountType) string {
	for _, t := range types {
		root := r.Root(t)
		if hasRoot(account, root) {
			return account[len(root)+len(Separator):]
		}
	}
	return account
}

func hasRoot(account, root string) bool {
	return root != "" && strings.HasPrefix(account, root+Separator)
}

// DisplayPath renders the segments of a path joined by " > ".
func DisplayPath(path string) string {
	return strings.ReplaceAll(path, Separator, " > ")
}

// Leaf returns the last segment of an account path.
func Leaf(account string) string {
	if i := strings.LastIndex(account, Separator); i >= 0 {
		return account[i+len(Separator):]
	}
	return account
}

// TopLevel returns the first segment of a display path ("food > groceries"
// yields "food").
func TopLevel(display string) string {
	if i := strings.Index(display, " > "); i >= 0 {
		return display[:i]
	}
	return display
}
