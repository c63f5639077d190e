package hledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/finboard/ledger"
)

const transactionsJSON = `[
  {
    "tindex": 1,
    "tdate": "2024-01-05",
    "tdescription": "Supermarket",
    "tcomment": " weekly shop\n",
    "tpostings": [
      {"paccount": "expenses:food:groceries", "pstatus": "Cleared",
       "pamount": [{"acommodity": "$", "aquantity": {"decimalMantissa": 4250, "decimalPlaces": 2, "floatingPoint": 42.5}}]},
      {"paccount": "assets:bank:checking", "pstatus": "Cleared",
       "pamount": [{"acommodity": "$", "aquantity": {"floatingPoint": -42.5}}]}
    ]
  },
  {
    "tindex": 2,
    "tdate": "2024-01-06",
    "tdescription": "Empty posting",
    "tcomment": "",
    "tpostings": [
      {"paccount": "assets:cash", "pstatus": "Unmarked", "pamount": []}
    ]
  }
]`

func TestDecodeTransactions(t *testing.T) {
	txns, err := DecodeTransactions([]byte(transactionsJSON))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(txns))

	first := txns[0]
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, "2024-01-05", first.Date)
	assert.Equal(t, "Supermarket", first.Description)
	assert.Equal(t, "weekly shop", first.Comment)
	assert.Equal(t, 2, len(first.Postings))
	assert.Equal(t, "expenses:food:groceries", first.Postings[0].Account)
	assert.Equal(t, "42.5", first.Postings[0].Amount.String())
	assert.Equal(t, "$", first.Postings[0].Commodity)
	assert.Equal(t, ledger.StatusCleared, first.Postings[0].Status)
	assert.Equal(t, "-42.5", first.Postings[1].Amount.String())

	second := txns[1]
	assert.True(t, second.Postings[0].Amount.IsZero())
	assert.Equal(t, DefaultCommodity, second.Postings[0].Commodity)
	assert.Equal(t, ledger.StatusPending, second.Postings[0].Status)
}

func TestDecodeTransactionsMalformed(t *testing.T) {
	_, err := DecodeTransactions([]byte(`{"not": "a list"}`))
	assert.Error(t, err)
}

const balancesJSON = `[
  [
    ["assets:bank", "assets:bank", 0, [{"acommodity": "$", "aquantity": {"decimalMantissa": 150050, "decimalPlaces": 2, "floatingPoint": 1500.5}}]],
    ["liabilities:card", "liabilities:card", 1, [{"acommodity": "THB", "aquantity": {"floatingPoint": -200}}]]
  ],
  [{"acommodity": "$", "aquantity": {"floatingPoint": 1300.5}}]
]`

func TestDecodeBalances(t *testing.T) {
	rows, err := DecodeBalances([]byte(balancesJSON))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(rows))

	assert.Equal(t, "assets:bank", rows[0].Account)
	assert.Equal(t, 0, rows[0].Depth)
	assert.Equal(t, "1500.5", rows[0].Amount.String())
	assert.Equal(t, "$", rows[0].Commodity)

	assert.Equal(t, "liabilities:card", rows[1].Account)
	assert.Equal(t, 1, rows[1].Depth)
	assert.Equal(t, "-200", rows[1].Amount.String())
	assert.Equal(t, "THB", rows[1].Commodity)
}

func TestDecodeBalancesShortRow(t *testing.T) {
	_, err := DecodeBalances([]byte(`[[["assets:bank", "assets:bank"]]]`))
	assert.Error(t, err)
}

func TestDecodeBalancesEmpty(t *testing.T) {
	rows, err := DecodeBalances([]byte(`[]`))
	assert.NoError(t, err)
	assert.Equal(t, 0, len(rows))
}

func TestParseBalanceTree(t *testing.T) {
	report := `           $1,250.00  expenses
             $850.00    food
             $600.00      groceries
             $250.00      dining
             $400.00    transport
 100.50 EUR  travel
--------------------
           $1,250.00`

	lines := ParseBalanceTree(report)
	assert.Equal(t, []string{"expenses", "food", "groceries", "dining", "transport", "travel"}, names(lines))
	assert.Equal(t, []int{0, 1, 2, 2, 1, 0}, depths(lines))
	assert.Equal(t, "1250", lines[0].Amount.String())
	assert.Equal(t, "100.5", lines[5].Amount.String())
}

func TestParseBalanceTreeTrailingSymbol(t *testing.T) {
	report := `          120.00 €  expenses
           80.00 €    food
           40.00 zł    misc
        1,250.00 ฿    travel`

	lines := ParseBalanceTree(report)
	assert.Equal(t, []string{"expenses", "food", "misc", "travel"}, names(lines))
	assert.Equal(t, []int{0, 1, 1, 1}, depths(lines))
	assert.Equal(t, "120", lines[0].Amount.String())
}

func TestParseBalanceTreeNegativeAmounts(t *testing.T) {
	lines := ParseBalanceTree("          $-3,000.00  income\n          $-3,000.00    salary")
	assert.Equal(t, 2, len(lines))
	assert.Equal(t, "3000", lines[0].Amount.String())
	assert.Equal(t, 1, lines[1].Depth)
}

func TestParseMonthlyRegister(t *testing.T) {
	report := `"date","code","description","account","amount","total"
"2024-01","","","expenses:food","$1,200.50","$1,200.50"
"2024-01","","","expenses:rent","$800.00","$2,000.50"
"2024-02","","","expenses:food","$300.00","$2,300.50"
"2024-03","","","expenses:food","n/a","$2,300.50"
"short","row"`

	months, err := ParseMonthlyRegister(report)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(months))
	assert.Equal(t, "2024-01", months[0].Month)
	assert.Equal(t, "2000.5", months[0].Amount.String())
	assert.Equal(t, "2024-02", months[1].Month)
	assert.Equal(t, "300", months[1].Amount.String())
}

func TestParseMonthlyRegisterIncomeIsMagnitude(t *testing.T) {
	report := `"date","code","description","account","amount","total"
"2024-01-01","","","income:salary","$-3,000.00","$-3,000.00"`

	months, err := ParseMonthlyRegister(report)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(months))
	assert.Equal(t, "3000", months[0].Amount.String())
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"$1,234.56", "1234.56", true},
		{"-12.00 EUR", "-12", true},
		{"฿500", "500", true},
		{"", "0", false},
		{"n/a", "0", false},
		{"-", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, ok := ParseAmount(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, d.String())
		})
	}
}

func TestParseAccountNames(t *testing.T) {
	assert.Equal(t,
		[]string{"expenses:food", "expenses:transport"},
		ParseAccountNames("expenses:food\n\n  expenses:transport  \n"))
}

func names(lines []TreeLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Name
	}
	return out
}

func depths(lines []TreeLine) []int {
	out := make([]int, len(lines))
	for i, l := range lines {
		out[i] = l.Depth
	}
	return out
}
