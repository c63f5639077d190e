package hledger

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/finboard/ledger"
)

// DefaultCommodity is used when a report carries no commodity symbol.
const DefaultCommodity = "$"

// jsonTransaction mirrors a transaction in `hledger print -O json`.
type jsonTransaction struct {
	Index       int           `json:"tindex"`
	Date        string        `json:"tdate"`
	Description string        `json:"tdescription"`
	Comment     string        `json:"tcomment"`
	Postings    []jsonPosting `json:"tpostings"`
}

type jsonPosting struct {
	Account string       `json:"paccount"`
	Amounts []jsonAmount `json:"pamount"`
	Status  string       `json:"pstatus"`
}

type jsonAmount struct {
	Commodity string       `json:"acommodity"`
	Quantity  jsonQuantity `json:"aquantity"`
}

type jsonQuantity struct {
	FloatingPoint   *decimal.Decimal `json:"floatingPoint"`
	DecimalMantissa json.Number      `json:"decimalMantissa"`
	DecimalPlaces   *int32           `json:"decimalPlaces"`
}

// value prefers the exact mantissa/places pair over the float rendering.
func (q jsonQuantity) value() decimal.Decimal {
	if q.DecimalMantissa != "" && q.DecimalPlaces != nil {
		if m, err := decimal.NewFromString(q.DecimalMantissa.String()); err == nil {
			return m.Shift(-*q.DecimalPlaces)
		}
	}
	if q.FloatingPoint != nil {
		return *q.FloatingPoint
	}
	return decimal.Zero
}

// firstAmount returns the quantity and commodity of the first amount, as the
// dashboard only ever shows one amount per posting or account.
func firstAmount(amounts []jsonAmount) (decimal.Decimal, string) {
	if len(amounts) == 0 {
		return decimal.Zero, DefaultCommodity
	}
	commodity := amounts[0].Commodity
	if commodity == "" {
		commodity = DefaultCommodity
	}
	return amounts[0].Quantity.value(), commodity
}

// DecodeTransactions decodes the output of `hledger print -O json`.
func DecodeTransactions(data []byte) ([]ledger.Transaction, error) {
	var raw []jsonTransaction
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	txns := make([]ledger.Transaction, 0, len(raw))
	for _, rt := range raw {
		txn := ledger.Transaction{
			Index:       rt.Index,
			Date:        rt.Date,
			Description: rt.Description,
			Comment:     strings.TrimSpace(rt.Comment),
			Postings:    make([]ledger.Posting, 0, len(rt.Postings)),
		}
		for _, rp := range rt.Postings {
			amount, commodity := firstAmount(rp.Amounts)
			txn.Postings = append(txn.Postings, ledger.Posting{
				Account:   rp.Account,
				Amount:    amount,
				Commodity: commodity,
				Status:    ledger.ParseStatus(rp.Status),
			})
		}
		txns = append(txns, txn)
	}

	return txns, nil
}

// BalanceRow is one account line of a balance report.
type BalanceRow struct {
	Account   string
	Display   string
	Depth     int
	Amount    decimal.Decimal
	Commodity string
}

// DecodeBalances decodes the output of `hledger balance -O json`, which has
// the shape [[[fullName, displayName, depth, amounts], ...], totals].
func DecodeBalances(data []byte) ([]BalanceRow, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return nil, fmt.Errorf("failed to decode balance report: %w", err)
	}
	if len(outer) == 0 {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(outer[0], &items); err != nil {
		return nil, fmt.Errorf("failed to decode balance rows: %w", err)
	}

	rows := make([]BalanceRow, 0, len(items))
	for i, item := range items {
		var fields []json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode balance row %d: %w", i, err)
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("balance row %d has %d fields, expected 4", i, len(fields))
		}

		var row BalanceRow
		var amounts []jsonAmount
		if err := json.Unmarshal(fields[0], &row.Account); err != nil {
			return nil, fmt.Errorf("balance row %d account: %w", i, err)
		}
		if err := json.Unmarshal(fields[1], &row.Display); err != nil {
			return nil, fmt.Errorf("balance row %d display name: %w", i, err)
		}
		if err := json.Unmarshal(fields[2], &row.Depth); err != nil {
			return nil, fmt.Errorf("balance row %d depth: %w", i, err)
		}
		if err := json.Unmarshal(fields[3], &amounts); err != nil {
			return nil, fmt.Errorf("balance row %d amounts: %w", i, err)
		}
		row.Amount, row.Commodity = firstAmount(amounts)
		rows = append(rows, row)
	}

	return rows, nil
}

// TreeLine is one line of a text balance report in tree mode.
type TreeLine struct {
	Name   string
	Depth  int
	Amount decimal.Decimal
}

// treeLineRe matches "<symbol?><amount><commodity?><gap><name>"; the
// commodity may be any run of non-digit symbols such as "EUR" or "€". The gap
// between amount and name grows by two spaces per tree level.
var treeLineRe = regexp.MustCompile(`^\s*[^\d\s-]*(-?[\d,]+(?:\.\d+)?)(?:\s?[^\d\s-]+)?(\s+)(\S.*)$`)

// ParseBalanceTree parses the text output of `hledger balance --tree`.
// Separator and total lines are skipped; amounts are magnitudes.
func ParseBalanceTree(text string) []TreeLine {
	var lines []TreeLine
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "-") {
			continue
		}

		m := treeLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		amount, ok := ParseAmount(m[1])
		if !ok {
			continue
		}

		depth := (len(m[2]) - 2) / 2
		if depth < 0 {
			depth = 0
		}

		lines = append(lines, TreeLine{
			Name:   strings.TrimSpace(m[3]),
			Depth:  depth,
			Amount: amount.Abs(),
		})
	}
	return lines
}

// MonthAmount is a per-month magnitude.
type MonthAmount struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// ParseMonthlyRegister parses `hledger register --monthly -O csv` output.
// Column 0 holds the period and column 4 the amount. Rows of the same month
// are summed; months keep the order they first appear in and amounts are
// returned as magnitudes.
func ParseMonthlyRegister(text string) ([]MonthAmount, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var (
		order  []string
		totals = make(map[string]decimal.Decimal)
		header = true
	)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read register csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(record) < 5 {
			continue
		}

		period := strings.Trim(record[0], `" `)
		if len(period) < 7 {
			continue
		}
		month := period[:7]

		amount, ok := ParseAmount(record[4])
		if !ok {
			continue
		}

		if _, seen := totals[month]; !seen {
			order = append(order, month)
		}
		totals[month] = totals[month].Add(amount)
	}

	months := make([]MonthAmount, 0, len(order))
	for _, month := range order {
		months = append(months, MonthAmount{Month: month, Amount: totals[month].Abs()})
	}
	return months, nil
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// ParseAmount parses a rendered amount such as "$1,234.56" or "-12.00 EUR"
// by stripping everything but digits, the decimal point and the sign.
func ParseAmount(s string) (decimal.Decimal, bool) {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseAccountNames splits the output of `hledger accounts --flat`.
func ParseAccountNames(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		name := strings.TrimSpace(line)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
