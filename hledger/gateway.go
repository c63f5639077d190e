package hledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/finboard/ledger"
	"github.com/robinvdvleuten/finboard/telemetry"
)

// Gateway decodes the hledger reports used by the pipeline. Every method
// logs failures and returns an empty result instead of an error.
type Gateway struct {
	querier Querier
	logger  *slog.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the logger used to report failed queries.
func WithLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// NewGateway creates a Gateway on top of q.
func NewGateway(q Querier, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		querier: q,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Query runs a raw report. ok is false when the query failed.
func (g *Gateway) Query(ctx context.Context, args ...string) (string, bool) {
	timer := telemetry.FromContext(ctx).Start("hledger " + strings.Join(args, " "))
	defer timer.End()

	out, err := g.querier.Query(ctx, args...)
	if err != nil {
		g.logger.Error("hledger query failed", "args", strings.Join(args, " "), "error", err)
		return "", false
	}
	return out, true
}

// Transactions returns every journal transaction (`print -O json`).
func (g *Gateway) Transactions(ctx context.Context) []ledger.Transaction {
	out, ok := g.Query(ctx, "print", "-O", "json")
	if !ok || out == "" {
		return nil
	}

	txns, err := DecodeTransactions([]byte(out))
	if err != nil {
		g.logger.Error("unexpected transaction report", "error", err)
		return nil
	}
	return txns
}

// Balances returns the balance report rows for queries, flat or tree shaped.
func (g *Gateway) Balances(ctx context.Context, flat bool, queries ...string) []BalanceRow {
	args := append([]string{"balance"}, queries...)
	if flat {
		args = append(args, "--flat")
	} else {
		args = append(args, "--tree")
	}
	args = append(args, "-N", "-O", "json")

	out, ok := g.Query(ctx, args...)
	if !ok || out == "" {
		return nil
	}

	rows, err := DecodeBalances([]byte(out))
	if err != nil {
		g.logger.Error("unexpected balance report", "error", err)
		return nil
	}
	return rows
}

// BalanceTree returns the lines of a text tree balance report for query.
func (g *Gateway) BalanceTree(ctx context.Context, query string) []TreeLine {
	out, ok := g.Query(ctx, "balance", query, "--tree", "-N")
	if !ok {
		return nil
	}
	return ParseBalanceTree(out)
}

// MonthlyRegister returns per-month magnitudes of the register for query.
func (g *Gateway) MonthlyRegister(ctx context.Context, query string) []MonthAmount {
	out, ok := g.Query(ctx, "register", query, "--monthly", "-O", "csv")
	if !ok || out == "" {
		return nil
	}

	months, err := ParseMonthlyRegister(out)
	if err != nil {
		g.logger.Error("unexpected register report", "query", query, "error", err)
		return nil
	}
	return months
}

// AccountNames returns the full names of the accounts matching query.
func (g *Gateway) AccountNames(ctx context.Context, query string) []string {
	out, ok := g.Query(ctx, "accounts", query, "--flat")
	if !ok {
		return nil
	}
	return ParseAccountNames(out)
}

// Spending returns the magnitude booked to category during month (YYYY-MM).
func (g *Gateway) Spending(ctx context.Context, category, month string) decimal.Decimal {
	begin, end, err := MonthBounds(month)
	if err != nil {
		g.logger.Error("invalid month", "month", month, "error", err)
		return decimal.Zero
	}

	out, ok := g.Query(ctx, "balance", category, "--begin", begin, "--end", end, "--tree", "-N")
	if !ok {
		return decimal.Zero
	}

	lines := ParseBalanceTree(out)
	if len(lines) == 0 {
		return decimal.Zero
	}
	return lines[0].Amount
}

// MonthBounds returns the first day of month and of the following month.
func MonthBounds(month string) (string, string, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return "", "", fmt.Errorf("month %q is not YYYY-MM: %w", month, err)
	}
	return start.Format(time.DateOnly), start.AddDate(0, 1, 0).Format(time.DateOnly), nil
}
