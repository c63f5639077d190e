// Package pipeline turns the journal into the dashboard documents. A run
// executes the transform, trends and budgets stages in order; each stage
// writes its documents before the next one starts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/finboard/aggregate"
	"github.com/robinvdvleuten/finboard/budget"
	"github.com/robinvdvleuten/finboard/classifier"
	"github.com/robinvdvleuten/finboard/config"
	"github.com/robinvdvleuten/finboard/hledger"
	"github.com/robinvdvleuten/finboard/ledger"
	"github.com/robinvdvleuten/finboard/report"
	"github.com/robinvdvleuten/finboard/telemetry"
	"github.com/robinvdvleuten/finboard/trends"
)

// Config controls a pipeline run.
type Config struct {
	DataDir     string
	BudgetsPath string

	// Months is the number of months kept in the trend report.
	Months int
	// TrackMonths is the number of months tracked per budget.
	TrackMonths int
	// Categories selects how category totals are aggregated.
	Categories aggregate.Mode

	Roots  ledger.Roots
	Now    func() time.Time
	Logger *slog.Logger
}

func (c *Config) setDefaults() {
	if c.Months <= 0 {
		c.Months = trends.DefaultMonths
	}
	if c.TrackMonths <= 0 {
		c.TrackMonths = budget.DefaultTrackMonths
	}
	if c.Categories == "" {
		c.Categories = aggregate.ModeTree
	}
	if c.Roots == (ledger.Roots{}) {
		c.Roots = ledger.DefaultRoots()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Result holds the documents produced by a run. Documents of stages that
// did not run are nil.
type Result struct {
	Finance *report.FinanceData
	Trends  *report.TrendsReport
	Budgets *report.BudgetsReport

	// BudgetConfigCreated is set when the default budget configuration was
	// written during this run.
	BudgetConfigCreated bool
}

// Pipeline runs the stages against one hledger querier.
type Pipeline struct {
	cfg     Config
	gateway *hledger.Gateway
	writer  *report.Writer
}

// New creates a Pipeline reading the ledger through q.
func New(q hledger.Querier, cfg Config) *Pipeline {
	cfg.setDefaults()
	return &Pipeline{
		cfg:     cfg,
		gateway: hledger.NewGateway(q, hledger.WithLogger(cfg.Logger)),
		writer:  report.NewWriter(cfg.DataDir),
	}
}

// Gateway returns the gateway used by the pipeline.
func (p *Pipeline) Gateway() *hledger.Gateway {
	return p.gateway
}

// Writer returns the writer used by the pipeline.
func (p *Pipeline) Writer() *report.Writer {
	return p.writer
}

// Run executes every stage. The first failing stage aborts the run; files
// written by earlier stages stay on disk.
func Run(ctx context.Context, q hledger.Querier, cfg Config) (*Result, error) {
	return New(q, cfg).Run(ctx)
}

// Run executes every stage.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	timer := telemetry.FromContext(ctx).Start("generate")
	defer timer.End()

	if c := config.FromContext(ctx); c != nil {
		p.cfg.Logger.Debug("generating", "journal", c.Journal, "data_dir", p.cfg.DataDir)
	}

	result := &Result{}

	finance, err := p.Transform(ctx)
	if err != nil {
		return result, fmt.Errorf("transform: %w", err)
	}
	result.Finance = finance

	result.Trends, err = p.Trends(ctx, finance.Transactions)
	if err != nil {
		return result, fmt.Errorf("trends: %w", err)
	}

	result.Budgets, result.BudgetConfigCreated, err = p.Budgets(ctx)
	if err != nil {
		return result, fmt.Errorf("budgets: %w", err)
	}

	return result, nil
}

// Transform classifies the journal, aggregates accounts and categories and
// writes the finance documents.
func (p *Pipeline) Transform(ctx context.Context) (*report.FinanceData, error) {
	timer := telemetry.FromContext(ctx).Start("transform")
	defer timer.End()

	roots := p.cfg.Roots
	logger := p.cfg.Logger
	now := p.cfg.Now()

	txns := p.gateway.Transactions(ctx)
	rows := classifier.New(classifier.WithRoots(roots)).ClassifyAll(txns)
	logger.Info("classified transactions", "transactions", len(txns), "rows", len(rows))

	accounts := aggregate.Accounts(
		p.gateway.Balances(ctx, true, roots.Assets, roots.Liabilities),
		roots,
	)

	var categories aggregate.Categories
	switch p.cfg.Categories {
	case aggregate.ModeFlat:
		categories = aggregate.FlatCategories(rows)
	case aggregate.ModeTree:
		categories = aggregate.Categories{
			Expenses: nonNil(aggregate.TreeCategories(p.gateway.BalanceTree(ctx, roots.Expenses), aggregate.CategoryExpense)),
			Income:   nonNil(aggregate.TreeCategories(p.gateway.BalanceTree(ctx, roots.Income), aggregate.CategoryIncome)),
		}
	default:
		return nil, fmt.Errorf("unknown category mode %q", p.cfg.Categories)
	}

	doc := &report.FinanceData{
		GeneratedAt:  now,
		Stats:        aggregate.ComputeStats(rows, accounts, now),
		Transactions: rows,
		Accounts:     accounts,
		Categories:   categories,
		MonthlySummary: report.MonthlySummary{
			Income:   nonNil(p.gateway.MonthlyRegister(ctx, roots.Income)),
			Expenses: nonNil(p.gateway.MonthlyRegister(ctx, roots.Expenses)),
		},
	}
	if doc.Transactions == nil {
		doc.Transactions = []classifier.Transaction{}
	}
	if doc.Accounts == nil {
		doc.Accounts = []aggregate.Account{}
	}

	if err := p.writer.WriteFinanceData(doc); err != nil {
		return nil, err
	}
	logger.Debug("wrote finance documents", "dir", p.writer.Dir)

	return doc, nil
}

// Trends analyses monthly totals, category histories and spending patterns
// and writes the trend document. Spending patterns are computed from rows;
// when rows is nil the transactions document of a previous run is used, and
// patterns are omitted if there is none.
func (p *Pipeline) Trends(ctx context.Context, rows []classifier.Transaction) (*report.TrendsReport, error) {
	timer := telemetry.FromContext(ctx).Start("trends")
	defer timer.End()

	roots := p.cfg.Roots
	logger := p.cfg.Logger

	points := trends.Window(trends.MonthlyTrends(
		p.gateway.MonthlyRegister(ctx, roots.Income),
		p.gateway.MonthlyRegister(ctx, roots.Expenses),
	), p.cfg.Months)

	categories := []trends.Category{}
	for _, account := range p.gateway.AccountNames(ctx, roots.Expenses) {
		name := ledger.DisplayPath(roots.StripRoot(account, ledger.AccountTypeExpenses))
		if category, ok := trends.CategoryTrend(name, p.gateway.MonthlyRegister(ctx, account)); ok {
			categories = append(categories, category)
		}
	}

	if rows == nil {
		var err error
		rows, err = p.readTransactions()
		if err != nil {
			return nil, err
		}
	}

	var patterns *trends.Patterns
	if rows != nil {
		pat := trends.SpendingPatterns(rows)
		patterns = &pat
	} else {
		logger.Warn("no transactions document found, skipping spending patterns")
	}

	doc := &report.TrendsReport{
		GeneratedAt:      p.cfg.Now(),
		Period:           trends.NewPeriod(p.cfg.Months, points),
		MonthlyTrends:    nonNil(points),
		CategoryTrends:   categories,
		SpendingPatterns: patterns,
		Comparisons:      trends.Compare(points),
	}

	if err := p.writer.WriteTrends(doc); err != nil {
		return nil, err
	}
	logger.Info("analysed trends", "months", len(points), "categories", len(categories))

	return doc, nil
}

func (p *Pipeline) readTransactions() ([]classifier.Transaction, error) {
	doc, err := report.ReadFinanceData(p.writer.Path(report.FinanceDataFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.Transactions == nil {
		return []classifier.Transaction{}, nil
	}
	return doc.Transactions, nil
}

// Budgets loads (or bootstraps) the budget configuration, tracks spending
// for the configured months and writes the budget document.
func (p *Pipeline) Budgets(ctx context.Context) (*report.BudgetsReport, bool, error) {
	timer := telemetry.FromContext(ctx).Start("budgets")
	defer timer.End()

	logger := p.cfg.Logger

	cfg, created, err := budget.Bootstrap(p.cfg.BudgetsPath)
	if err != nil {
		return nil, false, err
	}
	if created {
		logger.Info("created default budget configuration", "path", p.cfg.BudgetsPath)
	}

	tracker := budget.NewTracker(func(category, month string) decimal.Decimal {
		return p.gateway.Spending(ctx, category, month)
	}, budget.WithRoots(p.cfg.Roots))

	months := budget.MonthsToTrack(p.cfg.Now(), p.cfg.TrackMonths)
	tracking := tracker.Track(cfg.Budgets, months)

	doc := &report.BudgetsReport{
		GeneratedAt: p.cfg.Now(),
		Budgets:     cfg.Budgets,
		Tracking:    tracking,
		Summary:     budget.Summarize(tracking, budget.LatestMonth(tracking)),
	}
	if doc.Budgets == nil {
		doc.Budgets = []budget.Budget{}
	}

	if err := p.writer.WriteBudgets(doc); err != nil {
		return nil, created, err
	}
	logger.Info("tracked budgets", "budgets", len(cfg.Budgets), "months", len(months))

	return doc, created, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
