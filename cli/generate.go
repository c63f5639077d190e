package cli

import (
	"time"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/finboard/aggregate"
	"github.com/robinvdvleuten/finboard/pipeline"
	"github.com/robinvdvleuten/finboard/report"
	"github.com/robinvdvleuten/finboard/trends"
)

// GenerateCmd runs every pipeline stage.
type GenerateCmd struct {
	Categories aggregate.Mode `help:"How categories are aggregated (tree or flat)." enum:"tree,flat" default:"tree"`
}

// Run executes the generate command.
func (cmd *GenerateCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals)
	if err != nil {
		return err
	}
	defer s.close()

	return s.generate(pipeline.Config{Categories: cmd.Categories}).err()
}

// generate runs the whole pipeline once and prints what it wrote.
func (s *session) generate(cfg pipeline.Config) CommandResult {
	if err := s.validate(); err != nil {
		return Failure(err)
	}

	start := time.Now()
	p := s.pipeline(cfg)
	result, err := p.Run(s.ctx)
	out := s.kctx.Stdout

	if result != nil && result.Finance != nil {
		printSuccess(out, "Wrote "+displayPath(s.styles, p.Writer().Path(report.FinanceDataFile)))
		printFinanceSummary(out, s.styles, result.Finance)
	}
	if result != nil && result.Trends != nil {
		printSuccess(out, "Wrote "+displayPath(s.styles, p.Writer().Path(report.TrendsFile)))
		printTrendsSummary(out, s.styles, result.Trends)
	}
	if result != nil && result.BudgetConfigCreated {
		printInfof(out, "Created default budget configuration at %s", displayPath(s.styles, s.cfg.BudgetsPath()))
	}
	if result != nil && result.Budgets != nil {
		printSuccess(out, "Wrote "+displayPath(s.styles, p.Writer().Path(report.BudgetsFile)))
		printBudgetsSummary(out, s.styles, result.Budgets)
	}

	if err != nil {
		s.fail(err)
		return Failure(err)
	}

	printInfof(out, "Generated dashboard data in %s", s.styles.Dim(time.Since(start).Round(time.Millisecond).String()))
	return Success()
}

// TransformCmd runs the transform stage only.
type TransformCmd struct {
	Categories aggregate.Mode `help:"How categories are aggregated (tree or flat)." enum:"tree,flat" default:"tree"`
}

// Run executes the transform command.
func (cmd *TransformCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.validate(); err != nil {
		return err
	}

	p := s.pipeline(pipeline.Config{Categories: cmd.Categories})
	doc, err := p.Transform(s.ctx)
	if err != nil {
		s.fail(err)
		return Failure(err).err()
	}

	printSuccess(ctx.Stdout, "Wrote "+displayPath(s.styles, p.Writer().Path(report.FinanceDataFile)))
	printFinanceSummary(ctx.Stdout, s.styles, doc)
	return nil
}

// TrendsCmd runs the trend analysis only. Spending patterns come from the
// transactions written by a previous transform.
type TrendsCmd struct {
	Months int `arg:"" optional:"" help:"Number of months to analyse." default:"12"`
}

// Run executes the trends command.
func (cmd *TrendsCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.validate(); err != nil {
		return err
	}

	months := cmd.Months
	if months <= 0 {
		months = trends.DefaultMonths
	}

	p := s.pipeline(pipeline.Config{Months: months})
	doc, err := p.Trends(s.ctx, nil)
	if err != nil {
		s.fail(err)
		return Failure(err).err()
	}

	printSuccess(ctx.Stdout, "Wrote "+displayPath(s.styles, p.Writer().Path(report.TrendsFile)))
	printTrendsSummary(ctx.Stdout, s.styles, doc)
	return nil
}

// BudgetsCmd runs the budget tracker only.
type BudgetsCmd struct {
	Months int `help:"Number of months to track, ending with the current one." default:"7"`
}

// Run executes the budgets command.
func (cmd *BudgetsCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.validate(); err != nil {
		return err
	}

	p := s.pipeline(pipeline.Config{TrackMonths: cmd.Months})
	doc, created, err := p.Budgets(s.ctx)
	if created {
		printInfof(ctx.Stdout, "Created default budget configuration at %s", displayPath(s.styles, s.cfg.BudgetsPath()))
	}
	if err != nil {
		s.fail(err)
		return Failure(err).err()
	}

	printSuccess(ctx.Stdout, "Wrote "+displayPath(s.styles, p.Writer().Path(report.BudgetsFile)))
	printBudgetsSummary(ctx.Stdout, s.styles, doc)
	return nil
}
