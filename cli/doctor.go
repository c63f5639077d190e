package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/finboard/classifier"
	"github.com/robinvdvleuten/finboard/pipeline"
)

// DoctorCmd provides utilities for debugging the pipeline.
type DoctorCmd struct {
	Classify ClassifyCmd `cmd:"" help:"Show the classified rows of the journal."`
	Query    QueryCmd    `cmd:"" help:"Run a raw hledger query and print its output."`
}

// ClassifyCmd dumps the classified transaction rows.
type ClassifyCmd struct {
	Limit int `help:"Only show the last N rows (0 shows all)." default:"0"`
}

// Run executes the classify command.
func (cmd *ClassifyCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.validate(); err != nil {
		return err
	}

	txns := s.pipeline(pipeline.Config{}).Gateway().Transactions(s.ctx)
	rows := classifier.New().ClassifyAll(txns)
	if cmd.Limit > 0 && len(rows) > cmd.Limit {
		rows = rows[len(rows)-cmd.Limit:]
	}

	_, _ = fmt.Fprintln(ctx.Stdout, repr.String(dumpRows(rows), repr.Indent("  "), repr.OmitEmpty(true)))
	printInfof(ctx.Stderr, "%d transactions, %d rows", len(txns), len(rows))
	return nil
}

// QueryCmd runs hledger with the configured journal.
type QueryCmd struct {
	Args []string `arg:"" passthrough:"" help:"Arguments passed to hledger, for example: balance expenses --tree."`
}

// Run executes the query command. Unlike the pipeline, a failing query is
// reported instead of being treated as an empty result.
func (cmd *QueryCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.validate(); err != nil {
		return err
	}

	s.logger.Debug("running query", "args", strings.Join(cmd.Args, " "))
	out, err := s.querier().Query(s.ctx, cmd.Args...)
	if err != nil {
		s.fail(err)
		return NewCommandError(1)
	}

	_, _ = fmt.Fprint(ctx.Stdout, out)
	return nil
}

// classifiedRow mirrors classifier.Transaction with the amount as text, so
// the dump shows the value rather than the decimal's internals.
type classifiedRow struct {
	ID          string
	Date        string
	Description string
	Amount      string
	Type        classifier.Type
	Category    string
	Account     string
	Status      string
	Note        string
}

func dumpRows(rows []classifier.Transaction) []classifiedRow {
	out := make([]classifiedRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, classifiedRow{
			ID:          row.ID,
			Date:        row.Date,
			Description: row.Description,
			Amount:      strings.TrimSpace(row.Amount.String() + " " + row.Currency),
			Type:        row.Type,
			Category:    row.Category,
			Account:     row.Account,
			Status:      string(row.Status),
			Note:        row.Note,
		})
	}
	return out
}
