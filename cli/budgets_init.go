package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/finboard/budget"
	"github.com/robinvdvleuten/finboard/output"
)

// BudgetsInitCmd writes the default budget configuration.
type BudgetsInitCmd struct {
	Force bool `help:"Overwrite an existing configuration without asking."`
}

// Run executes the budgets-init command.
func (cmd *BudgetsInitCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals)
	if err != nil {
		return err
	}
	defer s.close()

	return cmd.init(s.kctx, s.cfg.BudgetsPath(), promptYesNo).err()
}

type confirmFunc func(ctx *kong.Context, question string) (bool, error)

func (cmd *BudgetsInitCmd) init(ctx *kong.Context, path string, confirm confirmFunc) CommandResult {
	styles := output.NewStyles(ctx.Stdout)

	_, err := os.Stat(path)
	switch {
	case err == nil && !cmd.Force:
		ok, err := confirm(ctx, fmt.Sprintf("%s already exists. Overwrite it?", path))
		if err != nil {
			printError(ctx.Stderr, err.Error())
			return Failure(err)
		}
		if !ok {
			printInfof(ctx.Stdout, "Kept existing budget configuration at %s (use --force to overwrite)", displayPath(styles, path))
			return Success()
		}
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		printError(ctx.Stderr, err.Error())
		return Failure(err)
	}

	cfg := budget.Default()
	if err := cfg.Save(path); err != nil {
		printError(ctx.Stderr, fmt.Sprintf("failed to write budget configuration: %v", err))
		return Failure(err)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Wrote %d budgets to %s", len(cfg.Budgets), displayPath(styles, path)))
	return Success()
}
