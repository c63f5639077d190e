package cli

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/robinvdvleuten/finboard/budget"
	"github.com/robinvdvleuten/finboard/config"
	"github.com/robinvdvleuten/finboard/hledger"
)

// hint is a suggestion shown below errors matching target.
type hint struct {
	target error
	text   string
}

var hints = []hint{
	{exec.ErrNotFound, "install hledger (https://hledger.org/install) or point HLEDGER_BIN / --hledger at the binary"},
	{config.ErrNoJournal, "set LEDGER_FILE in the environment or .env, or pass --journal"},
	{hledger.ErrOutputTooLarge, "narrow the query; hledger output is limited to 10 MiB"},
	{budget.ErrNoConfig, "run `finboard budgets-init` to write the default budgets"},
}

// ErrorRenderer renders errors with terminal styling and a hint for the
// errors users can fix themselves.
type ErrorRenderer struct {
	hints []hint
}

// NewErrorRenderer creates a renderer with the built-in hints.
func NewErrorRenderer() *ErrorRenderer {
	return &ErrorRenderer{hints: hints}
}

// Render formats a single error.
func (r *ErrorRenderer) Render(err error) string {
	var buf strings.Builder
	buf.WriteString(errorStyle.Render(errorSymbol + " " + err.Error()))

	for _, h := range r.hints {
		if errors.Is(err, h.target) {
			buf.WriteString("\n  ")
			buf.WriteString(dimStyle.Render("hint: " + h.text))
			break
		}
	}

	return buf.String()
}
