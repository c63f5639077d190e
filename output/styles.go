// Package output provides styling helpers for terminal output.
package output

import (
	"io"

	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
)

// Styles provides styled output helpers for the CLI.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates a new Styles instance for the given writer. Colours are
// dropped when w is not a terminal.
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w),
	}
}

func (s *Styles) color(text, color string) termenv.Style {
	return s.output.String(text).Foreground(s.output.Color(color))
}

// Success returns a styled success string (green + bold).
func (s *Styles) Success(text string) string {
	return s.color(text, "2").Bold().String()
}

// Error returns a styled error string (red + bold).
func (s *Styles) Error(text string) string {
	return s.color(text, "1").Bold().String()
}

// Warning returns a styled warning (yellow + bold).
func (s *Styles) Warning(text string) string {
	return s.color(text, "3").Bold().String()
}

// FilePath returns a styled file path (cyan).
func (s *Styles) FilePath(text string) string {
	return s.color(text, "6").String()
}

// Category returns a styled category or account name (yellow).
func (s *Styles) Category(text string) string {
	return s.color(text, "3").String()
}

// Amount returns a styled amount (magenta).
func (s *Styles) Amount(text string) string {
	return s.color(text, "5").String()
}

// Money formats amount with two decimals behind its currency symbol.
func (s *Styles) Money(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = "$"
	}
	if amount.IsNegative() {
		return s.Amount("-" + currency + amount.Neg().StringFixed(2))
	}
	return s.Amount(currency + amount.StringFixed(2))
}

// BudgetStatus colours a budget status: critical red, warning yellow and
// anything else green.
func (s *Styles) BudgetStatus(status string) string {
	switch status {
	case "critical":
		return s.Error(status)
	case "warning":
		return s.Warning(status)
	default:
		return s.Success(status)
	}
}

// Keyword returns a styled keyword (bold).
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim returns dimmed text for secondary information.
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Timing styles a duration: slow operations red, everything else dimmed.
func (s *Styles) Timing(text string, slow bool) string {
	if slow {
		return s.color(text, "1").String()
	}
	return s.Dim(text)
}
