package cli

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/finboard/config"
	"github.com/robinvdvleuten/finboard/hledger"
)

func TestErrorRendererHints(t *testing.T) {
	tests := []struct {
		name string
		err  error
		hint string
	}{
		{"missing journal", config.ErrNoJournal, "LEDGER_FILE"},
		{"wrapped missing binary", fmt.Errorf("hledger balance: %w", exec.ErrNotFound), "HLEDGER_BIN"},
		{"output limit", fmt.Errorf("query: %w", hledger.ErrOutputTooLarge), "10 MiB"},
	}

	r := NewErrorRenderer()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rendered := r.Render(test.err)
			assert.Contains(t, rendered, test.err.Error())
			assert.Contains(t, rendered, "hint: ")
			assert.Contains(t, rendered, test.hint)
		})
	}
}

func TestErrorRendererWithoutHint(t *testing.T) {
	rendered := NewErrorRenderer().Render(errors.New("boom"))
	assert.Contains(t, rendered, "boom")
	assert.False(t, strings.Contains(rendered, "hint"))
}
