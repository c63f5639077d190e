package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/finboard/budget"
)

func testContext() (*kong.Context, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &kong.Context{Kong: &kong.Kong{Stdout: &stdout, Stderr: &stderr}}, &stdout, &stderr
}

func answer(yes bool, err error) (confirmFunc, *int) {
	calls := 0
	return func(*kong.Context, string) (bool, error) {
		calls++
		return yes, err
	}, &calls
}

func TestBudgetsInitWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "budgets.json")
	ctx, stdout, _ := testContext()
	confirm, calls := answer(false, nil)

	result := (&BudgetsInitCmd{}).init(ctx, path, confirm)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, 0, *calls)
	assert.Contains(t, stdout.String(), "Wrote 4 budgets")

	cfg, err := budget.LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, len(budget.Default().Budgets), len(cfg.Budgets))
}

func TestBudgetsInitKeepsExistingWhenDeclined(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgets.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"budgets":[]}`), 0o644))
	ctx, stdout, _ := testContext()
	confirm, calls := answer(false, nil)

	result := (&BudgetsInitCmd{}).init(ctx, path, confirm)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, 1, *calls)
	assert.Contains(t, stdout.String(), "Kept existing")

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, `{"budgets":[]}`, string(data))
}

func TestBudgetsInitOverwritesWhenConfirmed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgets.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"budgets":[]}`), 0o644))
	ctx, _, _ := testContext()
	confirm, calls := answer(true, nil)

	result := (&BudgetsInitCmd{}).init(ctx, path, confirm)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, 1, *calls)

	cfg, err := budget.LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, 4, len(cfg.Budgets))
}

func TestBudgetsInitForceSkipsPrompt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgets.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("budgets: []\n"), 0o644))
	ctx, _, _ := testContext()
	confirm, calls := answer(false, nil)

	result := (&BudgetsInitCmd{Force: true}).init(ctx, path, confirm)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, 0, *calls)

	cfg, err := budget.LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, 4, len(cfg.Budgets))
}

func TestBudgetsInitPromptFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgets.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
	ctx, _, stderr := testContext()
	confirm, _ := answer(false, errors.New("no tty"))

	result := (&BudgetsInitCmd{}).init(ctx, path, confirm)
	assert.Equal(t, 1, result.ExitCode)
	assert.Error(t, result.err())
	assert.Contains(t, stderr.String(), "no tty")
}
