package budget

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "budgets-config.json"))
	assert.True(t, errors.Is(err, ErrNoConfig))
}

func TestLoadConfigJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgets-config.json")
	err := os.WriteFile(path, []byte(`{
  "budgets": [
    {
      "id": "budget-rent",
      "category": "expenses:housing:rent",
      "amount": 1200.50,
      "period": "monthly",
      "startDate": "2024-03-01",
      "rollover": true,
      "alerts": {"warningThreshold": 90, "criticalThreshold": 100}
    }
  ]
}`), 0o644)
	assert.NoError(t, err)

	cfg, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(cfg.Budgets))

	b := cfg.Budgets[0]
	assert.Equal(t, "budget-rent", b.ID)
	assert.Equal(t, "expenses:housing:rent", b.Category)
	assert.Equal(t, "1200.5", b.Amount.String())
	assert.Equal(t, PeriodMonthly, b.Period)
	assert.True(t, b.Rollover)
	assert.Equal(t, "90", b.Alerts.WarningThreshold.String())
	assert.Equal(t, "100", b.Alerts.CriticalThreshold.String())
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgets.yaml")
	err := os.WriteFile(path, []byte(`budgets:
  - id: budget-gym
    category: expenses:health:gym
    amount: 45
    startDate: "2024-01-01"
    alerts:
      warningThreshold: 80
      criticalThreshold: 95
`), 0o644)
	assert.NoError(t, err)

	cfg, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(cfg.Budgets))
	assert.Equal(t, "45", cfg.Budgets[0].Amount.String())
	// An empty period defaults to monthly.
	assert.Equal(t, PeriodMonthly, cfg.Budgets[0].Period)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgets-config.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"budgets": [`), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoConfig))
}

func TestValidate(t *testing.T) {
	valid := Default().Budgets[0]

	tests := []struct {
		name   string
		mutate func(b *Budget)
		ok     bool
	}{
		{name: "default", mutate: func(b *Budget) {}, ok: true},
		{name: "weekly period", mutate: func(b *Budget) { b.Period = "weekly" }},
		{name: "zero amount", mutate: func(b *Budget) { b.Amount = decimal.Zero }},
		{name: "negative amount", mutate: func(b *Budget) { b.Amount = decimal.NewFromInt(-5) }},
		{name: "missing category", mutate: func(b *Budget) { b.Category = "" }},
		{name: "warning above critical", mutate: func(b *Budget) {
			b.Alerts.WarningThreshold = decimal.NewFromInt(99)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid
			tt.mutate(&b)
			err := (&Config{Budgets: []Budget{b}}).Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 4, len(cfg.Budgets))

	amounts := map[string]string{}
	for _, b := range cfg.Budgets {
		amounts[b.Category] = b.Amount.String()
		assert.Equal(t, PeriodMonthly, b.Period)
		assert.Equal(t, "80", b.Alerts.WarningThreshold.String())
		assert.Equal(t, "95", b.Alerts.CriticalThreshold.String())
	}
	assert.Equal(t, map[string]string{
		"expenses:food:groceries": "500",
		"expenses:food:dining":    "250",
		"expenses:entertainment":  "100",
		"expenses:transport":      "200",
	}, amounts)
}

func TestBootstrap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "budgets-config.json")

	cfg, created, err := Bootstrap(path)
	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 4, len(cfg.Budgets))

	_, err = os.Stat(path)
	assert.NoError(t, err)

	// A second call loads the persisted file instead of rewriting it.
	cfg.Budgets = cfg.Budgets[:1]
	assert.NoError(t, cfg.Save(path))

	cfg, created, err = Bootstrap(path)
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, len(cfg.Budgets))
}

func TestSaveYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgets.yml")
	assert.NoError(t, Default().Save(path))

	cfg, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, len(Default().Budgets), len(cfg.Budgets))
	assert.Equal(t, "budget-groceries", cfg.Budgets[0].ID)
	assert.Equal(t, "500", cfg.Budgets[0].Amount.String())
}
