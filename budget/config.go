// Package budget loads budget definitions and tracks monthly spending
// against them.
package budget

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrNoConfig is returned when the budget configuration file does not exist.
var ErrNoConfig = errors.New("budget configuration not found")

// Period is the length of a budget period.
type Period string

// PeriodMonthly is the only supported period.
const PeriodMonthly Period = "monthly"

// Alerts holds the usage percentages that raise a budget's status.
type Alerts struct {
	WarningThreshold  decimal.Decimal `json:"warningThreshold"`
	CriticalThreshold decimal.Decimal `json:"criticalThreshold"`
}

// Budget is a spending limit for one category.
type Budget struct {
	ID        string          `json:"id"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Period    Period          `json:"period"`
	StartDate string          `json:"startDate"`
	Rollover  bool            `json:"rollover"`
	Alerts    Alerts          `json:"alerts"`
}

// Config is the budget configuration document.
type Config struct {
	Budgets []Budget `json:"budgets"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	budget := func(id, category string, amount int64) Budget {
		return Budget{
			ID:        id,
			Category:  category,
			Amount:    decimal.NewFromInt(amount),
			Period:    PeriodMonthly,
			StartDate: "2024-01-01",
			Rollover:  false,
			Alerts: Alerts{
				WarningThreshold:  decimal.NewFromInt(80),
				CriticalThreshold: decimal.NewFromInt(95),
			},
		}
	}

	return &Config{
		Budgets: []Budget{
			budget("budget-groceries", "expenses:food:groceries", 500),
			budget("budget-dining", "expenses:food:dining", 250),
			budget("budget-entertainment", "expenses:entertainment", 100),
			budget("budget-transport", "expenses:transport", 200),
		},
	}
}

// Validate checks every budget. An empty period defaults to monthly.
func (c *Config) Validate() error {
	var errs []error
	for i := range c.Budgets {
		b := &c.Budgets[i]
		if b.Period == "" {
			b.Period = PeriodMonthly
		}
		if b.Period != PeriodMonthly {
			errs = append(errs, fmt.Errorf("budget %q: unsupported period %q", b.ID, b.Period))
		}
		if b.Category == "" {
			errs = append(errs, fmt.Errorf("budget %q: category is required", b.ID))
		}
		if !b.Amount.IsPositive() {
			errs = append(errs, fmt.Errorf("budget %q: amount must be positive", b.ID))
		}
		if b.Alerts.WarningThreshold.GreaterThan(b.Alerts.CriticalThreshold) {
			errs = append(errs, fmt.Errorf("budget %q: warning threshold exceeds critical threshold", b.ID))
		}
	}
	return errors.Join(errs...)
}

// yamlConfig mirrors Config with plain numbers for YAML files.
type yamlConfig struct {
	Budgets []yamlBudget `yaml:"budgets"`
}

type yamlBudget struct {
	ID        string  `yaml:"id"`
	Category  string  `yaml:"category"`
	Amount    float64 `yaml:"amount"`
	Period    string  `yaml:"period"`
	StartDate string  `yaml:"startDate"`
	Rollover  bool    `yaml:"rollover"`
	Alerts    struct {
		WarningThreshold  float64 `yaml:"warningThreshold"`
		CriticalThreshold float64 `yaml:"criticalThreshold"`
	} `yaml:"alerts"`
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadConfig reads a JSON or YAML (by extension) configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoConfig)
		}
		return nil, fmt.Errorf("failed to read budget configuration: %w", err)
	}

	cfg := &Config{}
	if isYAML(path) {
		var raw yamlConfig
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML budget configuration: %w", err)
		}
		for _, rb := range raw.Budgets {
			cfg.Budgets = append(cfg.Budgets, Budget{
				ID:        rb.ID,
				Category:  rb.Category,
				Amount:    decimal.NewFromFloat(rb.Amount),
				Period:    Period(rb.Period),
				StartDate: rb.StartDate,
				Rollover:  rb.Rollover,
				Alerts: Alerts{
					WarningThreshold:  decimal.NewFromFloat(rb.Alerts.WarningThreshold),
					CriticalThreshold: decimal.NewFromFloat(rb.Alerts.CriticalThreshold),
				},
			})
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse budget configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid budget configuration %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration as JSON or YAML (by extension).
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)

	if isYAML(path) {
		raw := yamlConfig{Budgets: make([]yamlBudget, 0, len(c.Budgets))}
		for _, b := range c.Budgets {
			rb := yamlBudget{
				ID:        b.ID,
				Category:  b.Category,
				Amount:    b.Amount.InexactFloat64(),
				Period:    string(b.Period),
				StartDate: b.StartDate,
				Rollover:  b.Rollover,
			}
			rb.Alerts.WarningThreshold = b.Alerts.WarningThreshold.InexactFloat64()
			rb.Alerts.CriticalThreshold = b.Alerts.CriticalThreshold.InexactFloat64()
			raw.Budgets = append(raw.Budgets, rb)
		}
		data, err = yaml.Marshal(raw)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode budget configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write budget configuration: %w", err)
	}

	return nil
}

// Bootstrap loads the configuration at path. When none exists the default
// configuration is written there and returned with created set.
func Bootstrap(path string) (cfg *Config, created bool, err error) {
	cfg, err = LoadConfig(path)
	if err == nil {
		return cfg, false, nil
	}
	if !errors.Is(err, ErrNoConfig) {
		return nil, false, err
	}

	cfg = Default()
	if err := cfg.Save(path); err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}
