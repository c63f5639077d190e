// Package config loads finboard's settings from .env files, the environment
// and command line overrides.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/robinvdvleuten/finboard/report"
)

// Environment variables read by Load.
const (
	EnvJournal = "LEDGER_FILE"
	EnvDataDir = "FINBOARD_DATA_DIR"
	EnvBudgets = "FINBOARD_BUDGETS"
	EnvHledger = "HLEDGER_BIN"
	EnvDebug   = "FINBOARD_DEBUG"
)

const (
	DefaultDataDir = "data"
	DefaultHledger = "hledger"
	defaultJournal = "sample.journal"
)

// ErrNoJournal is returned by Validate when no journal is configured.
var ErrNoJournal = errors.New("no journal configured")

// Config is the resolved configuration of a run.
type Config struct {
	Journal    string
	DataDir    string
	Budgets    string
	HledgerBin string
	Debug      bool

	// journalIsDefault is set while Journal is derived from DataDir.
	journalIsDefault bool
}

// Overrides are values given on the command line. Empty fields keep the
// loaded value.
type Overrides struct {
	Journal    string
	DataDir    string
	Budgets    string
	HledgerBin string
	Debug      bool
}

// Load reads envFile (or .env in the working directory when envFile is
// empty, ignoring a missing file) and then the environment. Variables that
// are already set win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	debug, err := parseBoolEnv(EnvDebug, false)
	if err != nil {
		return nil, err
	}

	dataDir := getEnvOrDefault(EnvDataDir, DefaultDataDir)
	journal := os.Getenv(EnvJournal)
	return &Config{
		Journal:          getEnvOrDefault(EnvJournal, filepath.Join(dataDir, defaultJournal)),
		DataDir:          dataDir,
		Budgets:          os.Getenv(EnvBudgets),
		HledgerBin:       getEnvOrDefault(EnvHledger, DefaultHledger),
		Debug:            debug,
		journalIsDefault: journal == "",
	}, nil
}

// Apply overwrites the configuration with the non-empty overrides. A default
// journal follows an overridden data directory.
func (c *Config) Apply(o Overrides) {
	if o.DataDir != "" {
		c.DataDir = o.DataDir
		if c.journalIsDefault {
			c.Journal = filepath.Join(c.DataDir, defaultJournal)
		}
	}
	if o.Journal != "" {
		c.Journal = o.Journal
		c.journalIsDefault = false
	}
	if o.Budgets != "" {
		c.Budgets = o.Budgets
	}
	if o.HledgerBin != "" {
		c.HledgerBin = o.HledgerBin
	}
	if o.Debug {
		c.Debug = true
	}
}

// BudgetsPath returns the budget configuration file, defaulting to
// budgets-config.json inside the data directory.
func (c *Config) BudgetsPath() string {
	if c.Budgets != "" {
		return c.Budgets
	}
	return filepath.Join(c.DataDir, report.BudgetConfigFile)
}

// Validate checks that the journal exists and the data directory is a
// directory or can be created.
func (c *Config) Validate() error {
	if c.Journal == "" {
		return ErrNoJournal
	}
	info, err := os.Stat(c.Journal)
	if err != nil {
		return fmt.Errorf("journal %s: %w", c.Journal, err)
	}
	if info.IsDir() {
		return fmt.Errorf("journal %s is a directory", c.Journal)
	}

	if c.DataDir == "" {
		return errors.New("no data directory configured")
	}
	if info, err := os.Stat(c.DataDir); err == nil && !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", c.DataDir)
	}

	return nil
}

type contextKey struct{}

// WithContext returns a new context with the Config attached.
func (c *Config) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext retrieves the Config from ctx, or nil when none is attached.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(contextKey{}).(*Config); ok {
		return cfg
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean value for %s: %s", key, value)
	}
	return parsed, nil
}
