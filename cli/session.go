package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/finboard/config"
	"github.com/robinvdvleuten/finboard/hledger"
	"github.com/robinvdvleuten/finboard/output"
	"github.com/robinvdvleuten/finboard/pipeline"
	"github.com/robinvdvleuten/finboard/telemetry"
)

// session is the state shared by a command run: the resolved configuration,
// the logger and the telemetry collector carried by ctx.
type session struct {
	kctx      *kong.Context
	cfg       *config.Config
	logger    *slog.Logger
	collector *telemetry.TimingCollector
	styles    *output.Styles

	ctx    context.Context
	cancel context.CancelFunc
}

// newSession loads the configuration and sets up logging and telemetry. The
// returned session's context is cancelled on interrupt.
func newSession(kctx *kong.Context, globals *Globals) (*session, error) {
	cfg, err := config.Load(globals.EnvFile)
	if err != nil {
		return nil, err
	}
	cfg.Apply(config.Overrides{
		Journal:    globals.Journal,
		DataDir:    globals.DataDir,
		Budgets:    globals.Budgets,
		HledgerBin: globals.Hledger,
		Debug:      globals.Debug,
	})

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(kctx.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx = cfg.WithContext(ctx)

	s := &session{
		kctx:   kctx,
		cfg:    cfg,
		logger: logger,
		styles: output.NewStyles(kctx.Stdout),
		ctx:    ctx,
		cancel: cancel,
	}

	if globals.Telemetry {
		s.collector = telemetry.NewTimingCollector(telemetry.WithLogger(logger))
		s.ctx = telemetry.WithCollector(s.ctx, s.collector)
	}

	logger.Debug("configuration loaded",
		"journal", cfg.Journal,
		"data_dir", cfg.DataDir,
		"budgets", cfg.BudgetsPath(),
		"hledger", cfg.HledgerBin,
	)

	return s, nil
}

// close releases the signal handler and prints the telemetry report.
func (s *session) close() {
	s.cancel()
	if s.collector != nil {
		_, _ = fmt.Fprintln(s.kctx.Stderr)
		s.collector.Report(s.kctx.Stderr, output.NewStyles(s.kctx.Stderr))
	}
}

// validate checks the configuration, printing the problem and a hint.
func (s *session) validate() error {
	if err := s.cfg.Validate(); err != nil {
		s.fail(err)
		return NewCommandError(1)
	}
	return nil
}

// fail prints err with a hint for the errors users can fix themselves.
func (s *session) fail(err error) {
	_, _ = fmt.Fprintln(s.kctx.Stderr, NewErrorRenderer().Render(err))
}

func (s *session) querier() hledger.Querier {
	return hledger.NewCLI(s.cfg.Journal, hledger.WithBinary(s.cfg.HledgerBin))
}

// pipeline creates a pipeline for the session's configuration. Every call
// starts a fresh run, including transaction ids.
func (s *session) pipeline(cfg pipeline.Config) *pipeline.Pipeline {
	cfg.DataDir = s.cfg.DataDir
	cfg.BudgetsPath = s.cfg.BudgetsPath()
	cfg.Logger = s.logger
	return pipeline.New(s.querier(), cfg)
}

// displayPath shortens path relative to the working directory.
func displayPath(styles *output.Styles, path string) string {
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, path); err == nil && !filepath.IsAbs(rel) && rel[0] != '.' {
			return styles.FilePath(rel)
		}
	}
	return styles.FilePath(path)
}
