package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/finboard/aggregate"
	"github.com/robinvdvleuten/finboard/pipeline"
	"github.com/robinvdvleuten/finboard/watch"
)

// WatchCmd regenerates the documents whenever the journal changes.
type WatchCmd struct {
	Categories aggregate.Mode `help:"How categories are aggregated (tree or flat)." enum:"tree,flat" default:"tree"`
}

// Run executes the watch command.
func (cmd *WatchCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.validate(); err != nil {
		return err
	}

	w := s.watcher(pipeline.Config{Categories: cmd.Categories})
	if err := w.Run(s.ctx); err != nil {
		s.fail(err)
		return NewCommandError(1)
	}
	return nil
}

// watcher returns a Watcher running a fresh pipeline on every change.
func (s *session) watcher(cfg pipeline.Config, opts ...watch.Option) *watch.Watcher {
	refresh := func(context.Context) error {
		return s.generate(cfg).Err
	}
	opts = append([]watch.Option{watch.WithLogger(s.logger)}, opts...)
	return watch.New(s.cfg.Journal, refresh, opts...)
}
