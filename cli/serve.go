package cli

import (
	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"github.com/robinvdvleuten/finboard/pipeline"
	"github.com/robinvdvleuten/finboard/watch"
	"github.com/robinvdvleuten/finboard/web"
)

// ServeCmd serves the generated documents over HTTP.
type ServeCmd struct {
	Port   int    `help:"Port to listen on." default:"8080"`
	Host   string `help:"Address to bind to." default:"127.0.0.1"`
	Watch  bool   `help:"Regenerate the documents when the journal changes and notify clients."`
	Static string `help:"Directory with a built front end to serve at /." type:"existingdir"`
}

// Run executes the serve command. With --watch the server and the watcher
// run until interrupted or until either of them fails.
func (cmd *ServeCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals)
	if err != nil {
		return err
	}
	defer s.close()

	if cmd.Watch {
		if err := s.validate(); err != nil {
			return err
		}
	}

	opts := []web.Option{web.WithLogger(s.logger), web.WithVersion(Version)}
	if cmd.Static != "" {
		opts = append(opts, web.WithStaticDir(cmd.Static))
	}
	server := web.New(cmd.Port, s.cfg.DataDir, opts...)
	server.Host = cmd.Host

	g, gctx := errgroup.WithContext(s.ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})
	if cmd.Watch {
		w := s.watcher(pipeline.Config{}, watch.OnRefresh(server.Reload))
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	printInfof(ctx.Stdout, "Serving %s on %s", displayPath(s.styles, s.cfg.DataDir), s.styles.FilePath("http://"+server.Addr()))
	if err := g.Wait(); err != nil {
		s.fail(err)
		return NewCommandError(1)
	}
	return nil
}
