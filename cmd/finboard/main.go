package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/finboard/cli"
)

var app struct {
	Version kong.VersionFlag `help:"Show version information"`
	cli.Commands
}

func main() {
	ctx := kong.Parse(&app,
		kong.Vars{
			"version": buildVersion(),
		},
		kong.Name("finboard"),
		kong.Description("Turns an hledger journal into JSON documents for a personal finance dashboard."),
		kong.UsageOnError(),
		kong.Bind(&app.Globals),
	)

	err := ctx.Run()

	var cmdErr *cli.CommandError
	if errors.As(err, &cmdErr) {
		os.Exit(cmdErr.ExitCode())
	}
	ctx.FatalIfErrorf(err)
}

// buildVersion combines cli.Version and cli.CommitSHA, both set via ldflags
// when building.
func buildVersion() string {
	if cli.Version == "" {
		cli.Version = "dev"
	}
	if cli.CommitSHA == "" {
		return cli.Version
	}
	return fmt.Sprintf("%s (%s)", cli.Version, cli.CommitSHA)
}
