package main

import (
	"context"

	"github.com/alecthomas/kong"
)

type cli struct {
	Scaffold scaffoldCmd `cmd:"" help:"Add a card to a manifest and optionally generate a provider stub."`
	Check    checkCmd    `cmd:"" help:"Validate manifests and their seeded placements."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Name("widgetctl"),
		kong.Description("Card manifest tooling for the Glance dashboard."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}
