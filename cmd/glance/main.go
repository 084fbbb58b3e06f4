package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type Globals struct {
	Config string `short:"c" type:"path" env:"GLANCE_CONFIG" help:"YAML configuration file."`
	Env    string `default:".env" help:"Dotenv file loaded before flags are parsed."`
}

type cli struct {
	Globals

	Serve  serveCmd  `cmd:"" default:"withargs" help:"Run the dashboard and chat server."`
	Seed   seedCmd   `cmd:"" help:"Migrate the SQL store and import the retail fixtures."`
	Chat   chatCmd   `cmd:"" help:"Ask the assistant one question from the terminal."`
	Layout layoutCmd `cmd:"" help:"Print a store's resolved dashboard layout as JSON."`
	Token  tokenCmd  `cmd:"" help:"Issue a signed viewer token for local testing."`
}

func main() {
	if err := loadDotenv(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "glance:", err)
		os.Exit(1)
	}

	var app cli
	kctx := kong.Parse(&app,
		kong.Name("glance"),
		kong.Description("RetailJet Glance dashboard backend."),
		kong.UsageOnError(),
	)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.FatalIfErrorf(kctx.Run(&app.Globals))
}

// loadDotenv reads --env before kong so env-backed flags see the values.
// Only a missing default file is ignored; an explicit --env must exist.
func loadDotenv(args []string) error {
	path, explicit := ".env", false
	for i, arg := range args {
		switch {
		case arg == "--env" && i+1 < len(args):
			path, explicit = args[i+1], true
		case strings.HasPrefix(arg, "--env="):
			path, explicit = strings.TrimPrefix(arg, "--env="), true
		}
	}
	err := godotenv.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
