package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/retailjet/glance/components/dashboard"
	"github.com/retailjet/glance/components/dashboard/queries"
)

type layoutCmd struct {
	Store  string   `default:"retailjet" help:"Store whose layout is resolved."`
	User   string   `default:"demo" help:"Viewer user id."`
	Role   []string `default:"owner" help:"Viewer roles."`
	Locale string   `help:"Viewer locale."`
	Area   string   `help:"Only print this area (e.g. glance.inventory)."`

	out io.Writer
}

func (cmd *layoutCmd) Run(ctx context.Context, g *Globals) error {
	cfg, logger, err := loadConfig(g)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return cmd.print(ctx, queries.NewLayoutQuery(a.service))
}

func (cmd *layoutCmd) print(ctx context.Context, query *queries.LayoutQuery) error {
	layout, err := query.Query(ctx, dashboard.ViewerContext{
		UserID:   cmd.User,
		TenantID: cmd.Store,
		Roles:    cmd.Role,
		Locale:   cmd.Locale,
	})
	if err != nil {
		return err
	}
	var payload any = layout
	if cmd.Area != "" {
		widgets, ok := layout.Areas[cmd.Area]
		if !ok {
			return fmt.Errorf("layout: %w: %s", dashboard.ErrAreaNotFound, cmd.Area)
		}
		payload = widgets
	}
	out := cmd.out
	if out == nil {
		out = os.Stdout
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
