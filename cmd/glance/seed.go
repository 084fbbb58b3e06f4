package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/retailjet/glance/components/retail"
	"github.com/retailjet/glance/pkg/config"
)

type seedCmd struct {
	File string `type:"existingfile" help:"Seed YAML, overriding storage.seed_file."`
}

func (cmd *seedCmd) Run(ctx context.Context, g *Globals) error {
	cfg, logger, err := loadConfig(g)
	if err != nil {
		return err
	}
	if cfg.Storage.Driver == config.DriverStatic {
		return errors.New("seed: storage.driver must be postgres or sqlite")
	}
	if cmd.File != "" {
		cfg.Storage.SeedFile = cmd.File
	}
	var src *retail.StaticRepository
	if cfg.Storage.SeedFile != "" {
		src, err = retail.LoadSeedFile(cfg.Storage.SeedFile)
	} else {
		src, err = retail.DefaultRepository()
	}
	if err != nil {
		return err
	}

	a := &app{cfg: cfg, logger: logger}
	defer a.Close()
	repo, err := a.openSQL(ctx)
	if err != nil {
		return err
	}
	if err := repo.Import(ctx, src); err != nil {
		return err
	}
	stores, err := repo.Stores(ctx)
	if err != nil {
		return err
	}
	for _, store := range stores {
		items, err := repo.Inventory(ctx, store.ID)
		if err != nil {
			return fmt.Errorf("seed: verify %s: %w", store.ID, err)
		}
		logger.Info("store imported",
			slog.String("store_id", store.ID),
			slog.String("inventory_items", humanize.Comma(int64(len(items)))),
		)
	}
	logger.Info("seed complete", slog.Int("stores", len(stores)), slog.String("driver", cfg.Storage.Driver))
	return nil
}
