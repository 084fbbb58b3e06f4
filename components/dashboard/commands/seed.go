package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/retailjet/glance/components/dashboard"
)

// SeedDashboardInput controls bootstrap behavior.
type SeedDashboardInput struct {
	SeedLayout bool
	// Manifests are extra widget manifests whose placements are seeded too.
	Manifests []*dashboard.WidgetManifestDocument
}

type manifestLoader interface {
	LoadManifestDocument(doc *dashboard.WidgetManifestDocument) error
}

// SeedDashboardCommand registers areas/definitions and optionally seeds layout.
type SeedDashboardCommand struct {
	store     dashboard.WidgetStore
	registry  dashboard.ProviderRegistry
	service   *dashboard.Service
	telemetry Telemetry
}

// NewSeedDashboardCommand wires dependencies.
func NewSeedDashboardCommand(store dashboard.WidgetStore, registry dashboard.ProviderRegistry, service *dashboard.Service, telemetry Telemetry) *SeedDashboardCommand {
	return &SeedDashboardCommand{
		store:     store,
		registry:  registry,
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[SeedDashboardInput] = (*SeedDashboardCommand)(nil)

// Execute runs the bootstrap pipeline.
func (c *SeedDashboardCommand) Execute(ctx context.Context, msg SeedDashboardInput) error {
	if c.store == nil {
		return errors.New("seed command requires widget store")
	}
	if err := dashboard.RegisterAreas(ctx, c.store); err != nil {
		return err
	}
	if err := dashboard.RegisterDefinitions(ctx, c.store, c.registry); err != nil {
		return err
	}
	var extra []dashboard.AddWidgetRequest
	for _, manifest := range msg.Manifests {
		loader, ok := c.registry.(manifestLoader)
		if !ok {
			return errors.New("seed command registry cannot load manifests")
		}
		if err := loader.LoadManifestDocument(manifest); err != nil {
			return err
		}
		extra = append(extra, manifest.Placements()...)
	}
	if msg.SeedLayout && c.service != nil {
		if err := dashboard.SeedLayout(ctx, c.service, extra...); err != nil {
			return err
		}
	}
	c.telemetry.Record(ctx, "dashboard.seed", map[string]any{
		"seed_layout": msg.SeedLayout,
		"manifests":   len(msg.Manifests),
	})
	return nil
}
