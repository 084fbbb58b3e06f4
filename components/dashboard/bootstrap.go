package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// RegisterAreas ensures the tab areas exist in the store.
func RegisterAreas(ctx context.Context, store WidgetStore) error {
	if store == nil {
		return errMissingWidgetStore
	}
	for _, area := range DefaultAreaDefinitions() {
		if _, err := store.EnsureArea(ctx, area); err != nil {
			return fmt.Errorf("dashboard: register area %s: %w", area.Code, err)
		}
	}
	return nil
}

// RegisterDefinitions stores the built-in card definitions and mirrors them
// into the registry when one is given.
func RegisterDefinitions(ctx context.Context, store WidgetStore, registry ProviderRegistry) error {
	if store == nil {
		return errMissingWidgetStore
	}
	for _, def := range DefaultWidgetDefinitions() {
		if _, err := store.EnsureDefinition(ctx, def); err != nil {
			return fmt.Errorf("dashboard: register definition %s: %w", def.Code, err)
		}
		if registry != nil {
			if err := registry.RegisterDefinition(def); err != nil {
				return fmt.Errorf("dashboard: register definition in registry %s: %w", def.Code, err)
			}
		}
	}
	return nil
}

// SeedLayout creates the starter layout shared by every store, plus any
// extra placements (from manifests). Failures are joined so one bad card
// does not stop the rest.
func SeedLayout(ctx context.Context, service *Service, extra ...AddWidgetRequest) error {
	if service == nil {
		return errors.New("dashboard: service is required to seed layout")
	}
	var seedErr error
	for _, req := range append(DefaultSeedWidgets(), extra...) {
		if err := service.AddWidget(ctx, req); err != nil {
			seedErr = errors.Join(seedErr, fmt.Errorf("seed %s: %w", req.DefinitionID, err))
		}
	}
	return seedErr
}
