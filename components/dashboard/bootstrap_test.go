package dashboard

import (
	"context"
	"errors"
	"testing"
)

type fakeRegistry struct {
	count int
}

func (f *fakeRegistry) RegisterDefinition(def WidgetDefinition) error {
	if def.Code == "" {
		return errors.New("missing code")
	}
	f.count++
	return nil
}

func (fakeRegistry) RegisterProvider(string, Provider) error { return nil }
func (fakeRegistry) Definition(string) (WidgetDefinition, bool) {
	return WidgetDefinition{}, false
}
func (fakeRegistry) Provider(string) (Provider, bool) { return nil, false }
func (fakeRegistry) Definitions() []WidgetDefinition  { return nil }

func TestRegisterAreasIdempotent(t *testing.T) {
	store := NewMemoryWidgetStore()
	ctx := context.Background()
	if err := RegisterAreas(ctx, store); err != nil {
		t.Fatalf("RegisterAreas returned error: %v", err)
	}
	firstCount := len(store.areas)
	if firstCount != len(DefaultAreaDefinitions()) {
		t.Fatalf("expected %d areas, got %d", len(DefaultAreaDefinitions()), firstCount)
	}
	if err := RegisterAreas(ctx, store); err != nil {
		t.Fatalf("RegisterAreas second run returned error: %v", err)
	}
	if len(store.areas) != firstCount {
		t.Fatalf("expected idempotent area registration")
	}
}

func TestRegisterDefinitionsRegistersRegistry(t *testing.T) {
	store := NewMemoryWidgetStore()
	reg := &fakeRegistry{}
	if err := RegisterDefinitions(context.Background(), store, reg); err != nil {
		t.Fatalf("RegisterDefinitions returned error: %v", err)
	}
	if len(store.definitions) != len(DefaultWidgetDefinitions()) {
		t.Fatalf("expected %d defs, got %d", len(DefaultWidgetDefinitions()), len(store.definitions))
	}
	if reg.count != len(DefaultWidgetDefinitions()) {
		t.Fatalf("expected registry to receive %d defs, got %d", len(DefaultWidgetDefinitions()), reg.count)
	}
}

func TestSeedLayoutAddsWidgets(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryWidgetStore()
	if err := RegisterAreas(ctx, store); err != nil {
		t.Fatalf("RegisterAreas returned error: %v", err)
	}
	service := NewService(Options{WidgetStore: store})
	if err := SeedLayout(ctx, service); err != nil {
		t.Fatalf("SeedLayout returned error: %v", err)
	}
	if store.Len() != len(DefaultSeedWidgets()) {
		t.Fatalf("expected %d instances, got %d", len(DefaultSeedWidgets()), store.Len())
	}
	layout, err := service.ConfigureLayout(ctx, ViewerContext{UserID: "ruben", TenantID: "retailjet"})
	if err != nil {
		t.Fatalf("ConfigureLayout returned error: %v", err)
	}
	total := 0
	for _, widgets := range layout.Areas {
		total += len(widgets)
		for _, w := range widgets {
			if _, ok := w.Metadata["error"]; ok {
				t.Fatalf("seeded widget %s failed: %v", w.DefinitionID, w.Metadata["error"])
			}
		}
	}
	if total != len(DefaultSeedWidgets()) {
		t.Fatalf("expected every seeded widget in the layout, got %d", total)
	}
}

func TestSeedLayoutJoinsErrors(t *testing.T) {
	ctx := context.Background()
	service := NewService(Options{WidgetStore: NewMemoryWidgetStore()})
	err := SeedLayout(ctx, service, AddWidgetRequest{DefinitionID: WidgetKPIOverview})
	if !errors.Is(err, errInvalidArea) {
		t.Fatalf("expected invalid area error, got %v", err)
	}
}
