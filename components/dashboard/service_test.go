package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConfigureLayoutFiltersByAuthorizer(t *testing.T) {
	store := &fakeWidgetStore{
		resolved: map[string][]WidgetInstance{
			AreaOverview: {
				{ID: "w1", DefinitionID: "partner.widget.custom"},
				{ID: "w2", DefinitionID: "partner.widget.custom"},
			},
		},
	}
	auth := allowListAuthorizer{allowed: map[string]bool{"w2": true}}
	service := NewService(Options{
		WidgetStore:     store,
		Authorizer:      auth,
		PreferenceStore: NewInMemoryPreferenceStore(),
	})
	layout, err := service.ConfigureLayout(context.Background(), ViewerContext{UserID: "user-1"})
	if err != nil {
		t.Fatalf("ConfigureLayout returned error: %v", err)
	}
	if len(layout.Areas[AreaOverview]) != 1 || layout.Areas[AreaOverview][0].ID != "w2" {
		t.Fatalf("expected filtered widget, got %#v", layout.Areas[AreaOverview])
	}
}

func TestConfigureLayoutAppliesHiddenOverrides(t *testing.T) {
	store := &fakeWidgetStore{
		resolved: map[string][]WidgetInstance{
			AreaOverview: {
				{ID: "w1", DefinitionID: "partner.widget.custom"},
				{ID: "w2", DefinitionID: "partner.widget.custom"},
			},
		},
	}
	prefs := NewInMemoryPreferenceStore()
	viewer := ViewerContext{UserID: "user-3"}
	_ = prefs.SaveLayoutOverrides(context.Background(), viewer, LayoutOverrides{
		AreaOrder:     map[string][]string{AreaOverview: {"w1", "w2"}},
		HiddenWidgets: map[string]bool{"w2": true},
	})
	service := NewService(Options{
		WidgetStore:     store,
		PreferenceStore: prefs,
	})
	layout, err := service.ConfigureLayout(context.Background(), viewer)
	if err != nil {
		t.Fatalf("ConfigureLayout returned error: %v", err)
	}
	widgets := layout.Areas[AreaOverview]
	if len(widgets) != 1 || widgets[0].ID != "w1" {
		t.Fatalf("expected hidden widget filtered, got %#v", widgets)
	}
}

func TestConfigureLayoutAppliesPreferenceOverrides(t *testing.T) {
	store := &fakeWidgetStore{
		resolved: map[string][]WidgetInstance{
			AreaOverview: {
				{ID: "w1", DefinitionID: "partner.widget.custom"},
				{ID: "w2", DefinitionID: "partner.widget.custom"},
			},
		},
	}
	prefs := NewInMemoryPreferenceStore()
	viewer := ViewerContext{UserID: "user-2"}
	_ = prefs.SaveLayoutOverrides(context.Background(), viewer, LayoutOverrides{
		AreaOrder: map[string][]string{AreaOverview: {"w2", "w1"}},
	})
	service := NewService(Options{
		WidgetStore:     store,
		PreferenceStore: prefs,
	})
	layout, err := service.ConfigureLayout(context.Background(), viewer)
	if err != nil {
		t.Fatalf("ConfigureLayout returned error: %v", err)
	}
	order := layout.Areas[AreaOverview]
	if len(order) != 2 || order[0].ID != "w2" {
		t.Fatalf("expected preference order applied, got %#v", order)
	}
}

func TestAddWidgetEmitsRefreshHook(t *testing.T) {
	store := &fakeWidgetStore{
		createInstanceFn: func(input CreateWidgetInstanceInput) (WidgetInstance, error) {
			return WidgetInstance{ID: "instance-1", DefinitionID: input.DefinitionID}, nil
		},
	}
	hook := &collectingHook{}
	service := NewService(Options{
		WidgetStore:     store,
		PreferenceStore: NewInMemoryPreferenceStore(),
		RefreshHook:     hook,
	})
	req := AddWidgetRequest{
		DefinitionID: "partner.widget.custom",
		AreaCode:     AreaOverview,
		Configuration: map[string]any{
			"metric": "total",
		},
		Roles: []string{"admin"},
		StartAt: func() *time.Time {
			now := time.Now().UTC()
			return &now
		}(),
	}
	if err := service.AddWidget(context.Background(), req); err != nil {
		t.Fatalf("AddWidget returned error: %v", err)
	}
	if hook.events != 1 {
		t.Fatalf("expected hook to be invoked, got %d", hook.events)
	}
}

type fakeWidgetStore struct {
	ensureAreaFn      func(def WidgetAreaDefinition) error
	ensureDefinition  func(def WidgetDefinition) error
	createInstanceFn  func(input CreateWidgetInstanceInput) (WidgetInstance, error)
	assignInstanceFn  func(input AssignWidgetInput) error
	reorderAreaFn     func(input ReorderAreaInput) error
	resolveAreaFn     func(input ResolveAreaInput) (ResolvedArea, error)
	resolved          map[string][]WidgetInstance
	instances         map[string]WidgetInstance
	assignCalls       []AssignWidgetInput
	reorderCalls      []ReorderAreaInput
	createdDefinition []string
}

func (f *fakeWidgetStore) EnsureArea(ctx context.Context, def WidgetAreaDefinition) (bool, error) {
	if f.ensureAreaFn != nil {
		return true, f.ensureAreaFn(def)
	}
	return true, nil
}

func (f *fakeWidgetStore) EnsureDefinition(ctx context.Context, def WidgetDefinition) (bool, error) {
	if f.ensureDefinition != nil {
		return true, f.ensureDefinition(def)
	}
	f.createdDefinition = append(f.createdDefinition, def.Code)
	return true, nil
}

func (f *fakeWidgetStore) CreateInstance(ctx context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error) {
	if f.createInstanceFn != nil {
		return f.createInstanceFn(input)
	}
	return WidgetInstance{ID: input.DefinitionID + "-instance", DefinitionID: input.DefinitionID}, nil
}

func (f *fakeWidgetStore) GetInstance(_ context.Context, id string) (WidgetInstance, error) {
	if inst, ok := f.instances[id]; ok {
		return inst, nil
	}
	return WidgetInstance{}, ErrWidgetNotFound
}

func (f *fakeWidgetStore) UpdateInstance(_ context.Context, input UpdateWidgetInstanceInput) (WidgetInstance, error) {
	inst, ok := f.instances[input.InstanceID]
	if !ok {
		return WidgetInstance{}, ErrWidgetNotFound
	}
	inst.Configuration = input.Configuration
	f.instances[input.InstanceID] = inst
	return inst, nil
}

func (f *fakeWidgetStore) DeleteInstance(context.Context, string) error { return nil }

func (f *fakeWidgetStore) AssignInstance(ctx context.Context, input AssignWidgetInput) error {
	f.assignCalls = append(f.assignCalls, input)
	if f.assignInstanceFn != nil {
		return f.assignInstanceFn(input)
	}
	return nil
}

func (f *fakeWidgetStore) ReorderArea(ctx context.Context, input ReorderAreaInput) error {
	f.reorderCalls = append(f.reorderCalls, input)
	if f.reorderAreaFn != nil {
		return f.reorderAreaFn(input)
	}
	return nil
}

func (f *fakeWidgetStore) ResolveArea(ctx context.Context, input ResolveAreaInput) (ResolvedArea, error) {
	if f.resolveAreaFn != nil {
		return f.resolveAreaFn(input)
	}
	if widgets, ok := f.resolved[input.AreaCode]; ok {
		return ResolvedArea{AreaCode: input.AreaCode, Widgets: widgets}, nil
	}
	return ResolvedArea{AreaCode: input.AreaCode, Widgets: []WidgetInstance{}}, nil
}

type allowListAuthorizer struct {
	allowed map[string]bool
}

func (a allowListAuthorizer) CanViewWidget(_ context.Context, _ ViewerContext, instance WidgetInstance) bool {
	return a.allowed[instance.ID]
}

type collectingHook struct {
	events int
}

func (h *collectingHook) WidgetUpdated(context.Context, WidgetEvent) error {
	h.events++
	return nil
}

var _ RefreshHook = (*collectingHook)(nil)

func TestPreferenceStoreRequiresUserID(t *testing.T) {
	store := NewInMemoryPreferenceStore()
	err := store.SaveLayoutOverrides(context.Background(), ViewerContext{}, LayoutOverrides{})
	if err == nil {
		t.Fatalf("expected error when user id missing")
	}
}

func TestPreferenceStoreDefaultOverrides(t *testing.T) {
	store := NewInMemoryPreferenceStore()
	overrides, err := store.LayoutOverrides(context.Background(), ViewerContext{})
	if err != nil {
		t.Fatalf("LayoutOverrides returned error: %v", err)
	}
	if overrides.AreaOrder == nil {
		t.Fatalf("expected default map")
	}
}

func TestNotifyWidgetUpdatedTelemetry(t *testing.T) {
	hook := &collectingHook{}
	telemetry := &testTelemetry{}
	service := NewService(Options{
		WidgetStore: NewInMemoryWidgetStoreStub(),
		RefreshHook: hook,
		Telemetry:   telemetry,
	})
	event := WidgetEvent{AreaCode: AreaOverview, Instance: WidgetInstance{ID: "w1"}, Reason: "custom"}
	if err := service.NotifyWidgetUpdated(context.Background(), event); err != nil {
		t.Fatalf("NotifyWidgetUpdated returned error: %v", err)
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry recorded event")
	}
}

// NewInMemoryWidgetStoreStub returns a store that supports Notify tests.
func NewInMemoryWidgetStoreStub() WidgetStore {
	return &fakeWidgetStore{
		createInstanceFn: func(input CreateWidgetInstanceInput) (WidgetInstance, error) {
			return WidgetInstance{ID: input.DefinitionID}, nil
		},
		assignInstanceFn: func(AssignWidgetInput) error { return nil },
		reorderAreaFn:    func(ReorderAreaInput) error { return nil },
		resolveAreaFn: func(input ResolveAreaInput) (ResolvedArea, error) {
			return ResolvedArea{AreaCode: input.AreaCode, Widgets: []WidgetInstance{}}, nil
		},
	}
}

type testTelemetry struct {
	calls int
}

func (t *testTelemetry) Record(context.Context, string, map[string]any) {
	t.calls++
}

func TestAddWidgetValidatesInputs(t *testing.T) {
	service := NewService(Options{WidgetStore: NewInMemoryWidgetStoreStub()})
	err := service.AddWidget(context.Background(), AddWidgetRequest{})
	if !errors.Is(err, errInvalidArea) && err == nil {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSavePreferencesRequiresUser(t *testing.T) {
	service := NewService(Options{})
	err := service.SavePreferences(context.Background(), ViewerContext{}, LayoutOverrides{})
	if err == nil {
		t.Fatalf("expected error when user missing")
	}
}

func TestSavePreferencesStoresOverrides(t *testing.T) {
	prefs := NewInMemoryPreferenceStore()
	service := NewService(Options{PreferenceStore: prefs})
	viewer := ViewerContext{UserID: "user-4"}
	overrides := LayoutOverrides{
		AreaOrder:     map[string][]string{AreaOverview: {"w2", "w1"}},
		HiddenWidgets: map[string]bool{"w3": true},
	}
	if err := service.SavePreferences(context.Background(), viewer, overrides); err != nil {
		t.Fatalf("SavePreferences returned error: %v", err)
	}
	stored, err := prefs.LayoutOverrides(context.Background(), viewer)
	if err != nil {
		t.Fatalf("LayoutOverrides returned error: %v", err)
	}
	if !stored.HiddenWidgets["w3"] {
		t.Fatalf("expected hidden widget persisted")
	}
}

func TestConfigureLayoutHonoursVisibilityWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)
	store := &fakeWidgetStore{
		resolved: map[string][]WidgetInstance{
			AreaOverview: {
				{ID: "future", Visibility: WidgetVisibility{StartAt: &later}},
				{ID: "expired", Visibility: WidgetVisibility{EndAt: &earlier}},
				{ID: "live", Visibility: WidgetVisibility{StartAt: &earlier, EndAt: &later}},
			},
		},
	}
	service := NewService(Options{WidgetStore: store, Now: func() time.Time { return now }})
	layout, err := service.ConfigureLayout(context.Background(), ViewerContext{UserID: "ruben"})
	if err != nil {
		t.Fatalf("ConfigureLayout returned error: %v", err)
	}
	widgets := layout.Areas[AreaOverview]
	if len(widgets) != 1 || widgets[0].ID != "live" {
		t.Fatalf("expected only the live widget, got %#v", widgets)
	}
}

func TestRoleAuthorizerRestrictsByRole(t *testing.T) {
	auth := RoleAuthorizer{}
	restricted := WidgetInstance{ID: "w1", Visibility: WidgetVisibility{Roles: []string{"owner"}}}
	if auth.CanViewWidget(context.Background(), ViewerContext{Roles: []string{"analyst"}}, restricted) {
		t.Fatalf("expected analyst to be denied")
	}
	if !auth.CanViewWidget(context.Background(), ViewerContext{Roles: []string{"owner"}}, restricted) {
		t.Fatalf("expected owner to be allowed")
	}
	if !auth.CanViewWidget(context.Background(), ViewerContext{}, WidgetInstance{ID: "open"}) {
		t.Fatalf("expected unrestricted widget to be visible")
	}
}

func TestConfigureLayoutRecordsProviderErrors(t *testing.T) {
	reg := NewRegistry()
	def := WidgetDefinition{Code: "partner.widget.flaky", Name: "Flaky"}
	if err := reg.RegisterDefinition(def); err != nil {
		t.Fatalf("RegisterDefinition returned error: %v", err)
	}
	if err := reg.RegisterProvider(def.Code, ProviderFunc(func(context.Context, WidgetContext) (WidgetData, error) {
		return nil, errors.New("upstream unavailable")
	})); err != nil {
		t.Fatalf("RegisterProvider returned error: %v", err)
	}
	store := &fakeWidgetStore{
		resolved: map[string][]WidgetInstance{
			AreaOverview: {{ID: "w1", DefinitionID: def.Code}},
		},
	}
	telemetry := &testTelemetry{}
	service := NewService(Options{WidgetStore: store, Providers: reg, Telemetry: telemetry})
	layout, err := service.ConfigureLayout(context.Background(), ViewerContext{UserID: "ruben", TenantID: "retailjet"})
	if err != nil {
		t.Fatalf("ConfigureLayout returned error: %v", err)
	}
	widget := layout.Areas[AreaOverview][0]
	if widget.Metadata["error"] != "upstream unavailable" {
		t.Fatalf("expected provider error in metadata, got %#v", widget.Metadata)
	}
	if _, ok := widget.Metadata["data"]; ok {
		t.Fatalf("expected no data for a failed provider")
	}
	if telemetry.calls < 2 {
		t.Fatalf("expected provider error and layout telemetry, got %d calls", telemetry.calls)
	}
}

func TestUpdateWidgetValidatesAgainstDefinition(t *testing.T) {
	store := &fakeWidgetStore{
		instances: map[string]WidgetInstance{
			"w1": {ID: "w1", DefinitionID: WidgetRecentSales, AreaCode: AreaOverview},
		},
	}
	service := NewService(Options{WidgetStore: store})
	err := service.UpdateWidget(context.Background(), UpdateWidgetRequest{
		WidgetID:      "w1",
		Configuration: map[string]any{"limit": 500},
	})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	if err := service.UpdateWidget(context.Background(), UpdateWidgetRequest{
		WidgetID:      "w1",
		Configuration: map[string]any{"limit": 10},
	}); err != nil {
		t.Fatalf("UpdateWidget returned error: %v", err)
	}
	if store.instances["w1"].Configuration["limit"] != 10 {
		t.Fatalf("expected configuration stored, got %#v", store.instances["w1"].Configuration)
	}
}

func TestUpdateWidgetUnknownInstance(t *testing.T) {
	service := NewService(Options{WidgetStore: &fakeWidgetStore{}})
	err := service.UpdateWidget(context.Background(), UpdateWidgetRequest{WidgetID: "missing"})
	if !errors.Is(err, ErrWidgetNotFound) {
		t.Fatalf("expected ErrWidgetNotFound, got %v", err)
	}
	if err := service.UpdateWidget(context.Background(), UpdateWidgetRequest{}); !errors.Is(err, errInvalidWidget) {
		t.Fatalf("expected errInvalidWidget, got %v", err)
	}
}

func TestServiceRequiresWidgetStore(t *testing.T) {
	service := NewService(Options{})
	if _, err := service.ConfigureLayout(context.Background(), ViewerContext{UserID: "ruben"}); !errors.Is(err, errMissingWidgetStore) {
		t.Fatalf("expected errMissingWidgetStore, got %v", err)
	}
	if err := service.RemoveWidget(context.Background(), "w1"); !errors.Is(err, errMissingWidgetStore) {
		t.Fatalf("expected errMissingWidgetStore, got %v", err)
	}
}

func TestResolveAreaAppliesOverrides(t *testing.T) {
	store := &fakeWidgetStore{
		resolved: map[string][]WidgetInstance{
			AreaInventory: {
				{ID: "w1", DefinitionID: "partner.widget.custom"},
				{ID: "w2", DefinitionID: "partner.widget.custom"},
				{ID: "w3", DefinitionID: "partner.widget.custom"},
			},
		},
	}
	prefs := NewInMemoryPreferenceStore()
	viewer := ViewerContext{UserID: "ruben"}
	_ = prefs.SaveLayoutOverrides(context.Background(), viewer, LayoutOverrides{
		AreaOrder:     map[string][]string{AreaInventory: {"w3"}},
		HiddenWidgets: map[string]bool{"w2": true},
	})
	service := NewService(Options{WidgetStore: store, PreferenceStore: prefs})
	area, err := service.ResolveArea(context.Background(), viewer, AreaInventory)
	if err != nil {
		t.Fatalf("ResolveArea returned error: %v", err)
	}
	if len(area.Widgets) != 2 || area.Widgets[0].ID != "w3" || area.Widgets[1].ID != "w1" {
		t.Fatalf("unexpected area widgets %#v", area.Widgets)
	}
	if area.Widgets[0].AreaCode != AreaInventory {
		t.Fatalf("expected area code stamped on widgets")
	}
	if _, err := service.ResolveArea(context.Background(), viewer, ""); !errors.Is(err, errInvalidArea) {
		t.Fatalf("expected errInvalidArea, got %v", err)
	}
}

func TestCreateWidgetWithMemoryStore(t *testing.T) {
	store := NewMemoryWidgetStore()
	ctx := context.Background()
	if err := RegisterAreas(ctx, store); err != nil {
		t.Fatalf("RegisterAreas returned error: %v", err)
	}
	service := NewService(Options{WidgetStore: store})
	inst, err := service.CreateWidget(ctx, AddWidgetRequest{
		DefinitionID:  WidgetTopProducts,
		AreaCode:      AreaOverview,
		TenantID:      "vitamax",
		Configuration: map[string]any{"limit": 3},
	})
	if err != nil {
		t.Fatalf("CreateWidget returned error: %v", err)
	}
	if inst.ID == "" || inst.AreaCode != AreaOverview {
		t.Fatalf("unexpected instance %#v", inst)
	}
	layout, err := service.ConfigureLayout(ctx, ViewerContext{UserID: "ruben", TenantID: "retailjet"})
	if err != nil {
		t.Fatalf("ConfigureLayout returned error: %v", err)
	}
	if len(layout.Areas[AreaOverview]) != 0 {
		t.Fatalf("expected vitamax widget hidden from retailjet, got %#v", layout.Areas[AreaOverview])
	}
	layout, err = service.ConfigureLayout(ctx, ViewerContext{UserID: "ruben", TenantID: "vitamax"})
	if err != nil {
		t.Fatalf("ConfigureLayout returned error: %v", err)
	}
	widgets := layout.Areas[AreaOverview]
	if len(widgets) != 1 {
		t.Fatalf("expected one vitamax widget, got %d", len(widgets))
	}
	if _, ok := widgets[0].Metadata["data"]; !ok {
		t.Fatalf("expected provider data attached, got %#v", widgets[0].Metadata)
	}
}

func TestStoreCannotChangeAnotherStoresWidget(t *testing.T) {
	store := NewMemoryWidgetStore()
	ctx := context.Background()
	if err := RegisterAreas(ctx, store); err != nil {
		t.Fatalf("RegisterAreas returned error: %v", err)
	}
	service := NewService(Options{WidgetStore: store})
	private, err := service.CreateWidget(ctx, AddWidgetRequest{
		DefinitionID: WidgetTopProducts,
		AreaCode:     AreaOverview,
		TenantID:     "retailjet",
	})
	if err != nil {
		t.Fatalf("CreateWidget returned error: %v", err)
	}
	intruder := ContextWithViewer(ctx, ViewerContext{UserID: "mo", TenantID: "vitamax"})

	err = service.UpdateWidget(ctx, UpdateWidgetRequest{
		WidgetID:      private.ID,
		Configuration: map[string]any{"limit": 1},
		TenantID:      "vitamax",
	})
	if !errors.Is(err, ErrWidgetNotFound) {
		t.Fatalf("expected ErrWidgetNotFound on foreign update, got %v", err)
	}
	if err := service.ReorderWidgets(intruder, AreaOverview, []string{private.ID}); !errors.Is(err, ErrWidgetNotFound) {
		t.Fatalf("expected ErrWidgetNotFound on foreign reorder, got %v", err)
	}
	if err := service.RemoveWidget(intruder, private.ID); !errors.Is(err, ErrWidgetNotFound) {
		t.Fatalf("expected ErrWidgetNotFound on foreign remove, got %v", err)
	}
	kept, err := store.GetInstance(ctx, private.ID)
	if err != nil {
		t.Fatalf("widget should survive foreign remove: %v", err)
	}
	if kept.Configuration["limit"] == 1 {
		t.Fatalf("foreign update leaked into %#v", kept.Configuration)
	}

	owner := ContextWithViewer(ctx, ViewerContext{UserID: "ana", TenantID: "retailjet"})
	if err := service.RemoveWidget(owner, private.ID); err != nil {
		t.Fatalf("owner remove returned error: %v", err)
	}
}
