package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/retailjet/glance/pkg/activity"
)

// Area codes for the dashboard tabs.
const (
	AreaOverview  = "glance.overview"
	AreaInventory = "glance.inventory"
	AreaAnalytics = "glance.analytics"
	AreaMarketing = "glance.marketing"
)

var defaultAreas = []string{
	AreaOverview,
	AreaInventory,
	AreaAnalytics,
	AreaMarketing,
}

var (
	errMissingWidgetStore = errors.New("dashboard: widget store not configured")
	errInvalidArea        = fmt.Errorf("%w: area code is required", ErrInvalidRequest)
	errInvalidDefinition  = fmt.Errorf("%w: definition id is required", ErrInvalidRequest)
	errInvalidWidget      = fmt.Errorf("%w: widget id is required", ErrInvalidRequest)
	errMissingViewer      = fmt.Errorf("%w: viewer context missing user id", ErrInvalidRequest)
)

// Options configures the dashboard Service. Every collaborator is an
// interface so hosts can swap storage, auth and transports.
type Options struct {
	WidgetStore     WidgetStore
	Authorizer      Authorizer
	PreferenceStore PreferenceStore
	Providers       ProviderRegistry
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Translator      TranslationService
	RenderCache     *ChartCache
	Logger          *slog.Logger
	ActivityHooks   activity.Hooks
	ActivityConfig  activity.Config
	Areas           []string
	Now             func() time.Time
}

// Service orchestrates widgets, layouts and preferences for every store.
type Service struct {
	opts     Options
	activity *activity.Emitter
	logger   *slog.Logger
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Authorizer == nil {
		opts.Authorizer = RoleAuthorizer{}
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Providers == nil {
		opts.Providers = NewRegistry()
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.PreferenceStore == nil {
		opts.PreferenceStore = NewInMemoryPreferenceStore()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		opts:     opts,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
		logger:   logger.With(slog.String("component", "dashboard")),
	}
}

// Registry exposes the provider registry, used by controllers and tooling.
func (s *Service) Registry() ProviderRegistry {
	return s.opts.Providers
}

// Areas returns the area codes rendered by ConfigureLayout.
func (s *Service) Areas() []string {
	return append([]string(nil), s.areaList()...)
}

// AddWidgetRequest captures the data required to create widget assignments.
type AddWidgetRequest struct {
	DefinitionID  string
	AreaCode      string
	Configuration map[string]any
	Position      *int
	Roles         []string
	StartAt       *time.Time
	EndAt         *time.Time
	ActorID       string
	UserID        string
	TenantID      string
}

// AddWidget creates a widget instance and assigns it to an area.
func (s *Service) AddWidget(ctx context.Context, req AddWidgetRequest) error {
	_, err := s.CreateWidget(ctx, req)
	return err
}

// CreateWidget is AddWidget returning the stored instance.
func (s *Service) CreateWidget(ctx context.Context, req AddWidgetRequest) (WidgetInstance, error) {
	store, err := s.widgetStore()
	if err != nil {
		return WidgetInstance{}, err
	}
	if req.AreaCode == "" {
		return WidgetInstance{}, errInvalidArea
	}
	if req.DefinitionID == "" {
		return WidgetInstance{}, errInvalidDefinition
	}
	if err := s.validateConfiguration(req.DefinitionID, req.Configuration); err != nil {
		return WidgetInstance{}, err
	}
	actor := ActivityContext{ActorID: req.ActorID, UserID: req.UserID, TenantID: req.TenantID}.merge(ctx)
	instance, err := store.CreateInstance(ctx, CreateWidgetInstanceInput{
		DefinitionID:  req.DefinitionID,
		TenantID:      req.TenantID,
		Configuration: req.Configuration,
		Visibility: WidgetVisibility{
			Roles:   req.Roles,
			StartAt: req.StartAt,
			EndAt:   req.EndAt,
		},
		Metadata: map[string]any{
			"user_id": actor.UserID,
		},
	})
	if err != nil {
		return WidgetInstance{}, err
	}
	if err := store.AssignInstance(ctx, AssignWidgetInput{
		AreaCode:   req.AreaCode,
		InstanceID: instance.ID,
		Position:   req.Position,
	}); err != nil {
		return WidgetInstance{}, err
	}
	instance.AreaCode = req.AreaCode
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: req.AreaCode,
		TenantID: req.TenantID,
		Instance: instance,
		Reason:   "add",
	}); err != nil {
		return WidgetInstance{}, err
	}
	payload := map[string]any{
		"area_code":     req.AreaCode,
		"definition_id": req.DefinitionID,
	}
	s.recordTelemetry(ctx, "dashboard.widget.add", payload)
	s.emitActivity(ctx, actor, "dashboard.widget.add", instance.ID, req.DefinitionID, payload)
	return instance, nil
}

// UpdateWidgetRequest replaces a widget's configuration.
type UpdateWidgetRequest struct {
	WidgetID      string
	Configuration map[string]any
	Metadata      map[string]any
	ActorID       string
	UserID        string
	TenantID      string
}

// UpdateWidget validates and stores a new configuration, then invalidates
// any cached render of the widget.
func (s *Service) UpdateWidget(ctx context.Context, req UpdateWidgetRequest) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if req.WidgetID == "" {
		return errInvalidWidget
	}
	current, err := store.GetInstance(ctx, req.WidgetID)
	if err != nil {
		return err
	}
	caller := ActivityContext{TenantID: req.TenantID}.merge(ctx).TenantID
	if !visibleTo(current, caller) {
		return fmt.Errorf("%w: %s", ErrWidgetNotFound, req.WidgetID)
	}
	if err := s.validateConfiguration(current.DefinitionID, req.Configuration); err != nil {
		return err
	}
	updated, err := store.UpdateInstance(ctx, UpdateWidgetInstanceInput{
		InstanceID:    req.WidgetID,
		Configuration: req.Configuration,
		Metadata:      req.Metadata,
	})
	if err != nil {
		return err
	}
	if s.opts.RenderCache != nil {
		s.opts.RenderCache.Invalidate(req.WidgetID)
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: updated.AreaCode,
		TenantID: updated.TenantID,
		Instance: updated,
		Reason:   "update",
	}); err != nil {
		return err
	}
	payload := map[string]any{
		"area_code":     updated.AreaCode,
		"definition_id": updated.DefinitionID,
	}
	s.recordTelemetry(ctx, "dashboard.widget.update", payload)
	actor := ActivityContext{ActorID: req.ActorID, UserID: req.UserID, TenantID: req.TenantID}.merge(ctx)
	s.emitActivity(ctx, actor, "dashboard.widget.update", updated.ID, updated.DefinitionID, payload)
	return nil
}

// RemoveWidget deletes the widget instance.
func (s *Service) RemoveWidget(ctx context.Context, widgetID string) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if widgetID == "" {
		return errInvalidWidget
	}
	existing, lookupErr := store.GetInstance(ctx, widgetID)
	if lookupErr != nil && !errors.Is(lookupErr, ErrWidgetNotFound) {
		return lookupErr
	}
	if lookupErr == nil && !visibleTo(existing, activityContextFrom(ctx).TenantID) {
		return fmt.Errorf("%w: %s", ErrWidgetNotFound, widgetID)
	}
	if err := store.DeleteInstance(ctx, widgetID); err != nil {
		return err
	}
	if s.opts.RenderCache != nil {
		s.opts.RenderCache.Invalidate(widgetID)
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: existing.AreaCode,
		TenantID: existing.TenantID,
		Instance: WidgetInstance{ID: widgetID, DefinitionID: existing.DefinitionID},
		Reason:   "delete",
	}); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.remove", map[string]any{"widget_id": widgetID})
	s.emitActivity(ctx, ActivityContext{}.merge(ctx), "dashboard.widget.remove", widgetID, existing.DefinitionID, map[string]any{
		"area_code":     existing.AreaCode,
		"definition_id": existing.DefinitionID,
	})
	return nil
}

// visibleTo reports whether a store may see and change inst. Shared starter
// cards carry no tenant; another store's cards are reported as missing.
func visibleTo(inst WidgetInstance, tenantID string) bool {
	return inst.TenantID == "" || inst.TenantID == tenantID
}

// ReorderWidgets changes widget ordering within an area.
func (s *Service) ReorderWidgets(ctx context.Context, areaCode string, widgetIDs []string) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if areaCode == "" {
		return errInvalidArea
	}
	caller := activityContextFrom(ctx).TenantID
	for _, id := range widgetIDs {
		inst, err := store.GetInstance(ctx, id)
		if errors.Is(err, ErrWidgetNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if !visibleTo(inst, caller) {
			return fmt.Errorf("%w: %s", ErrWidgetNotFound, id)
		}
	}
	if err := store.ReorderArea(ctx, ReorderAreaInput{
		AreaCode:  areaCode,
		WidgetIDs: widgetIDs,
	}); err != nil {
		return err
	}
	actor := ActivityContext{}.merge(ctx)
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: areaCode,
		TenantID: actor.TenantID,
		Reason:   "reorder",
	}); err != nil {
		return err
	}
	payload := map[string]any{
		"area_code": areaCode,
		"count":     len(widgetIDs),
	}
	s.recordTelemetry(ctx, "dashboard.widget.reorder", payload)
	s.emitActivity(ctx, actor, "dashboard.widget.reorder", areaCode, "", payload)
	return nil
}

// ConfigureLayout resolves widgets for each dashboard area respecting preferences + auth.
func (s *Service) ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error) {
	store, err := s.widgetStore()
	if err != nil {
		return Layout{}, err
	}
	overrides, err := s.opts.PreferenceStore.LayoutOverrides(ctx, viewer)
	if err != nil {
		return Layout{}, err
	}
	layout := Layout{Areas: make(map[string][]WidgetInstance)}
	for _, area := range s.areaList() {
		resolved, err := store.ResolveArea(ctx, ResolveAreaInput{
			AreaCode: area,
			TenantID: viewer.TenantID,
			Audience: viewer.Roles,
			Locale:   viewer.Locale,
		})
		if err != nil {
			return Layout{}, fmt.Errorf("dashboard: resolve %s: %w", area, err)
		}
		for i := range resolved.Widgets {
			resolved.Widgets[i].AreaCode = area
		}
		visible := applyHiddenFilter(s.authorized(ctx, viewer, resolved.Widgets), overrides.HiddenWidgets)
		ordered := applyOrderOverride(visible, overrides.AreaOrder[area])
		layout.Areas[area] = s.attachProviderData(ctx, viewer, ordered)
	}
	s.recordTelemetry(ctx, "dashboard.layout.resolve", map[string]any{
		"viewer": viewer.UserID,
		"tenant": viewer.TenantID,
	})
	return layout, nil
}

// ResolveArea retrieves a single area layout for the viewer.
func (s *Service) ResolveArea(ctx context.Context, viewer ViewerContext, areaCode string) (ResolvedArea, error) {
	store, err := s.widgetStore()
	if err != nil {
		return ResolvedArea{}, err
	}
	if areaCode == "" {
		return ResolvedArea{}, errInvalidArea
	}
	overrides, err := s.opts.PreferenceStore.LayoutOverrides(ctx, viewer)
	if err != nil {
		return ResolvedArea{}, err
	}
	resolved, err := store.ResolveArea(ctx, ResolveAreaInput{
		AreaCode: areaCode,
		TenantID: viewer.TenantID,
		Audience: viewer.Roles,
		Locale:   viewer.Locale,
	})
	if err != nil {
		return ResolvedArea{}, err
	}
	for i := range resolved.Widgets {
		resolved.Widgets[i].AreaCode = areaCode
	}
	visible := applyHiddenFilter(s.authorized(ctx, viewer, resolved.Widgets), overrides.HiddenWidgets)
	resolved.Widgets = s.attachProviderData(ctx, viewer, applyOrderOverride(visible, overrides.AreaOrder[areaCode]))
	s.recordTelemetry(ctx, "dashboard.area.resolve", map[string]any{
		"viewer":    viewer.UserID,
		"area_code": areaCode,
	})
	return resolved, nil
}

// NotifyWidgetUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyWidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if event.Instance.ID != "" && s.opts.RenderCache != nil {
		s.opts.RenderCache.Invalidate(event.Instance.ID)
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.event", map[string]any{
		"area_code": event.AreaCode,
		"widget_id": event.Instance.ID,
		"reason":    event.Reason,
	})
	return nil
}

// SavePreferences persists per-viewer layout overrides.
func (s *Service) SavePreferences(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return errMissingViewer
	}
	if overrides.AreaOrder == nil {
		overrides.AreaOrder = map[string][]string{}
	}
	if overrides.HiddenWidgets == nil {
		overrides.HiddenWidgets = map[string]bool{}
	}
	if err := s.opts.PreferenceStore.SaveLayoutOverrides(ctx, viewer, overrides); err != nil {
		return err
	}
	payload := map[string]any{
		"areas":  len(overrides.AreaOrder),
		"hidden": len(overrides.HiddenWidgets),
	}
	s.recordTelemetry(ctx, "dashboard.preferences.save", payload)
	actor := ActivityContext{ActorID: viewer.UserID, UserID: viewer.UserID, TenantID: viewer.TenantID}.merge(ctx)
	s.emitActivity(ctx, actor, "dashboard.preferences.save", viewer.UserID, "", payload)
	return nil
}

func (s *Service) widgetStore() (WidgetStore, error) {
	if s.opts.WidgetStore == nil {
		return nil, errMissingWidgetStore
	}
	return s.opts.WidgetStore, nil
}

func (s *Service) validateConfiguration(definitionID string, config map[string]any) error {
	if s.opts.ConfigValidator == nil || s.opts.Providers == nil {
		return nil
	}
	def, ok := s.opts.Providers.Definition(definitionID)
	if !ok {
		return nil
	}
	return s.opts.ConfigValidator.Validate(def, config)
}

func (s *Service) areaList() []string {
	if len(s.opts.Areas) > 0 {
		return s.opts.Areas
	}
	return defaultAreas
}

func (s *Service) authorized(ctx context.Context, viewer ViewerContext, widgets []WidgetInstance) []WidgetInstance {
	if len(widgets) == 0 {
		return widgets
	}
	now := s.opts.Now()
	filtered := make([]WidgetInstance, 0, len(widgets))
	for _, w := range widgets {
		if !w.Visibility.VisibleAt(now) {
			continue
		}
		if s.opts.Authorizer.CanViewWidget(ctx, viewer, w) {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

func (s *Service) attachProviderData(ctx context.Context, viewer ViewerContext, widgets []WidgetInstance) []WidgetInstance {
	if len(widgets) == 0 || s.opts.Providers == nil {
		return widgets
	}
	enriched := make([]WidgetInstance, len(widgets))
	copy(enriched, widgets)
	for i, inst := range enriched {
		provider, ok := s.opts.Providers.Provider(inst.DefinitionID)
		if !ok || provider == nil {
			continue
		}
		data, err := provider.Fetch(ctx, WidgetContext{
			Instance:   inst,
			Viewer:     viewer,
			Translator: s.opts.Translator,
		})
		enriched[i].Metadata = cloneMap(inst.Metadata)
		if enriched[i].Metadata == nil {
			enriched[i].Metadata = map[string]any{}
		}
		if err != nil {
			s.logger.WarnContext(ctx, "widget provider failed",
				slog.String("definition_id", inst.DefinitionID),
				slog.String("widget_id", inst.ID),
				slog.String("tenant_id", viewer.TenantID),
				slog.Any("error", err),
			)
			s.recordTelemetry(ctx, "dashboard.widget.provider_error", map[string]any{
				"definition_id": inst.DefinitionID,
				"error":         err.Error(),
			})
			enriched[i].Metadata["error"] = err.Error()
			continue
		}
		enriched[i].Metadata["data"] = data
	}
	return enriched
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func (s *Service) emitActivity(ctx context.Context, actor ActivityContext, verb, objectID, definitionCode string, payload map[string]any) {
	if !s.activity.Enabled() {
		return
	}
	objectType := "widget_instance"
	switch verb {
	case "dashboard.widget.reorder":
		objectType = "widget_area"
	case "dashboard.preferences.save":
		objectType = "layout_preferences"
	}
	err := s.activity.Emit(ctx, activity.Event{
		Verb:           verb,
		ActorID:        actor.ActorID,
		UserID:         actor.UserID,
		TenantID:       actor.TenantID,
		ObjectType:     objectType,
		ObjectID:       objectID,
		DefinitionCode: definitionCode,
		Metadata:       payload,
		OccurredAt:     s.opts.Now().UTC(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "activity hook failed", slog.String("verb", verb), slog.Any("error", err))
	}
}

// RoleAuthorizer admits a widget when the viewer carries one of its roles,
// or when the widget is not role restricted.
type RoleAuthorizer struct{}

// CanViewWidget implements Authorizer.
func (RoleAuthorizer) CanViewWidget(_ context.Context, viewer ViewerContext, instance WidgetInstance) bool {
	if len(instance.Visibility.Roles) == 0 {
		return true
	}
	for _, role := range instance.Visibility.Roles {
		if viewer.HasRole(role) {
			return true
		}
	}
	return false
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return nil
}
