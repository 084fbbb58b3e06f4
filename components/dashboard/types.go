package dashboard

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrWidgetNotFound is returned by stores when an instance id is unknown.
	ErrWidgetNotFound = errors.New("dashboard: widget not found")
	// ErrAreaNotFound is returned when an area code is not registered.
	ErrAreaNotFound = errors.New("dashboard: area not found")
	// ErrDefinitionNotFound is returned when a widget definition is unknown.
	ErrDefinitionNotFound = errors.New("dashboard: definition not found")
	// ErrInvalidRequest is wrapped by every missing or malformed input error.
	ErrInvalidRequest = errors.New("dashboard: invalid request")
)

// WidgetStore persists areas, definitions and widget instances.
// Implementations must be safe for concurrent use.
type WidgetStore interface {
	EnsureArea(ctx context.Context, def WidgetAreaDefinition) (bool, error)
	EnsureDefinition(ctx context.Context, def WidgetDefinition) (bool, error)
	CreateInstance(ctx context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error)
	GetInstance(ctx context.Context, instanceID string) (WidgetInstance, error)
	UpdateInstance(ctx context.Context, input UpdateWidgetInstanceInput) (WidgetInstance, error)
	DeleteInstance(ctx context.Context, instanceID string) error
	AssignInstance(ctx context.Context, input AssignWidgetInput) error
	ReorderArea(ctx context.Context, input ReorderAreaInput) error
	ResolveArea(ctx context.Context, input ResolveAreaInput) (ResolvedArea, error)
}

// Authorizer determines if a viewer can see a widget instance.
type Authorizer interface {
	CanViewWidget(ctx context.Context, viewer ViewerContext, instance WidgetInstance) bool
}

// PreferenceStore returns layout overrides per viewer.
type PreferenceStore interface {
	LayoutOverrides(ctx context.Context, viewer ViewerContext) (LayoutOverrides, error)
	SaveLayoutOverrides(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error
}

// ProviderRegistry stores widget definitions and their data providers.
type ProviderRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterProvider(code string, provider Provider) error
	Definition(code string) (WidgetDefinition, bool)
	Provider(code string) (Provider, bool)
	Definitions() []WidgetDefinition
}

// RefreshHook notifies transports (REST/WebSocket) about widget changes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// WidgetAreaDefinition models a dashboard tab.
type WidgetAreaDefinition struct {
	Code        string `json:"code" yaml:"code"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Tab         string `json:"tab,omitempty" yaml:"tab,omitempty"`
}

// WidgetDefinition describes a card: its schema, category and display names.
type WidgetDefinition struct {
	Code                 string            `json:"code" yaml:"code"`
	Name                 string            `json:"name" yaml:"name"`
	NameLocalized        map[string]string `json:"name_localized,omitempty" yaml:"name_localized,omitempty"`
	Description          string            `json:"description,omitempty" yaml:"description,omitempty"`
	DescriptionLocalized map[string]string `json:"description_localized,omitempty" yaml:"description_localized,omitempty"`
	Schema               map[string]any    `json:"schema,omitempty" yaml:"schema,omitempty"`
	Category             string            `json:"category,omitempty" yaml:"category,omitempty"`
}

// WidgetInstance is a placed card.
type WidgetInstance struct {
	ID            string           `json:"id"`
	DefinitionID  string           `json:"definition"`
	AreaCode      string           `json:"area,omitempty"`
	TenantID      string           `json:"tenant_id,omitempty"`
	Configuration map[string]any   `json:"config,omitempty"`
	Metadata      map[string]any   `json:"metadata,omitempty"`
	Visibility    WidgetVisibility `json:"-"`
}

// CreateWidgetInstanceInput configures new instances.
type CreateWidgetInstanceInput struct {
	DefinitionID  string
	TenantID      string
	Configuration map[string]any
	Visibility    WidgetVisibility
	Metadata      map[string]any
}

// UpdateWidgetInstanceInput replaces the configuration and merges metadata.
type UpdateWidgetInstanceInput struct {
	InstanceID    string
	Configuration map[string]any
	Metadata      map[string]any
}

// WidgetVisibility defines runtime visibility constraints.
type WidgetVisibility struct {
	Roles    []string
	StartAt  *time.Time
	EndAt    *time.Time
	Audience []string
}

// VisibleAt reports whether the schedule window contains t.
func (v WidgetVisibility) VisibleAt(t time.Time) bool {
	if v.StartAt != nil && t.Before(*v.StartAt) {
		return false
	}
	if v.EndAt != nil && t.After(*v.EndAt) {
		return false
	}
	return true
}

// AssignWidgetInput associates a widget instance with an area.
type AssignWidgetInput struct {
	AreaCode   string
	InstanceID string
	Position   *int
}

// ReorderAreaInput represents a new ordering for widgets within an area.
type ReorderAreaInput struct {
	AreaCode  string
	WidgetIDs []string
}

// ResolveAreaInput requests widget instances for a given area and audience.
type ResolveAreaInput struct {
	AreaCode string
	TenantID string
	Audience []string
	Locale   string
}

// ResolvedArea is a container for widgets returned by the store.
type ResolvedArea struct {
	AreaCode string           `json:"area"`
	Widgets  []WidgetInstance `json:"widgets"`
}

// LayoutOverrides captures per-viewer adjustments.
type LayoutOverrides struct {
	Locale        string              `json:"locale,omitempty"`
	AreaOrder     map[string][]string `json:"area_order,omitempty"`
	HiddenWidgets map[string]bool     `json:"hidden_widgets,omitempty"`
}

// ViewerContext identifies who is looking at the dashboard and for which store.
type ViewerContext struct {
	UserID   string   `json:"user_id"`
	TenantID string   `json:"tenant_id"`
	Roles    []string `json:"roles,omitempty"`
	Locale   string   `json:"locale,omitempty"`
}

// HasRole reports whether the viewer carries the role.
func (v ViewerContext) HasRole(role string) bool {
	for _, r := range v.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Layout describes the resolved widget instances per dashboard area.
type Layout struct {
	Areas map[string][]WidgetInstance `json:"areas"`
}

// WidgetEvent describes changes that transports might care about.
type WidgetEvent struct {
	AreaCode string         `json:"area_code,omitempty"`
	TenantID string         `json:"tenant_id,omitempty"`
	Instance WidgetInstance `json:"instance"`
	Reason   string         `json:"reason"`
}
