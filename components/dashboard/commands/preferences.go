package commands

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/retailjet/glance/components/dashboard"
)

// SaveLayoutPreferencesInput carries a viewer's tab ordering and hidden cards.
type SaveLayoutPreferencesInput struct {
	Viewer        dashboard.ViewerContext `json:"viewer"`
	AreaOrder     map[string][]string     `json:"area_order"`
	HiddenWidgets []string                `json:"hidden_widget_ids"`
}

type preferenceService interface {
	SavePreferences(ctx context.Context, viewer dashboard.ViewerContext, overrides dashboard.LayoutOverrides) error
}

// SaveLayoutPreferencesCommand stores one viewer's overrides for their store.
type SaveLayoutPreferencesCommand struct {
	service   preferenceService
	telemetry Telemetry
}

func NewSaveLayoutPreferencesCommand(service preferenceService, telemetry Telemetry) *SaveLayoutPreferencesCommand {
	return &SaveLayoutPreferencesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveLayoutPreferencesInput] = (*SaveLayoutPreferencesCommand)(nil)

func (c *SaveLayoutPreferencesCommand) Execute(ctx context.Context, msg SaveLayoutPreferencesInput) error {
	if c.service == nil {
		return errors.New("preferences command requires service")
	}
	if strings.TrimSpace(msg.Viewer.UserID) == "" {
		return invalidInput("preferences command requires viewer user id")
	}
	overrides := dashboard.LayoutOverrides{
		AreaOrder:     make(map[string][]string, len(msg.AreaOrder)),
		HiddenWidgets: map[string]bool{},
	}
	for area, ids := range msg.AreaOrder {
		area = strings.TrimSpace(area)
		if area == "" {
			continue
		}
		if ids = compactIDs(ids); len(ids) > 0 {
			overrides.AreaOrder[area] = ids
		}
	}
	for _, id := range compactIDs(msg.HiddenWidgets) {
		overrides.HiddenWidgets[id] = true
	}

	ctx = dashboard.ContextWithViewer(ctx, msg.Viewer)
	if err := c.service.SavePreferences(ctx, msg.Viewer, overrides); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.preferences.save", map[string]any{
		"store_id": msg.Viewer.TenantID,
		"user_id":  msg.Viewer.UserID,
		"areas":    len(overrides.AreaOrder),
		"hidden":   len(overrides.HiddenWidgets),
	})
	return nil
}

// compactIDs trims ids and drops blanks and repeats, keeping first-seen order.
func compactIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
