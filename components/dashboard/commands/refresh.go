package commands

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/retailjet/glance/components/dashboard"
)

const defaultRefreshReason = "refresh"

// RefreshWidgetInput asks every dashboard open on a store to reload a card
// or a whole tab.
type RefreshWidgetInput struct {
	Event dashboard.WidgetEvent `json:"event"`
}

type refreshNotifier interface {
	NotifyWidgetUpdated(ctx context.Context, event dashboard.WidgetEvent) error
}

// RefreshWidgetCommand publishes store-scoped refresh events.
type RefreshWidgetCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

func NewRefreshWidgetCommand(service refreshNotifier, telemetry Telemetry) *RefreshWidgetCommand {
	return &RefreshWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshWidgetInput] = (*RefreshWidgetCommand)(nil)

// Execute requires a store so one seller's refresh never reaches another
// seller's dashboards.
func (c *RefreshWidgetCommand) Execute(ctx context.Context, msg RefreshWidgetInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	event := msg.Event
	event.TenantID = strings.TrimSpace(event.TenantID)
	if event.TenantID == "" {
		return invalidInput("refresh command requires store id")
	}
	if event.AreaCode == "" && event.Instance.ID == "" {
		return invalidInput("refresh command requires an area or widget")
	}
	if event.Reason == "" {
		event.Reason = defaultRefreshReason
	}
	if err := c.service.NotifyWidgetUpdated(ctx, event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.widget.refresh", map[string]any{
		"store_id":  event.TenantID,
		"area_code": event.AreaCode,
		"widget_id": event.Instance.ID,
		"reason":    event.Reason,
	})
	return nil
}
