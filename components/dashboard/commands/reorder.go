package commands

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
)

// ReorderWidgetsInput lists an area's card ids in their new order.
type ReorderWidgetsInput struct {
	AreaCode  string   `json:"area_code"`
	WidgetIDs []string `json:"widget_ids"`
	ActorID   string   `json:"actor_id"`
	TenantID  string   `json:"tenant_id"`
}

type reorderService interface {
	ReorderWidgets(ctx context.Context, areaCode string, widgetIDs []string) error
}

type ReorderWidgetsCommand struct {
	service   reorderService
	telemetry Telemetry
}

func NewReorderWidgetsCommand(service reorderService, telemetry Telemetry) *ReorderWidgetsCommand {
	return &ReorderWidgetsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderWidgetsInput] = (*ReorderWidgetsCommand)(nil)

// Execute rejects empty or repeated ids; a partial order would drop cards.
func (c *ReorderWidgetsCommand) Execute(ctx context.Context, msg ReorderWidgetsInput) error {
	if c.service == nil {
		return errors.New("reorder command requires service")
	}
	area := strings.TrimSpace(msg.AreaCode)
	if area == "" {
		return invalidInput("reorder command requires area code")
	}
	ids := compactIDs(msg.WidgetIDs)
	if len(ids) == 0 {
		return invalidInput("reorder command requires widget ids")
	}
	if len(ids) != len(msg.WidgetIDs) {
		return invalidInput("reorder command received blank or repeated widget ids")
	}

	ctx = withActor(ctx, msg.ActorID, "", msg.TenantID)
	if err := c.service.ReorderWidgets(ctx, area, ids); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.widget.reorder", map[string]any{
		"store_id":  msg.TenantID,
		"area_code": area,
		"count":     len(ids),
	})
	return nil
}
