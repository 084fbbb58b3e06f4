package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RemoveWidgetInput names the card to take off the shared layout and who
// asked for it.
type RemoveWidgetInput struct {
	WidgetID string `json:"widget_id"`
	ActorID  string `json:"actor_id"`
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

type removeService interface {
	RemoveWidget(ctx context.Context, widgetID string) error
}

type RemoveWidgetCommand struct {
	service   removeService
	telemetry Telemetry
}

func NewRemoveWidgetCommand(service removeService, telemetry Telemetry) *RemoveWidgetCommand {
	return &RemoveWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RemoveWidgetInput] = (*RemoveWidgetCommand)(nil)

// Execute removes the card. The actor travels on ctx for the audit event.
func (c *RemoveWidgetCommand) Execute(ctx context.Context, msg RemoveWidgetInput) error {
	switch {
	case c.service == nil:
		return errors.New("remove command requires service")
	case msg.WidgetID == "":
		return invalidInput("remove command requires widget id")
	}
	ctx = withActor(ctx, msg.ActorID, msg.UserID, msg.TenantID)
	if err := c.service.RemoveWidget(ctx, msg.WidgetID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.widget.remove", map[string]any{
		"store_id":  msg.TenantID,
		"widget_id": msg.WidgetID,
	})
	return nil
}
