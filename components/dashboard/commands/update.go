package commands

import (
	"context"
	"errors"
	"slices"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/retailjet/glance/components/dashboard"
)

// UpdateWidgetInput replaces a card's configuration or metadata. Nil maps
// leave the stored value untouched.
type UpdateWidgetInput struct {
	WidgetID      string         `json:"widget_id"`
	Configuration map[string]any `json:"configuration"`
	Metadata      map[string]any `json:"metadata"`
	ActorID       string         `json:"actor_id"`
	UserID        string         `json:"user_id"`
	TenantID      string         `json:"tenant_id"`
}

type updateService interface {
	UpdateWidget(ctx context.Context, req dashboard.UpdateWidgetRequest) error
}

type UpdateWidgetCommand struct {
	service   updateService
	telemetry Telemetry
}

func NewUpdateWidgetCommand(service updateService, telemetry Telemetry) *UpdateWidgetCommand {
	return &UpdateWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateWidgetInput] = (*UpdateWidgetCommand)(nil)

// Execute validates through the service, which checks the new configuration
// against the card schema.
func (c *UpdateWidgetCommand) Execute(ctx context.Context, msg UpdateWidgetInput) error {
	switch {
	case c.service == nil:
		return errors.New("update command requires service")
	case msg.WidgetID == "":
		return invalidInput("update command requires widget id")
	case msg.Configuration == nil && msg.Metadata == nil:
		return invalidInput("update command requires configuration or metadata")
	}
	ctx = withActor(ctx, msg.ActorID, msg.UserID, msg.TenantID)
	err := c.service.UpdateWidget(ctx, dashboard.UpdateWidgetRequest{
		WidgetID:      msg.WidgetID,
		Configuration: msg.Configuration,
		Metadata:      msg.Metadata,
		ActorID:       msg.ActorID,
		UserID:        msg.UserID,
		TenantID:      msg.TenantID,
	})
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.widget.update", map[string]any{
		"store_id":    msg.TenantID,
		"widget_id":   msg.WidgetID,
		"config_keys": sortedKeys(msg.Configuration),
	})
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
