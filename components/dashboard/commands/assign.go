package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/retailjet/glance/components/dashboard"
)

// AssignWidgetInput places a new card in an area. Result receives the stored
// instance when set.
type AssignWidgetInput struct {
	Request dashboard.AddWidgetRequest
	Result  *dashboard.WidgetInstance `json:"-"`
}

type assignService interface {
	CreateWidget(ctx context.Context, req dashboard.AddWidgetRequest) (dashboard.WidgetInstance, error)
}

// AssignWidgetCommand translates incoming requests into service calls and emits
// telemetry so operators can observe widget assignment activity.
type AssignWidgetCommand struct {
	service   assignService
	telemetry Telemetry
}

// NewAssignWidgetCommand creates a command instance.
func NewAssignWidgetCommand(service assignService, telemetry Telemetry) *AssignWidgetCommand {
	return &AssignWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AssignWidgetInput] = (*AssignWidgetCommand)(nil)

// Execute delegates to the dashboard service.
func (c *AssignWidgetCommand) Execute(ctx context.Context, msg AssignWidgetInput) error {
	if c.service == nil {
		return errors.New("assign command requires service")
	}
	req := msg.Request
	ctx = withActor(ctx, req.ActorID, req.UserID, req.TenantID)
	instance, err := c.service.CreateWidget(ctx, req)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = instance
	}
	c.telemetry.Record(ctx, "dashboard.widget.assign", map[string]any{
		"definition_id": req.DefinitionID,
		"area_code":     req.AreaCode,
		"store_id":      req.TenantID,
	})
	return nil
}
