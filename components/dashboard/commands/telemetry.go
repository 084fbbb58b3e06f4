package commands

import (
	"context"
	"fmt"

	dashboard "github.com/retailjet/glance/components/dashboard"
)

// Telemetry allows commands to emit structured events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", dashboard.ErrInvalidRequest, msg)
}

// withActor stores who performed a mutation on ctx for the audit trail.
// UserID falls back to the actor.
func withActor(ctx context.Context, actorID, userID, storeID string) context.Context {
	if userID == "" {
		userID = actorID
	}
	return dashboard.ContextWithActivity(ctx, dashboard.ActivityContext{
		ActorID:  actorID,
		UserID:   userID,
		TenantID: storeID,
	})
}
