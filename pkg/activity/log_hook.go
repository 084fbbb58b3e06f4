package activity

import (
	"context"
	"log/slog"
)

// LogHook writes events to a structured logger.
type LogHook struct {
	Logger *slog.Logger
	Level  slog.Level
}

// Notify logs the event with its identifiers as attributes.
func (h LogHook) Notify(ctx context.Context, evt Event) error {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []slog.Attr{
		slog.String("verb", evt.Verb),
		slog.String("object_type", evt.ObjectType),
		slog.String("object_id", evt.ObjectID),
		slog.String("channel", evt.Channel),
	}
	if evt.ActorID != "" {
		attrs = append(attrs, slog.String("actor_id", evt.ActorID))
	}
	if evt.TenantID != "" {
		attrs = append(attrs, slog.String("tenant_id", evt.TenantID))
	}
	if evt.DefinitionCode != "" {
		attrs = append(attrs, slog.String("definition_code", evt.DefinitionCode))
	}
	if len(evt.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", evt.Metadata))
	}
	logger.LogAttrs(ctx, h.Level, "activity", attrs...)
	return nil
}
