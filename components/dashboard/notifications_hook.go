package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultEventsChannel is the pub/sub channel used for widget events.
const DefaultEventsChannel = "glance:dashboard:events"

// EventPublisher sends a payload on a named channel (Redis pub/sub in
// production).
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationsHook forwards widget events to other processes so their
// websocket clients refresh too.
type NotificationsHook struct {
	Publisher EventPublisher
	Channel   string
}

// WidgetUpdated publishes the event as JSON.
func (h *NotificationsHook) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if h == nil || h.Publisher == nil {
		return nil
	}
	channel := h.Channel
	if channel == "" {
		channel = DefaultEventsChannel
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("dashboard: encode widget event: %w", err)
	}
	return h.Publisher.Publish(ctx, channel, payload)
}

// DecodeWidgetEvent parses a payload produced by NotificationsHook.
func DecodeWidgetEvent(payload []byte) (WidgetEvent, error) {
	var event WidgetEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return WidgetEvent{}, fmt.Errorf("dashboard: decode widget event: %w", err)
	}
	return event, nil
}

// RefreshHooks fans an event out to several hooks and joins their errors.
type RefreshHooks []RefreshHook

// WidgetUpdated implements RefreshHook.
func (hooks RefreshHooks) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	var errs error
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook.WidgetUpdated(ctx, event); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}
