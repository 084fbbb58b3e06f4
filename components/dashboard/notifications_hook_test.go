package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	channel string
	payload []byte
	err     error
}

func (p *capturePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.channel = channel
	p.payload = payload
	return p.err
}

func TestNotificationsHookPublishesJSON(t *testing.T) {
	pub := &capturePublisher{}
	hook := &NotificationsHook{Publisher: pub}
	event := WidgetEvent{AreaCode: AreaOverview, TenantID: "retailjet", Reason: "add", Instance: WidgetInstance{ID: "inst-1", DefinitionID: WidgetKPIOverview}}

	require.NoError(t, hook.WidgetUpdated(context.Background(), event))
	assert.Equal(t, DefaultEventsChannel, pub.channel)

	decoded, err := DecodeWidgetEvent(pub.payload)
	require.NoError(t, err)
	assert.Equal(t, event.TenantID, decoded.TenantID)
	assert.Equal(t, event.Instance.ID, decoded.Instance.ID)
	assert.Equal(t, "add", decoded.Reason)
}

func TestNotificationsHookWithoutPublisherIsNoop(t *testing.T) {
	var hook *NotificationsHook
	assert.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{}))
}

func TestRefreshHooksJoinErrors(t *testing.T) {
	boom := errors.New("redis down")
	broadcast := NewBroadcastHook()
	events, cancel := broadcast.Subscribe()
	defer cancel()

	hooks := RefreshHooks{broadcast, nil, &NotificationsHook{Publisher: &capturePublisher{err: boom}}}
	err := hooks.WidgetUpdated(context.Background(), WidgetEvent{Reason: "update"})
	assert.ErrorIs(t, err, boom)
	select {
	case evt := <-events:
		assert.Equal(t, "update", evt.Reason)
	default:
		t.Fatalf("expected broadcast subscriber to receive event")
	}
}
