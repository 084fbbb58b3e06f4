package dashboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/retailjet/glance/pkg/activity"
)

const defaultFeedCapacity = 50

// ActivityItem is a recent dashboard change shown next to the layout.
type ActivityItem struct {
	Verb       string        `json:"verb"`
	ActorID    string        `json:"actor_id,omitempty"`
	ObjectType string        `json:"object_type"`
	ObjectID   string        `json:"object_id"`
	OccurredAt time.Time     `json:"occurred_at"`
	Ago        time.Duration `json:"-"`
}

// ActivityFeed keeps the latest audit events per store. It is an
// activity.Hook so the service feeds it alongside the other sinks.
type ActivityFeed struct {
	mu       sync.Mutex
	capacity int
	now      func() time.Time
	items    map[string][]ActivityItem
}

var _ activity.Hook = (*ActivityFeed)(nil)

// NewActivityFeed keeps up to capacity entries per store.
func NewActivityFeed(capacity int) *ActivityFeed {
	if capacity <= 0 {
		capacity = defaultFeedCapacity
	}
	return &ActivityFeed{capacity: capacity, now: time.Now, items: map[string][]ActivityItem{}}
}

// Notify implements activity.Hook.
func (f *ActivityFeed) Notify(_ context.Context, event activity.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := append(f.items[event.TenantID], ActivityItem{
		Verb:       event.Verb,
		ActorID:    event.ActorID,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		OccurredAt: event.OccurredAt,
	})
	if len(list) > f.capacity {
		list = list[len(list)-f.capacity:]
	}
	f.items[event.TenantID] = list
	return nil
}

// Recent returns up to limit entries for the viewer's store, newest first.
// Entries without a store are included for every viewer.
func (f *ActivityFeed) Recent(_ context.Context, viewer ViewerContext, limit int) []ActivityItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	merged := append(append([]ActivityItem(nil), f.items[viewer.TenantID]...), f.sharedLocked(viewer.TenantID)...)
	now := f.now()
	out := make([]ActivityItem, 0, len(merged))
	for i := len(merged) - 1; i >= 0; i-- {
		item := merged[i]
		item.Ago = now.Sub(item.OccurredAt)
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func (f *ActivityFeed) sharedLocked(tenantID string) []ActivityItem {
	if tenantID == "" {
		return nil
	}
	return f.items[""]
}
