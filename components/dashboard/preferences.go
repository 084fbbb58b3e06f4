package dashboard

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryPreferenceStore keeps layout overrides per (user, locale).
type InMemoryPreferenceStore struct {
	mu   sync.RWMutex
	data map[string]LayoutOverrides
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{
		data: make(map[string]LayoutOverrides),
	}
}

// LayoutOverrides returns a copy of the stored overrides, or empty defaults.
func (s *InMemoryPreferenceStore) LayoutOverrides(_ context.Context, viewer ViewerContext) (LayoutOverrides, error) {
	if viewer.UserID != "" {
		s.mu.RLock()
		overrides, ok := s.data[preferenceKey(viewer)]
		s.mu.RUnlock()
		if ok {
			out := cloneOverrides(overrides)
			if out.Locale == "" {
				out.Locale = viewer.Locale
			}
			return out, nil
		}
	}
	return cloneOverrides(LayoutOverrides{Locale: viewer.Locale}), nil
}

// SaveLayoutOverrides persists overrides for a viewer.
func (s *InMemoryPreferenceStore) SaveLayoutOverrides(_ context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return fmt.Errorf("dashboard: preference store requires viewer user id")
	}
	if overrides.Locale == "" {
		overrides.Locale = viewer.Locale
	}
	s.mu.Lock()
	s.data[preferenceKey(viewer)] = cloneOverrides(overrides)
	s.mu.Unlock()
	return nil
}

func preferenceKey(viewer ViewerContext) string {
	if viewer.Locale == "" {
		return viewer.UserID
	}
	return viewer.UserID + "::" + viewer.Locale
}

func cloneOverrides(in LayoutOverrides) LayoutOverrides {
	out := LayoutOverrides{
		Locale:        in.Locale,
		AreaOrder:     make(map[string][]string, len(in.AreaOrder)),
		HiddenWidgets: make(map[string]bool, len(in.HiddenWidgets)),
	}
	for area, ids := range in.AreaOrder {
		out.AreaOrder[area] = append([]string(nil), ids...)
	}
	for id, hidden := range in.HiddenWidgets {
		if hidden {
			out.HiddenWidgets[id] = true
		}
	}
	return out
}
