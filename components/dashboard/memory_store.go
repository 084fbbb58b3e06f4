package dashboard

import (
	"context"
	"fmt"
	"sync"
)

// MemoryWidgetStore is a process-local WidgetStore. Instances without a
// tenant are shared by every store; tenant instances are private.
type MemoryWidgetStore struct {
	mu           sync.Mutex
	areas        map[string]WidgetAreaDefinition
	definitions  map[string]WidgetDefinition
	instances    map[string]WidgetInstance
	assignments  map[string][]string
	nextInstance int
}

// NewMemoryWidgetStore builds an empty store.
func NewMemoryWidgetStore() *MemoryWidgetStore {
	return &MemoryWidgetStore{
		areas:       map[string]WidgetAreaDefinition{},
		definitions: map[string]WidgetDefinition{},
		instances:   map[string]WidgetInstance{},
		assignments: map[string][]string{},
	}
}

// EnsureArea upserts an area and reports whether it was new.
func (s *MemoryWidgetStore) EnsureArea(_ context.Context, def WidgetAreaDefinition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.areas[def.Code]
	s.areas[def.Code] = def
	return !exists, nil
}

// EnsureDefinition upserts a definition and reports whether it was new.
func (s *MemoryWidgetStore) EnsureDefinition(_ context.Context, def WidgetDefinition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.definitions[def.Code]
	s.definitions[def.Code] = def
	return !exists, nil
}

// CreateInstance stores a new instance with an "inst-N" id.
func (s *MemoryWidgetStore) CreateInstance(_ context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextInstance++
	instance := WidgetInstance{
		ID:            fmt.Sprintf("inst-%d", s.nextInstance),
		DefinitionID:  input.DefinitionID,
		TenantID:      input.TenantID,
		Configuration: cloneMap(input.Configuration),
		Metadata:      cloneMap(input.Metadata),
		Visibility:    input.Visibility,
	}
	s.instances[instance.ID] = instance
	return copyInstance(instance), nil
}

// GetInstance returns a copy of the instance with its current area.
func (s *MemoryWidgetStore) GetInstance(_ context.Context, instanceID string) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[instanceID]
	if !ok {
		return WidgetInstance{}, fmt.Errorf("%w: %s", ErrWidgetNotFound, instanceID)
	}
	inst.AreaCode = s.areaOf(instanceID)
	return copyInstance(inst), nil
}

// UpdateInstance replaces the configuration and merges metadata.
func (s *MemoryWidgetStore) UpdateInstance(_ context.Context, input UpdateWidgetInstanceInput) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[input.InstanceID]
	if !ok {
		return WidgetInstance{}, fmt.Errorf("%w: %s", ErrWidgetNotFound, input.InstanceID)
	}
	inst.Configuration = cloneMap(input.Configuration)
	if len(input.Metadata) > 0 {
		merged := cloneMap(inst.Metadata)
		if merged == nil {
			merged = map[string]any{}
		}
		for k, v := range input.Metadata {
			merged[k] = v
		}
		inst.Metadata = merged
	}
	s.instances[inst.ID] = inst
	inst.AreaCode = s.areaOf(inst.ID)
	return copyInstance(inst), nil
}

// DeleteInstance removes the instance and its assignments.
func (s *MemoryWidgetStore) DeleteInstance(_ context.Context, instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[instanceID]; !ok {
		return fmt.Errorf("%w: %s", ErrWidgetNotFound, instanceID)
	}
	delete(s.instances, instanceID)
	for area, ids := range s.assignments {
		s.assignments[area] = filterIDs(ids, instanceID)
	}
	return nil
}

// AssignInstance places the instance in an area, at Position when given.
// An instance lives in one area at a time.
func (s *MemoryWidgetStore) AssignInstance(_ context.Context, input AssignWidgetInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[input.InstanceID]; !ok {
		return fmt.Errorf("%w: %s", ErrWidgetNotFound, input.InstanceID)
	}
	if len(s.areas) > 0 {
		if _, ok := s.areas[input.AreaCode]; !ok {
			return fmt.Errorf("%w: %s", ErrAreaNotFound, input.AreaCode)
		}
	}
	for area, ids := range s.assignments {
		s.assignments[area] = filterIDs(ids, input.InstanceID)
	}
	order := s.assignments[input.AreaCode]
	if input.Position != nil && *input.Position >= 0 && *input.Position <= len(order) {
		idx := *input.Position
		order = append(order[:idx], append([]string{input.InstanceID}, order[idx:]...)...)
	} else {
		order = append(order, input.InstanceID)
	}
	s.assignments[input.AreaCode] = order
	return nil
}

// ReorderArea moves the listed widgets to the front in the given order.
// Unknown ids are ignored and unlisted widgets keep their relative order.
func (s *MemoryWidgetStore) ReorderArea(_ context.Context, input ReorderAreaInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.assignments[input.AreaCode]
	present := make(map[string]bool, len(current))
	for _, id := range current {
		present[id] = true
	}
	next := make([]string, 0, len(current))
	placed := make(map[string]bool, len(input.WidgetIDs))
	for _, id := range input.WidgetIDs {
		if present[id] && !placed[id] {
			next = append(next, id)
			placed[id] = true
		}
	}
	for _, id := range current {
		if !placed[id] {
			next = append(next, id)
		}
	}
	s.assignments[input.AreaCode] = next
	return nil
}

// ResolveArea returns the area's shared widgets plus those owned by the tenant.
func (s *MemoryWidgetStore) ResolveArea(_ context.Context, input ResolveAreaInput) (ResolvedArea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.assignments[input.AreaCode]
	widgets := make([]WidgetInstance, 0, len(ids))
	for _, id := range ids {
		inst, ok := s.instances[id]
		if !ok {
			continue
		}
		if inst.TenantID != "" && inst.TenantID != input.TenantID {
			continue
		}
		inst.AreaCode = input.AreaCode
		widgets = append(widgets, copyInstance(inst))
	}
	return ResolvedArea{AreaCode: input.AreaCode, Widgets: widgets}, nil
}

// Len reports the number of stored instances.
func (s *MemoryWidgetStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.instances)
}

func (s *MemoryWidgetStore) areaOf(instanceID string) string {
	for area, ids := range s.assignments {
		for _, id := range ids {
			if id == instanceID {
				return area
			}
		}
	}
	return ""
}

func copyInstance(inst WidgetInstance) WidgetInstance {
	inst.Configuration = cloneMap(inst.Configuration)
	inst.Metadata = cloneMap(inst.Metadata)
	inst.Visibility.Roles = append([]string(nil), inst.Visibility.Roles...)
	return inst
}

func filterIDs(ids []string, drop string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
