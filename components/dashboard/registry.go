package dashboard

import (
	"fmt"
	"sort"
	"sync"

	"github.com/retailjet/glance/components/retail"
)

// WidgetHook lets packages register widgets/providers during init().
type WidgetHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []WidgetHook
)

// RegisterWidgetHook registers a hook executed against new registries.
func RegisterWidgetHook(h WidgetHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry implements ProviderRegistry with hook + manifest support.
type Registry struct {
	mu           sync.RWMutex
	definitions  map[string]WidgetDefinition
	providers    map[string]Provider
	manifestMeta map[string]ManifestProvider
	repo         retail.Repository
	charts       *ChartRenderer
}

// RegistryOption customizes NewRegistry.
type RegistryOption func(*Registry)

// WithRetailRepository sets the data source used by the built-in card providers.
func WithRetailRepository(repo retail.Repository) RegistryOption {
	return func(r *Registry) {
		if repo != nil {
			r.repo = repo
		}
	}
}

// WithChartRenderer sets the renderer shared by chart providers.
func WithChartRenderer(charts *ChartRenderer) RegistryOption {
	return func(r *Registry) {
		if charts != nil {
			r.charts = charts
		}
	}
}

// NewRegistry builds a registry holding every built-in card, then applies
// global hooks.
func NewRegistry(opts ...RegistryOption) *Registry {
	reg := &Registry{
		definitions:  map[string]WidgetDefinition{},
		providers:    map[string]Provider{},
		manifestMeta: map[string]ManifestProvider{},
	}
	for _, opt := range opts {
		opt(reg)
	}
	if reg.repo == nil {
		if repo, err := retail.DefaultRepository(); err == nil {
			reg.repo = repo
		}
	}
	if reg.charts == nil {
		reg.charts = NewChartRenderer()
	}
	reg.registerDefaults()
	_ = reg.ApplyHooks()
	return reg
}

// Charts returns the registry's chart renderer.
func (r *Registry) Charts() *ChartRenderer {
	return r.charts
}

func (r *Registry) registerDefaults() {
	providers := builtinProviders(r.repo, r.charts)
	for _, def := range DefaultWidgetDefinitions() {
		_ = r.RegisterDefinition(def)
		if provider, ok := providers[def.Code]; ok {
			_ = r.RegisterProvider(def.Code, provider)
		}
	}
}

// ApplyHooks executes registered widget hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefinition stores widget metadata.
func (r *Registry) RegisterDefinition(def WidgetDefinition) error {
	if def.Code == "" {
		return fmt.Errorf("dashboard: widget definition code is required")
	}
	def.normalizeLocalizedFields()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Code] = def
	return nil
}

// RegisterProvider associates a provider implementation with a definition.
func (r *Registry) RegisterProvider(code string, provider Provider) error {
	if code == "" {
		return fmt.Errorf("dashboard: widget definition code is required to register provider")
	}
	if provider == nil {
		return fmt.Errorf("dashboard: provider for %s cannot be nil", code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[code]; !ok {
		return fmt.Errorf("%w: %s", ErrDefinitionNotFound, code)
	}
	r.providers[code] = provider
	return nil
}

// Definition fetches a widget definition by code.
func (r *Registry) Definition(code string) (WidgetDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[code]
	return def, ok
}

// Provider fetches a widget provider by code.
func (r *Registry) Provider(code string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[code]
	return provider, ok
}

// ProviderMetadata returns any manifest metadata registered for a widget.
func (r *Registry) ProviderMetadata(code string) (ManifestProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.manifestMeta[code]
	return meta, ok
}

// Definitions returns all registered definitions sorted by code.
func (r *Registry) Definitions() []WidgetDefinition {
	r.mu.RLock()
	defs := make([]WidgetDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	r.mu.RUnlock()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	return defs
}

func (r *Registry) recordProviderMetadata(code string, meta ManifestProvider) {
	if meta.isZero() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifestMeta[code] = meta
}
