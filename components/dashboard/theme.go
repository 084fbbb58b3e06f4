package dashboard

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// ThemeProvider picks the visual theme for a viewer. It is optional; without
// one the dashboard renders with the chart defaults.
type ThemeProvider interface {
	SelectTheme(ctx context.Context, viewer ViewerContext) (*ThemeSelection, error)
}

// ThemeSelection carries resolved theme details for one store.
type ThemeSelection struct {
	Name       string            `json:"name" yaml:"name"`
	ChartTheme string            `json:"chart_theme,omitempty" yaml:"chart_theme,omitempty"`
	Tokens     map[string]string `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Assets     ThemeAssets       `json:"assets,omitempty" yaml:"assets,omitempty"`
}

// ThemeAssets provides asset paths plus an optional prefix.
type ThemeAssets struct {
	Values map[string]string `json:"values,omitempty" yaml:"values,omitempty"`
	Prefix string            `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// AssetURL resolves the final URL for a named asset (logo, favicon).
func (assets ThemeAssets) AssetURL(name string) string {
	path := assets.Values[name]
	if path == "" {
		return ""
	}
	if assets.Prefix != "" {
		return strings.TrimRight(assets.Prefix, "/") + "/" + strings.TrimLeft(path, "/")
	}
	return path
}

// CSSVariables normalizes token keys into CSS variable names.
func (theme *ThemeSelection) CSSVariables() map[string]string {
	if theme == nil || len(theme.Tokens) == 0 {
		return nil
	}
	vars := make(map[string]string, len(theme.Tokens))
	for key, value := range theme.Tokens {
		if name := normalizeCSSVariable(key); name != "" {
			vars[name] = value
		}
	}
	return vars
}

// CSSVariablesInline renders the variables as a sorted style attribute.
func (theme *ThemeSelection) CSSVariablesInline() string {
	vars := theme.CSSVariables()
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var builder strings.Builder
	for _, key := range keys {
		if vars[key] == "" {
			continue
		}
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(vars[key])
		builder.WriteString("; ")
	}
	return strings.TrimSpace(builder.String())
}

func normalizeCSSVariable(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "--") {
		return name
	}
	return "--" + name
}

// StoreThemes maps store ids to themes, with a fallback for unknown stores.
type StoreThemes struct {
	mu       sync.RWMutex
	fallback ThemeSelection
	themes   map[string]ThemeSelection
}

// NewStoreThemes builds a catalog with the given fallback theme.
func NewStoreThemes(fallback ThemeSelection) *StoreThemes {
	return &StoreThemes{fallback: fallback, themes: map[string]ThemeSelection{}}
}

// Set assigns a theme to a store.
func (s *StoreThemes) Set(storeID string, theme ThemeSelection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.themes[storeID] = theme
}

// SelectTheme implements ThemeProvider.
func (s *StoreThemes) SelectTheme(_ context.Context, viewer ViewerContext) (*ThemeSelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	theme, ok := s.themes[viewer.TenantID]
	if !ok {
		theme = s.fallback
	}
	return cloneThemeSelection(&theme), nil
}

// ChartThemeResolver adapts a ThemeProvider for the chart renderer.
func ChartThemeResolver(provider ThemeProvider) ThemeResolver {
	return func(viewer ViewerContext) string {
		if provider == nil {
			return ""
		}
		theme, err := provider.SelectTheme(context.Background(), viewer)
		if err != nil || theme == nil {
			return ""
		}
		return theme.ChartTheme
	}
}

func cloneThemeSelection(selection *ThemeSelection) *ThemeSelection {
	if selection == nil {
		return nil
	}
	cloned := *selection
	if len(selection.Tokens) > 0 {
		cloned.Tokens = make(map[string]string, len(selection.Tokens))
		for key, value := range selection.Tokens {
			cloned.Tokens[key] = value
		}
	}
	if len(selection.Assets.Values) > 0 {
		cloned.Assets.Values = make(map[string]string, len(selection.Assets.Values))
		for key, value := range selection.Assets.Values {
			cloned.Assets.Values[key] = value
		}
	}
	return &cloned
}
