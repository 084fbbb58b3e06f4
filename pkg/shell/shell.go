// Package shell builds the dashboard chrome: sidebar navigation, breadcrumbs
// and the store switcher.
package shell

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/retailjet/glance/components/retail"
)

// DefaultMenuCode names the sidebar menu.
const DefaultMenuCode = "glance.main"

// MenuBuilder ensures entries exist within a navigation menu.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem is a sidebar link. Tab and Subtab select a dashboard tab.
type MenuItem struct {
	Label    string     `json:"label"`
	Route    string     `json:"route"`
	Icon     string     `json:"icon,omitempty"`
	Position int        `json:"position"`
	Tab      string     `json:"tab,omitempty"`
	Subtab   string     `json:"subtab,omitempty"`
	Children []MenuItem `json:"children,omitempty"`
}

// Crumb is one breadcrumb entry. The last crumb has no link.
type Crumb struct {
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
}

// StoreOption is an entry of the store switcher.
type StoreOption struct {
	retail.Store
	Active bool `json:"active"`
}

// Config wires the store repository and menu storage into the shell.
type Config struct {
	MenuCode    string
	MenuBuilder MenuBuilder
	Stores      retail.Repository
	// DefaultItem is the dashboard entry seeded by Bootstrap.
	DefaultItem MenuItem
}

// Shell exposes navigation helpers for the dashboard frontend.
type Shell struct {
	cfg Config
}

// New creates a Shell with the default dashboard menu.
func New(cfg Config) (*Shell, error) {
	if cfg.Stores == nil {
		return nil, errors.New("shell: store repository is required")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = DefaultMenuCode
	}
	if cfg.MenuBuilder == nil {
		cfg.MenuBuilder = NewMemoryMenu()
	}
	if cfg.DefaultItem.Label == "" {
		cfg.DefaultItem = DefaultDashboardItem()
	}
	return &Shell{cfg: cfg}, nil
}

// DefaultDashboardItem mirrors the dashboard tabs: Overview, Inventory,
// Analytics (Customers, Marketing) and the assistant.
func DefaultDashboardItem() MenuItem {
	return MenuItem{
		Label: "Dashboard",
		Route: "/",
		Icon:  "square-terminal",
		Children: []MenuItem{
			{Label: "Overview", Route: "/?tab=overview", Tab: "overview", Position: 1},
			{Label: "Inventory", Route: "/?tab=inventory", Tab: "inventory", Position: 2},
			{Label: "Analytics", Route: "/?tab=analytics", Tab: "analytics", Position: 3, Children: []MenuItem{
				{Label: "Customers", Route: "/?tab=analytics&subtab=customers", Tab: "analytics", Subtab: "customers", Position: 1},
				{Label: "Marketing", Route: "/?tab=analytics&subtab=marketing", Tab: "analytics", Subtab: "marketing", Position: 2},
			}},
			{Label: "Glance AI®", Route: "/?tab=chat", Tab: "chat", Position: 4},
		},
	}
}

// Bootstrap seeds the dashboard entry into the menu.
func (s *Shell) Bootstrap(ctx context.Context) error {
	return s.cfg.MenuBuilder.EnsureMenuItem(ctx, s.cfg.MenuCode, s.cfg.DefaultItem)
}

// Navigation returns the menu with routes prefixed by the locale segment.
func (s *Shell) Navigation(ctx context.Context, locale string) ([]MenuItem, error) {
	reader, ok := s.cfg.MenuBuilder.(interface {
		Menu(ctx context.Context, menuCode string) ([]MenuItem, error)
	})
	if !ok {
		return localize([]MenuItem{s.cfg.DefaultItem}, locale), nil
	}
	items, err := reader.Menu(ctx, s.cfg.MenuCode)
	if err != nil {
		return nil, err
	}
	return localize(items, locale), nil
}

// Breadcrumbs renders the trail for a dashboard path: the active store, the
// dashboard root, then the page named by the first path segment.
func (s *Shell) Breadcrumbs(ctx context.Context, storeID, path string) ([]Crumb, error) {
	store, err := s.cfg.Stores.Store(ctx, storeID)
	if err != nil {
		return nil, err
	}
	crumbs := []Crumb{{Label: store.Name, Href: "#"}}
	page := pageLabel(path)
	if page == "" {
		return append(crumbs, Crumb{Label: "Dashboard"}), nil
	}
	return append(crumbs, Crumb{Label: "Dashboard", Href: "/dashboard"}, Crumb{Label: page}), nil
}

// StoresFor lists every store and marks the active one.
func (s *Shell) StoresFor(ctx context.Context, activeStoreID string) ([]StoreOption, error) {
	stores, err := s.cfg.Stores.Stores(ctx)
	if err != nil {
		return nil, fmt.Errorf("shell: list stores: %w", err)
	}
	out := make([]StoreOption, len(stores))
	for i, store := range stores {
		out[i] = StoreOption{Store: store, Active: store.ID == activeStoreID}
	}
	return out, nil
}

func pageLabel(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return ""
	}
	segment, _, _ := strings.Cut(path, "/")
	switch segment {
	case "inventory":
		return "Inventory"
	case "glance-ai", "chat":
		return "Glance AI®"
	case "analytics":
		return "Analytics"
	default:
		return strings.ToUpper(segment[:1]) + segment[1:]
	}
}

func localize(items []MenuItem, locale string) []MenuItem {
	out := make([]MenuItem, len(items))
	for i, item := range items {
		item.Route = localizeRoute(item.Route, locale)
		item.Children = localize(item.Children, locale)
		out[i] = item
	}
	return out
}

// localizeRoute turns "/" into "/en" and "/?tab=x" into "/en?tab=x".
func localizeRoute(route, locale string) string {
	if locale == "" || !strings.HasPrefix(route, "/") {
		return route
	}
	prefix := "/" + locale
	switch {
	case route == "/":
		return prefix
	case strings.HasPrefix(route, "/?"):
		return prefix + route[1:]
	default:
		return prefix + route
	}
}

// MemoryMenu stores menus in memory keyed by menu code and route.
type MemoryMenu struct {
	mu    sync.RWMutex
	menus map[string][]MenuItem
}

// NewMemoryMenu returns an empty menu store.
func NewMemoryMenu() *MemoryMenu {
	return &MemoryMenu{menus: map[string][]MenuItem{}}
}

// EnsureMenuItem adds item unless an entry with the same route exists.
func (m *MemoryMenu) EnsureMenuItem(_ context.Context, menuCode string, item MenuItem) error {
	if item.Route == "" {
		return errors.New("shell: menu item route is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.menus[menuCode] {
		if existing.Route == item.Route {
			return nil
		}
	}
	m.menus[menuCode] = append(m.menus[menuCode], item)
	sort.SliceStable(m.menus[menuCode], func(i, j int) bool {
		return m.menus[menuCode][i].Position < m.menus[menuCode][j].Position
	})
	return nil
}

// Menu returns a copy of the menu's items.
func (m *MemoryMenu) Menu(_ context.Context, menuCode string) ([]MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]MenuItem(nil), m.menus[menuCode]...), nil
}
