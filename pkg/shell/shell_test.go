package shell_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailjet/glance/components/retail"
	"github.com/retailjet/glance/pkg/shell"
)

type stubMenuBuilder struct {
	calls int
	err   error
}

func (s *stubMenuBuilder) EnsureMenuItem(context.Context, string, shell.MenuItem) error {
	s.calls++
	return s.err
}

func newShell(t *testing.T, builder shell.MenuBuilder) *shell.Shell {
	t.Helper()
	repo, err := retail.DefaultRepository()
	require.NoError(t, err)
	s, err := shell.New(shell.Config{Stores: repo, MenuBuilder: builder})
	require.NoError(t, err)
	return s
}

func TestNewRequiresStores(t *testing.T) {
	if _, err := shell.New(shell.Config{}); err == nil {
		t.Fatalf("expected error without store repository")
	}
}

func TestBootstrapSeedsMenu(t *testing.T) {
	builder := &stubMenuBuilder{}
	s := newShell(t, builder)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if builder.calls != 1 {
		t.Fatalf("expected 1 call, got %d", builder.calls)
	}

	builder.err = errors.New("menu down")
	if err := s.Bootstrap(context.Background()); err == nil {
		t.Fatalf("expected builder error to propagate")
	}
}

func TestNavigationLocalizesRoutes(t *testing.T) {
	s := newShell(t, nil)
	ctx := context.Background()
	require.NoError(t, s.Bootstrap(ctx))
	require.NoError(t, s.Bootstrap(ctx), "bootstrap is idempotent")

	items, err := s.Navigation(ctx, "en")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/en", items[0].Route)
	require.Len(t, items[0].Children, 4)
	assert.Equal(t, "/en?tab=overview", items[0].Children[0].Route)
	analytics := items[0].Children[2]
	assert.Equal(t, "/en?tab=analytics&subtab=marketing", analytics.Children[1].Route)
	assert.Equal(t, "chat", items[0].Children[3].Tab)

	plain, err := s.Navigation(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "/", plain[0].Route)
}

func TestNavigationWithoutMenuReader(t *testing.T) {
	s := newShell(t, &stubMenuBuilder{})
	items, err := s.Navigation(context.Background(), "fr")
	require.NoError(t, err)
	assert.Equal(t, "/fr", items[0].Route)
}

func TestBreadcrumbs(t *testing.T) {
	s := newShell(t, nil)
	ctx := context.Background()

	crumbs, err := s.Breadcrumbs(ctx, "vitamax", "/")
	require.NoError(t, err)
	assert.Equal(t, []shell.Crumb{{Label: "Vitamax", Href: "#"}, {Label: "Dashboard"}}, crumbs)

	crumbs, err = s.Breadcrumbs(ctx, "retailjet", "/inventory/restock")
	require.NoError(t, err)
	assert.Equal(t, []shell.Crumb{
		{Label: "RetailJet", Href: "#"},
		{Label: "Dashboard", Href: "/dashboard"},
		{Label: "Inventory"},
	}, crumbs)

	_, err = s.Breadcrumbs(ctx, "nope", "/")
	assert.ErrorIs(t, err, retail.ErrStoreNotFound)
}

func TestStoresMarksActive(t *testing.T) {
	s := newShell(t, nil)
	stores, err := s.StoresFor(context.Background(), "vitamax")
	require.NoError(t, err)
	require.Len(t, stores, 3)
	for _, store := range stores {
		assert.Equal(t, store.ID == "vitamax", store.Active, store.ID)
	}
}

func TestMemoryMenuRequiresRoute(t *testing.T) {
	menu := shell.NewMemoryMenu()
	assert.Error(t, menu.EnsureMenuItem(context.Background(), "m", shell.MenuItem{Label: "x"}))
}

func TestShellRoutes(t *testing.T) {
	s := newShell(t, nil)
	require.NoError(t, s.Bootstrap(context.Background()))
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("tenant_id", "retailjet")
		c.Locals("locale", "en")
		return c.Next()
	})
	s.Register(app)

	get := func(path string) (int, map[string]any) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var payload map[string]any
		require.NoError(t, json.Unmarshal(data, &payload))
		return resp.StatusCode, payload
	}

	status, payload := get("/api/stores")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, payload["stores"], 3)

	status, payload = get("/api/navigation?path=/inventory")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, shell.DefaultMenuCode, payload["menu"])
	crumbs := payload["breadcrumbs"].([]any)
	assert.Len(t, crumbs, 3)
}
