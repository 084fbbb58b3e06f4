package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreThemesFallback(t *testing.T) {
	themes := NewStoreThemes(ThemeSelection{Name: "default", ChartTheme: "westeros"})
	themes.Set("vitamax", ThemeSelection{
		Name:       "vitamax",
		ChartTheme: "walden",
		Tokens:     map[string]string{"brand": "#16a34a", "--surface": "#fff"},
		Assets:     ThemeAssets{Prefix: "https://cdn.retailjet.com/", Values: map[string]string{"logo": "/vitamax.svg"}},
	})

	selected, err := themes.SelectTheme(context.Background(), ViewerContext{TenantID: "vitamax"})
	require.NoError(t, err)
	assert.Equal(t, "--brand: #16a34a; --surface: #fff;", selected.CSSVariablesInline())
	assert.Equal(t, "https://cdn.retailjet.com/vitamax.svg", selected.Assets.AssetURL("logo"))

	selected.Tokens["brand"] = "changed"
	again, _ := themes.SelectTheme(context.Background(), ViewerContext{TenantID: "vitamax"})
	assert.Equal(t, "#16a34a", again.Tokens["brand"])

	resolver := ChartThemeResolver(themes)
	assert.Equal(t, "walden", resolver(ViewerContext{TenantID: "vitamax"}))
	assert.Equal(t, "westeros", resolver(ViewerContext{TenantID: "unknown"}))
	assert.Equal(t, "", ChartThemeResolver(nil)(ViewerContext{}))
}

func TestEChartsAssetsHost(t *testing.T) {
	t.Setenv(EnvEChartsCDN, "")
	assert.Equal(t, DefaultEChartsAssetsHost, EChartsAssetsHost(""))
	assert.Equal(t, "https://assets.example.com/echarts/", EChartsAssetsHost("https://assets.example.com/echarts"))
	t.Setenv(EnvEChartsCDN, "/static/echarts")
	assert.Equal(t, "/static/echarts/", EChartsAssetsHost(""))
}
