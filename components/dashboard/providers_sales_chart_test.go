package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfitTrendProviderBuildsSeries(t *testing.T) {
	data, err := fetchCard(t, WidgetProfitTrend, "retailjet", map[string]any{
		"days":       7,
		"channels":   []any{"amazon", "walmart"},
		"chart_type": "bar",
		"stacked":    true,
	})
	require.NoError(t, err)
	assert.Equal(t, ChartBar, data["chart_type"])
	assert.Equal(t, "7 days", data["subtitle"])
	totals := data["totals"].(map[string]float64)
	assert.Len(t, totals, 2)
	assert.Contains(t, totals, "amazon")
	html := data["chart_html"].(string)
	assert.Contains(t, html, "Amazon")
	assert.NotContains(t, html, "Shopify")
}

func TestProfitTrendRejectsUnknownChannel(t *testing.T) {
	_, err := fetchCard(t, WidgetProfitTrend, "retailjet", map[string]any{"channels": []any{"ebay"}})
	require.Error(t, err)
}

func TestKPIProviderUsesTranslator(t *testing.T) {
	provider, ok := NewRegistry().Provider(WidgetKPIOverview)
	require.True(t, ok)
	data, err := provider.Fetch(context.Background(), WidgetContext{
		Instance:   WidgetInstance{ID: "kpi", DefinitionID: WidgetKPIOverview},
		Viewer:     ViewerContext{TenantID: "retailjet", Locale: "es"},
		Translator: NewCatalogTranslator(map[string]map[string]string{"es": {"dashboard.kpi.revenue": "Ingresos"}}),
	})
	require.NoError(t, err)
	cards := data["kpis"].([]map[string]any)
	require.Len(t, cards, 4)
	assert.Equal(t, "Ingresos", cards[0]["label"])
	assert.Equal(t, "Orders", cards[1]["label"])
}

func TestRecentSalesHonoursLimit(t *testing.T) {
	data, err := fetchCard(t, WidgetRecentSales, "retailjet", map[string]any{"limit": 2})
	require.NoError(t, err)
	assert.Len(t, data["sales"], 2)
}

func TestTopProductsSortByUnits(t *testing.T) {
	data, err := fetchCard(t, WidgetTopProducts, "retailjet", map[string]any{"sort_by": "units"})
	require.NoError(t, err)
	assert.Equal(t, "units", data["sort_by"])
}
