package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailjet/glance/components/retail"
)

func fetchCard(t *testing.T, code, storeID string, cfg map[string]any) (WidgetData, error) {
	t.Helper()
	provider, ok := NewRegistry().Provider(code)
	require.Truef(t, ok, "provider %s not registered", code)
	return provider.Fetch(context.Background(), WidgetContext{
		Instance: WidgetInstance{ID: "inst-" + code, DefinitionID: code, Configuration: cfg},
		Viewer:   ViewerContext{UserID: "ruben", TenantID: storeID},
	})
}

func TestInventoryTableFiltersAndSorts(t *testing.T) {
	data, err := fetchCard(t, WidgetInventoryTable, "retailjet", map[string]any{
		"tab":            "low-stock",
		"sort_key":       "stock",
		"sort_direction": "descending",
	})
	require.NoError(t, err)
	rows := data["rows"].([]map[string]any)
	require.Len(t, rows, 3)
	assert.Equal(t, 12, rows[0]["stock"])
	assert.Equal(t, 7, rows[2]["stock"])
	counts := data["counts"].(map[string]int)
	assert.Equal(t, 8, counts["all"])
	assert.Equal(t, 1, counts["out_of_stock"])
}

func TestInventorySummaryRendersGauge(t *testing.T) {
	data, err := fetchCard(t, WidgetInventorySummary, "vitamax", map[string]any{"show_gauge": true})
	require.NoError(t, err)
	summary := data["summary"].(retail.InventorySummary)
	assert.Equal(t, 3, summary.SKUs)
	assert.Equal(t, 1, summary.OutOfStock)
	assert.Contains(t, data["chart_html"], "Stock Health")
}

func TestRestockProviderReportsRevenueAtRisk(t *testing.T) {
	data, err := fetchCard(t, WidgetRestockPriority, "retailjet", nil)
	require.NoError(t, err)
	items := data["items"].([]map[string]any)
	require.NotEmpty(t, items)
	assert.Equal(t, retail.PriorityCritical, items[0]["priority"])
	assert.Greater(t, data["revenue_at_risk"].(float64), 0.0)
}

func TestAllocationPreviewReallocates(t *testing.T) {
	data, err := fetchCard(t, WidgetAllocationOptimizer, "retailjet", map[string]any{
		"preview": map[string]any{"channel": "Shopify", "units": 100},
	})
	require.NoError(t, err)
	assert.Equal(t, 900, data["allocated"])

	_, err = fetchCard(t, WidgetAllocationOptimizer, "retailjet", map[string]any{
		"preview": map[string]any{"channel": "amazon", "units": 900},
	})
	assert.True(t, errors.Is(err, retail.ErrInvalidAllocation))
}

func TestAnomalyProviderFiltersSeverity(t *testing.T) {
	data, err := fetchCard(t, WidgetAnomalyDetection, "retailjet", map[string]any{"severity": "warning"})
	require.NoError(t, err)
	assert.Len(t, data["anomalies"], 2)
	counts := data["counts"].(map[string]int)
	assert.Equal(t, 1, counts["critical"])
	assert.Equal(t, 2, counts["warning"])
}

func TestSyncStatusCountsErrors(t *testing.T) {
	data, err := fetchCard(t, WidgetSyncStatus, "retailjet", nil)
	require.NoError(t, err)
	assert.Len(t, data["syncs"], 4)
	assert.Equal(t, 1, data["errors"])
}

func TestStorePinOverridesViewer(t *testing.T) {
	data, err := fetchCard(t, WidgetChannelPerformance, "retailjet", map[string]any{"store_id": "vitamax"})
	require.NoError(t, err)
	assert.Equal(t, "vitamax", data["store_id"])
	assert.Len(t, data["channels"], 1)
}

func TestProvidersRequireStore(t *testing.T) {
	_, err := fetchCard(t, WidgetKPIOverview, "", nil)
	assert.ErrorIs(t, err, errNoStore)

	_, err = fetchCard(t, WidgetKPIOverview, "unknown", nil)
	assert.ErrorIs(t, err, retail.ErrStoreNotFound)
}
