package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailjet/glance/components/retail"
)

func TestBuildFunnel(t *testing.T) {
	steps, rate := BuildFunnel([]retail.FunnelStage{
		{Label: "Impressions", Value: 100},
		{Label: "Clicks", Value: 28},
		{Label: "Add to Cart", Value: 15},
		{Label: "Purchases", Value: 8},
	})
	require.Len(t, steps, 4)
	assert.Equal(t, 0.0, steps[0].DropOff)
	assert.Equal(t, 72.0, steps[1].DropOff)
	assert.Equal(t, 46.4, steps[2].DropOff)
	assert.Equal(t, 4, steps[3].Position)
	assert.Equal(t, 8.0, rate)

	_, rate = BuildFunnel([]retail.FunnelStage{{Label: "Impressions", Value: 0}, {Label: "Clicks", Value: 3}})
	assert.Equal(t, 0.0, rate)
	steps, rate = BuildFunnel(nil)
	assert.Empty(t, steps)
	assert.Equal(t, 0.0, rate)
}

func TestFunnelProviderGoal(t *testing.T) {
	data, err := fetchCard(t, WidgetConversionFunnel, "retailjet", map[string]any{"goal": 10})
	require.NoError(t, err)
	assert.Equal(t, 8.0, data["conversion_rate"])
	assert.Equal(t, false, data["goal_met"])
}

func TestTrafficSourcesShares(t *testing.T) {
	data, err := fetchCard(t, WidgetTrafficSources, "retailjet", nil)
	require.NoError(t, err)
	assert.Equal(t, 100, data["total"])
	shares := data["sources"].([]map[string]any)
	require.Len(t, shares, 5)
	assert.Equal(t, 42.0, shares[0]["share"])
	assert.Contains(t, data["chart_html"], "Traffic Sources")
}

func TestTrafficSourcesWithoutDataSkipsChart(t *testing.T) {
	data, err := fetchCard(t, WidgetTrafficSources, "extralinens", nil)
	require.NoError(t, err)
	assert.NotContains(t, data, "chart_html")
}

func TestCohortProviderModes(t *testing.T) {
	data, err := fetchCard(t, WidgetCohortAnalysis, "retailjet", nil)
	require.NoError(t, err)
	assert.Equal(t, retail.CohortRetention, data["mode"])
	assert.Equal(t, 7, data["periods"])
	rows := data["rows"].([]map[string]any)
	require.Len(t, rows, 7)
	feb := rows[1]["cells"].([]map[string]any)
	assert.Nil(t, feb[6]["value"])
	jul := rows[6]["cells"].([]map[string]any)
	require.Len(t, jul, 7)
	assert.Nil(t, jul[1]["value"])

	data, err = fetchCard(t, WidgetCohortAnalysis, "retailjet", map[string]any{"mode": "revenue", "aov": 100})
	require.NoError(t, err)
	assert.Equal(t, retail.CohortRevenue, data["mode"])

	_, err = fetchCard(t, WidgetCohortAnalysis, "retailjet", map[string]any{"mode": "ltv"})
	require.Error(t, err)
}

func TestCampaignProviderFilters(t *testing.T) {
	data, err := fetchCard(t, WidgetCampaignPerformance, "retailjet", map[string]any{"platform": "Walmart"})
	require.NoError(t, err)
	rows := data["campaigns"].([]map[string]any)
	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.Equal(t, "Walmart", row["platform"])
	}
}
