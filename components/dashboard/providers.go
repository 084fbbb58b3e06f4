package dashboard

import (
	"context"
	"errors"

	"github.com/retailjet/glance/components/retail"
)

// Built-in card codes.
const (
	WidgetKPIOverview         = "glance.widget.kpi_overview"
	WidgetProfitTrend         = "glance.widget.profit_trend"
	WidgetRecentSales         = "glance.widget.recent_sales"
	WidgetTopProducts         = "glance.widget.top_products"
	WidgetInventorySummary    = "glance.widget.inventory_summary"
	WidgetInventoryTable      = "glance.widget.inventory_table"
	WidgetRestockPriority     = "glance.widget.restock_priority"
	WidgetAllocationOptimizer = "glance.widget.allocation_optimizer"
	WidgetAnomalyDetection    = "glance.widget.anomaly_detection"
	WidgetChannelPerformance  = "glance.widget.channel_performance"
	WidgetSyncStatus          = "glance.widget.sync_status"
	WidgetConversionFunnel    = "glance.widget.conversion_funnel"
	WidgetTrafficSources      = "glance.widget.traffic_sources"
	WidgetCohortAnalysis      = "glance.widget.cohort_analysis"
	WidgetCampaignPerformance = "glance.widget.campaign_performance"
)

var (
	errNoRepository = errors.New("dashboard: retail repository not configured")
	errNoStore      = errors.New("dashboard: viewer has no active store")
)

func builtinProviders(repo retail.Repository, charts *ChartRenderer) map[string]Provider {
	return map[string]Provider{
		WidgetKPIOverview:         &kpiProvider{repo: repo},
		WidgetProfitTrend:         NewProfitTrendProvider(repo, charts),
		WidgetRecentSales:         &recentSalesProvider{repo: repo},
		WidgetTopProducts:         &topProductsProvider{repo: repo},
		WidgetInventorySummary:    &inventorySummaryProvider{repo: repo, charts: charts},
		WidgetInventoryTable:      &inventoryTableProvider{repo: repo},
		WidgetRestockPriority:     &restockProvider{repo: repo},
		WidgetAllocationOptimizer: &allocationProvider{repo: repo},
		WidgetAnomalyDetection:    &anomalyProvider{repo: repo},
		WidgetChannelPerformance:  &channelPerformanceProvider{repo: repo},
		WidgetSyncStatus:          &syncStatusProvider{repo: repo},
		WidgetConversionFunnel:    NewFunnelProvider(repo),
		WidgetTrafficSources:      NewTrafficSourcesProvider(repo, charts),
		WidgetCohortAnalysis:      NewCohortProvider(repo),
		WidgetCampaignPerformance: NewCampaignProvider(repo),
	}
}

// storeFor returns the store a provider should read: the viewer's active
// store unless the widget pins one with a "store_id" setting.
func storeFor(repo retail.Repository, meta WidgetContext) (string, error) {
	if repo == nil {
		return "", errNoRepository
	}
	if pinned := stringValue(meta.Instance.Configuration["store_id"], ""); pinned != "" {
		return pinned, nil
	}
	if meta.Viewer.TenantID == "" {
		return "", errNoStore
	}
	return meta.Viewer.TenantID, nil
}

func limitValue(cfg map[string]any, fallback int) int {
	limit := intValue(cfg["limit"], fallback)
	if limit <= 0 {
		return fallback
	}
	return limit
}

func label(ctx context.Context, meta WidgetContext, key, fallback string) string {
	return translateOrFallback(ctx, meta.Translator, key, meta.Viewer.Locale, fallback, nil)
}
