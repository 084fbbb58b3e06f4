package dashboard

import (
	"context"
	"math"
	"strings"

	"github.com/retailjet/glance/components/retail"
)

type inventorySummaryProvider struct {
	repo   retail.Repository
	charts *ChartRenderer
}

func (p *inventorySummaryProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	storeID, err := storeFor(p.repo, meta)
	if err != nil {
		return nil, err
	}
	items, err := p.repo.Inventory(ctx, storeID)
	if err != nil {
		return nil, err
	}
	summary := retail.SummarizeInventory(items)
	data := WidgetData{"store_id": storeID, "summary": summary}
	if !boolValue(meta.Instance.Configuration["show_gauge"]) || p.charts == nil {
		return data, nil
	}
	spec := ChartSpec{
		Type:   ChartGauge,
		Title:  label(ctx, meta, "dashboard.widget.inventory_summary.gauge", "Stock Health"),
		Height: "240px",
		Series: []ChartSeries{{
			Name:   "Health",
			Points: []ChartPoint{{Value: math.Round(summary.HealthScore*10) / 10}},
		}},
	}
	html, err := p.charts.Render(meta.Instance.ID, meta.Viewer, spec)
	if err != nil {
		return nil, err
	}
	data["chart_html"] = html
	return data, nil
}

type inventoryTableProvider struct {
	repo retail.Repository
}

// Fetch filters by the "tab" setting and sorts by "sort_key"/"sort_direction".
func (p *inventoryTableProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	storeID, err := storeFor(p.repo, meta)
	if err != nil {
		return nil, err
	}
	items, err := p.repo.Inventory(ctx, storeID)
	if err != nil {
		return nil, err
	}
	cfg := meta.Instance.Configuration
	tab := retail.InventoryTab(stringValue(cfg["tab"], string(retail.TabAll)))
	sortCfg := retail.SortConfig{
		Key:       stringValue(cfg["sort_key"], ""),
		Direction: retail.SortDirection(stringValue(cfg["sort_direction"], string(retail.Ascending))),
	}
	rows := retail.SortInventory(retail.FilterInventory(items, tab), sortCfg)
	out := make([]map[string]any, 0, len(rows))
	for _, item := range rows {
		out = append(out, map[string]any{
			"id":             item.ID,
			"name":           item.Name,
			"sku":            item.SKU,
			"stock":          item.Stock,
			"optimal":        item.Optimal,
			"days_of_supply": item.DaysOfSupply,
			"supply_level":   retail.SupplyLevelFor(item.DaysOfSupply),
			"status":         item.Status,
			"location":       item.Location,
			"category":       item.Category,
		})
	}
	return WidgetData{
		"store_id": storeID,
		"tab":      tab,
		"sort":     sortCfg,
		"rows":     out,
		"counts": map[string]int{
			"all":          len(items),
			"in_stock":     len(retail.FilterInventory(items, retail.TabInStock)),
			"low_stock":    len(retail.FilterInventory(items, retail.TabLowStock)),
			"out_of_stock": len(retail.FilterInventory(items, retail.TabOutOfStock)),
		},
	}, nil
}

type restockProvider struct {
	repo retail.Repository
}

func (p *restockProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	storeID, err := storeFor(p.repo, meta)
	if err != nil {
		return nil, err
	}
	items, err := p.repo.Restock(ctx, storeID)
	if err != nil {
		return nil, err
	}
	sorted := retail.SortByPriority(items)
	atRisk := retail.TotalRevenueAtRisk(sorted)
	if limit := limitValue(meta.Instance.Configuration, len(sorted)); len(sorted) > limit {
		sorted = sorted[:limit]
	}
	rows := make([]map[string]any, 0, len(sorted))
	for _, item := range sorted {
		var stockout any
		if days := item.DaysUntilStockout(); !math.IsInf(days, 1) {
			stockout = math.Round(days*10) / 10
		}
		channels := make([]string, 0, len(item.Channels))
		for _, c := range item.Channels {
			channels = append(channels, c.DisplayName())
		}
		rows = append(rows, map[string]any{
			"id":                     item.ID,
			"name":                   item.Name,
			"sku":                    item.SKU,
			"priority":               item.Priority,
			"channels":               channels,
			"current_stock":          item.CurrentStock,
			"reorder_point":          item.ReorderPoint,
			"suggested_quantity":     item.SuggestedQuantity,
			"lead_time_days":         item.LeadTimeDays,
			"days_until_stockout":    stockout,
			"below_reorder_point":    item.BelowReorderPoint(),
			"stock_coverage":         item.StockCoverage(),
			"potential_revenue_loss": item.PotentialRevenueLoss,
			"last_restocked":         retail.FormatDisplayDate(item.LastRestocked),
		})
	}
	return WidgetData{"store_id": storeID, "items": rows, "revenue_at_risk": atRisk}, nil
}

type allocationProvider struct {
	repo retail.Repository
}

// Fetch reports current versus projected metrics. A "preview" setting of
// {channel, units} applies a what-if reallocation.
func (p *allocationProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	storeID, err := storeFor(p.repo, meta)
	if err != nil {
		return nil, err
	}
	alloc, err := p.repo.Allocation(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if preview, ok := meta.Instance.Configuration["preview"].(map[string]any); ok {
		channel := retail.Channel(strings.ToLower(stringValue(preview["channel"], "")))
		next, err := alloc.Reallocate(channel, intValue(preview["units"], 0))
		if err != nil {
			return nil, err
		}
		alloc = next
	}
	shares := make([]map[string]any, 0, len(alloc.Allocations))
	for _, a := range alloc.Allocations {
		shares = append(shares, map[string]any{
			"channel":         a.Channel,
			"label":           a.Channel.DisplayName(),
			"current":         a.Current,
			"suggested":       a.Suggested,
			"current_share":   alloc.Share(a.Current),
			"suggested_share": alloc.Share(a.Suggested),
			"profit_margin":   a.ProfitMargin,
			"sales_velocity":  a.SalesVelocity,
			"revenue":         a.Revenue,
		})
	}
	return WidgetData{
		"store_id":       storeID,
		"product":        map[string]any{"id": alloc.ID, "name": alloc.Name, "sku": alloc.SKU},
		"total_stock":    alloc.TotalStock,
		"allocated":      alloc.Allocated(),
		"channels":       shares,
		"current":        alloc.CurrentMetrics(),
		"projected":      alloc.ProjectedMetrics(),
		"revenue_change": alloc.RevenueChange(),
	}, nil
}

type anomalyProvider struct {
	repo retail.Repository
}

// Fetch lists anomalies most severe first, optionally filtered by "severity".
func (p *anomalyProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	storeID, err := storeFor(p.repo, meta)
	if err != nil {
		return nil, err
	}
	anomalies, err := p.repo.Anomalies(ctx, storeID)
	if err != nil {
		return nil, err
	}
	counts := retail.CountBySeverity(anomalies)
	severity := retail.Severity(stringValue(meta.Instance.Configuration["severity"], ""))
	rows := make([]map[string]any, 0, len(anomalies))
	for _, a := range retail.SortBySeverity(anomalies) {
		if severity != "" && a.Severity != severity {
			continue
		}
		rows = append(rows, map[string]any{
			"id":               a.ID,
			"type":             a.Type,
			"severity":         a.Severity,
			"channel":          a.Channel.DisplayName(),
			"message":          a.Message,
			"detected_at":      a.DetectedAt,
			"product":          a.Product,
			"change_percent":   a.ChangePercent(),
			"suggested_action": a.SuggestedAction,
		})
	}
	return WidgetData{
		"store_id":  storeID,
		"anomalies": rows,
		"counts": map[string]int{
			"critical": counts[retail.SeverityCritical],
			"warning":  counts[retail.SeverityWarning],
			"info":     counts[retail.SeverityInfo],
		},
	}, nil
}

type channelPerformanceProvider struct {
	repo retail.Repository
}

func (p *channelPerformanceProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	storeID, err := storeFor(p.repo, meta)
	if err != nil {
		return nil, err
	}
	rows, err := p.repo.ChannelPerformance(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, map[string]any{
			"channel":               row.Channel,
			"label":                 row.Channel.DisplayName(),
			"sell_through":          row.SellThrough,
			"sell_through_change":   row.SellThroughChange,
			"conversion":            row.Conversion,
			"conversion_change":     row.ConversionChange,
			"stock_turnover":        row.StockTurnover,
			"stock_turnover_change": row.StockTurnoverChange,
			"sparkline":             row.Sparkline,
		})
	}
	return WidgetData{"store_id": storeID, "channels": out}, nil
}

type syncStatusProvider struct {
	repo retail.Repository
}

func (p *syncStatusProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	storeID, err := storeFor(p.repo, meta)
	if err != nil {
		return nil, err
	}
	syncs, err := p.repo.SyncStatus(ctx, storeID)
	if err != nil {
		return nil, err
	}
	errorsCount := 0
	out := make([]map[string]any, 0, len(syncs))
	for _, s := range syncs {
		if s.Status == retail.SyncError {
			errorsCount++
		}
		out = append(out, map[string]any{
			"from":      s.From.DisplayName(),
			"to":        s.To.DisplayName(),
			"status":    s.Status,
			"progress":  s.Progress,
			"last_sync": s.LastSync,
			"error":     s.Error,
		})
	}
	return WidgetData{"store_id": storeID, "syncs": out, "errors": errorsCount}, nil
}
