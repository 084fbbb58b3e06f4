package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/retailjet/glance/components/retail"
)

type kpiProvider struct {
	repo retail.Repository
}

func (p *kpiProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	storeID, err := storeFor(p.repo, meta)
	if err != nil {
		return nil, err
	}
	points, err := p.repo.Sales(ctx, storeID)
	if err != nil {
		return nil, err
	}
	sales, err := p.repo.RecentSales(ctx, storeID)
	if err != nil {
		return nil, err
	}
	products, err := p.repo.TopProducts(ctx, storeID)
	if err != nil {
		return nil, err
	}
	kpis := retail.OverviewKPIs(points, sales, products)
	cards := make([]map[string]any, 0, len(kpis))
	for _, kpi := range kpis {
		cards = append(cards, map[string]any{
			"key":    kpi.Key,
			"label":  label(ctx, meta, "dashboard.kpi."+kpi.Key, kpi.Label),
			"value":  kpi.Value,
			"format": kpi.Format,
		})
	}
	return WidgetData{"store_id": storeID, "kpis": cards}, nil
}

// ProfitTrendProvider charts daily revenue per channel.
type ProfitTrendProvider struct {
	repo   retail.Repository
	charts *ChartRenderer
}

// NewProfitTrendProvider builds the profit trend card provider.
func NewProfitTrendProvider(repo retail.Repository, charts *ChartRenderer) *ProfitTrendProvider {
	if charts == nil {
		charts = NewChartRenderer()
	}
	return &ProfitTrendProvider{repo: repo, charts: charts}
}

// Fetch renders the trend over the configured window ("days", default all)
// for the configured channels (default every channel).
func (p *ProfitTrendProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	storeID, err := storeFor(p.repo, meta)
	if err != nil {
		return nil, err
	}
	points, err := p.repo.Sales(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("profit trend: %w", err)
	}
	cfg := meta.Instance.Configuration
	if days := intValue(cfg["days"], 0); days > 0 && days < len(points) {
		points = points[len(points)-days:]
	}
	channels, err := channelsValue(cfg["channels"])
	if err != nil {
		return nil, err
	}
	xAxis := make([]string, len(points))
	for i, point := range points {
		xAxis[i] = shortDate(point.Date)
	}
	series := make([]ChartSeries, 0, len(channels))
	for _, channel := range channels {
		values := retail.SeriesFor(points, channel)
		chartPoints := make([]ChartPoint, len(values))
		for i, v := range values {
			chartPoints[i] = ChartPoint{Value: v}
		}
		series = append(series, ChartSeries{Name: channel.DisplayName(), Points: chartPoints})
	}
	chartType := strings.ToLower(stringValue(cfg["chart_type"], ChartLine))
	spec := ChartSpec{
		Type:     chartType,
		Title:    label(ctx, meta, "dashboard.widget.profit_trend.title", stringValue(cfg["title"], "Profit Trend")),
		Subtitle: fmt.Sprintf("%d days", len(points)),
		XAxis:    xAxis,
		Series:   series,
		Theme:    stringValue(cfg["theme"], ""),
		Stacked:  boolValue(cfg["stacked"]),
	}
	html, err := p.charts.Render(meta.Instance.ID, meta.Viewer, spec)
	if err != nil {
		return nil, err
	}
	totals := retail.ChannelTotals(points)
	totalsOut := make(map[string]float64, len(channels))
	for _, channel := range channels {
		totalsOut[string(channel)] = totals[channel]
	}
	data := chartData(spec, html)
	data["store_id"] = storeID
	data["totals"] = totalsOut
	return data, nil
}

func channelsValue(v any) ([]retail.Channel, error) {
	names := stringSliceValue(v)
	if len(names) == 0 {
		return retail.Channels(), nil
	}
	known := make(map[retail.Channel]bool)
	for _, c := range retail.Channels() {
		known[c] = true
	}
	out := make([]retail.Channel, 0, len(names))
	for _, name := range names {
		channel := retail.Channel(strings.ToLower(strings.TrimSpace(name)))
		if !known[channel] {
			return nil, fmt.Errorf("%w: %s", retail.ErrUnknownChannel, name)
		}
		out = append(out, channel)
	}
	return out, nil
}

func shortDate(value string) string {
	formatted := retail.FormatDisplayDate(value)
	if formatted == retail.InvalidDate {
		return value
	}
	if idx := strings.Index(formatted, ","); idx > 0 {
		return formatted[:idx]
	}
	return formatted
}

type recentSalesProvider struct {
	repo retail.Repository
}

func (p *recentSalesProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	storeID, err := storeFor(p.repo, meta)
	if err != nil {
		return nil, err
	}
	sales, err := p.repo.RecentSales(ctx, storeID)
	if err != nil {
		return nil, err
	}
	limit := limitValue(meta.Instance.Configuration, 5)
	if len(sales) > limit {
		sales = sales[:limit]
	}
	total := 0.0
	rows := make([]map[string]any, 0, len(sales))
	for _, sale := range sales {
		total += sale.Amount
		rows = append(rows, map[string]any{
			"customer": sale.Customer,
			"email":    sale.Email,
			"amount":   sale.Amount,
			"channel":  sale.Channel.DisplayName(),
			"date":     retail.FormatDisplayDate(sale.At),
		})
	}
	return WidgetData{"store_id": storeID, "sales": rows, "total": total}, nil
}

type topProductsProvider struct {
	repo retail.Repository
}

func (p *topProductsProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	storeID, err := storeFor(p.repo, meta)
	if err != nil {
		return nil, err
	}
	products, err := p.repo.TopProducts(ctx, storeID)
	if err != nil {
		return nil, err
	}
	sortBy := stringValue(meta.Instance.Configuration["sort_by"], "revenue")
	sort.SliceStable(products, func(i, j int) bool {
		switch sortBy {
		case "units":
			return products[i].UnitsSold > products[j].UnitsSold
		case "margin":
			return products[i].Margin > products[j].Margin
		default:
			return products[i].Revenue > products[j].Revenue
		}
	})
	limit := limitValue(meta.Instance.Configuration, 5)
	if len(products) > limit {
		products = products[:limit]
	}
	return WidgetData{"store_id": storeID, "products": products, "sort_by": sortBy}, nil
}
