package dashboard

import (
	"context"
	"fmt"
	"math"

	"github.com/retailjet/glance/components/retail"
)

const defaultCohortAOV = 120.0

// FunnelStep is a funnel stage with its drop-off from the previous stage.
type FunnelStep struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	DropOff  float64 `json:"dropoff"`
	Position int     `json:"position"`
}

// BuildFunnel computes drop-off percentages and the overall conversion rate
// (last stage over first stage).
func BuildFunnel(stages []retail.FunnelStage) ([]FunnelStep, float64) {
	steps := make([]FunnelStep, len(stages))
	for i, stage := range stages {
		steps[i] = FunnelStep{Label: stage.Label, Value: stage.Value, Position: i + 1}
		if i > 0 && stages[i-1].Value > 0 {
			steps[i].DropOff = round1((stages[i-1].Value - stage.Value) / stages[i-1].Value * 100)
		}
	}
	if len(stages) == 0 || stages[0].Value == 0 {
		return steps, 0
	}
	return steps, round1(stages[len(stages)-1].Value / stages[0].Value * 100)
}

type funnelProvider struct {
	repo retail.Repository
}

// NewFunnelProvider builds the conversion funnel card provider.
func NewFunnelProvider(repo retail.Repository) Provider {
	return &funnelProvider{repo: repo}
}

func (p *funnelProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	storeID, err := storeFor(p.repo, meta)
	if err != nil {
		return nil, err
	}
	stages, err := p.repo.Funnel(ctx, storeID)
	if err != nil {
		return nil, err
	}
	steps, rate := BuildFunnel(stages)
	data := WidgetData{
		"store_id":        storeID,
		"steps":           steps,
		"conversion_rate": rate,
	}
	if goal := float64Value(meta.Instance.Configuration["goal"]); goal > 0 {
		data["goal"] = goal
		data["goal_met"] = rate >= goal
	}
	return data, nil
}

type trafficSourcesProvider struct {
	repo   retail.Repository
	charts *ChartRenderer
}

// NewTrafficSourcesProvider builds the traffic source pie chart provider.
func NewTrafficSourcesProvider(repo retail.Repository, charts *ChartRenderer) Provider {
	if charts == nil {
		charts = NewChartRenderer()
	}
	return &trafficSourcesProvider{repo: repo, charts: charts}
}

func (p *trafficSourcesProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	storeID, err := storeFor(p.repo, meta)
	if err != nil {
		return nil, err
	}
	sources, err := p.repo.TrafficSources(ctx, storeID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, s := range sources {
		total += s.Visitors
	}
	points := make([]ChartPoint, len(sources))
	shares := make([]map[string]any, len(sources))
	for i, s := range sources {
		points[i] = ChartPoint{Label: s.Source, Value: float64(s.Visitors)}
		share := 0.0
		if total > 0 {
			share = round1(float64(s.Visitors) / float64(total) * 100)
		}
		shares[i] = map[string]any{"source": s.Source, "visitors": s.Visitors, "share": share}
	}
	spec := ChartSpec{
		Type:   ChartPie,
		Title:  label(ctx, meta, "dashboard.widget.traffic_sources.title", stringValue(meta.Instance.Configuration["title"], "Traffic Sources")),
		Series: []ChartSeries{{Name: "Visitors", Points: points}},
		Theme:  stringValue(meta.Instance.Configuration["theme"], ""),
	}
	data := WidgetData{"store_id": storeID, "sources": shares, "total": total}
	if len(points) == 0 {
		return data, nil
	}
	html, err := p.charts.Render(meta.Instance.ID, meta.Viewer, spec)
	if err != nil {
		return nil, err
	}
	for k, v := range chartData(spec, html) {
		data[k] = v
	}
	return data, nil
}

type cohortProvider struct {
	repo retail.Repository
}

// NewCohortProvider builds the cohort heat-map provider.
func NewCohortProvider(repo retail.Repository) Provider {
	return &cohortProvider{repo: repo}
}

// Fetch renders the grid in "mode" retention (default) or revenue; revenue
// cells are projected with the "aov" setting.
func (p *cohortProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	storeID, err := storeFor(p.repo, meta)
	if err != nil {
		return nil, err
	}
	cohorts, err := p.repo.Cohorts(ctx, storeID)
	if err != nil {
		return nil, err
	}
	cfg := meta.Instance.Configuration
	mode := retail.CohortMode(stringValue(cfg["mode"], string(retail.CohortRetention)))
	switch mode {
	case retail.CohortRetention:
	case retail.CohortRevenue:
		aov := float64Value(cfg["aov"])
		if aov <= 0 {
			aov = defaultCohortAOV
		}
		cohorts = retail.ProjectRevenue(cohorts, aov)
	default:
		return nil, fmt.Errorf("dashboard: unknown cohort mode %q", mode)
	}
	periods := retail.MaxPeriods(cohorts)
	rows := make([]map[string]any, 0, len(cohorts))
	for _, cohort := range cohorts {
		cells := make([]map[string]any, periods)
		for i := 0; i < periods; i++ {
			var value *float64
			if i < len(cohort.Retention) {
				value = cohort.Retention[i]
			}
			cells[i] = map[string]any{
				"value": value,
				"text":  retail.FormatCell(mode, value),
				"band":  retail.BandFor(mode, value),
			}
		}
		rows = append(rows, map[string]any{
			"id":            cohort.ID,
			"label":         cohort.Label,
			"initial_users": cohort.InitialUsers,
			"cells":         cells,
		})
	}
	return WidgetData{"store_id": storeID, "mode": mode, "periods": periods, "rows": rows}, nil
}

type campaignProvider struct {
	repo retail.Repository
}

// NewCampaignProvider builds the campaign performance table provider.
func NewCampaignProvider(repo retail.Repository) Provider {
	return &campaignProvider{repo: repo}
}

func (p *campaignProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	storeID, err := storeFor(p.repo, meta)
	if err != nil {
		return nil, err
	}
	campaigns, err := p.repo.Campaigns(ctx, storeID)
	if err != nil {
		return nil, err
	}
	cfg := meta.Instance.Configuration
	filtered := retail.FilterCampaigns(campaigns, stringValue(cfg["status"], ""), stringValue(cfg["platform"], ""))
	rows := make([]map[string]any, 0, len(filtered))
	for _, c := range filtered {
		rows = append(rows, map[string]any{
			"id":              c.ID,
			"name":            c.Name,
			"platform":        c.Platform,
			"type":            c.Type,
			"status":          c.Status,
			"daily_budget":    c.DailyBudget,
			"spend":           c.Spend,
			"revenue":         c.Revenue,
			"acos":            round1(c.ACOS()),
			"roas":            round2(c.ROAS()),
			"ctr":             round2(c.CTR()),
			"conversion_rate": round2(c.ConversionRate()),
		})
	}
	return WidgetData{
		"store_id":  storeID,
		"campaigns": rows,
		"summary":   retail.SummarizeCampaigns(filtered),
	}, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
