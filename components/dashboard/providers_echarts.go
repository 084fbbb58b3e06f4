package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "360px"
	defaultChartTTL    = 5 * time.Minute
)

// Supported chart types.
const (
	ChartBar   = "bar"
	ChartLine  = "line"
	ChartPie   = "pie"
	ChartGauge = "gauge"
)

func supportedChartType(t string) bool {
	switch t {
	case ChartBar, ChartLine, ChartPie, ChartGauge:
		return true
	}
	return false
}

// ChartSeries is a named set of values.
type ChartSeries struct {
	Name   string       `json:"name"`
	Points []ChartPoint `json:"points"`
}

// ChartPoint is a single (optionally labeled) value.
type ChartPoint struct {
	Label string  `json:"label,omitempty"`
	Value float64 `json:"value"`
}

// ChartSpec is everything needed to render one chart.
type ChartSpec struct {
	Type     string        `json:"type"`
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle,omitempty"`
	XAxis    []string      `json:"x_axis,omitempty"`
	Series   []ChartSeries `json:"series"`
	Theme    string        `json:"theme,omitempty"`
	Height   string        `json:"height,omitempty"`
	Stacked  bool          `json:"stacked,omitempty"`
}

// ChartRenderer turns ChartSpecs into go-echarts HTML, memoized by a render cache.
type ChartRenderer struct {
	cache         RenderCache
	theme         string
	themeResolver ThemeResolver
	assetsHost    string
}

// ThemeResolver selects a chart theme per viewer.
type ThemeResolver func(ViewerContext) string

// ChartRendererOption customizes a ChartRenderer.
type ChartRendererOption func(*ChartRenderer)

// WithChartCache injects a render cache. A nil cache disables caching.
func WithChartCache(cache RenderCache) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the default theme.
func WithChartTheme(theme string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.theme = theme
	}
}

// WithChartThemeResolver resolves themes dynamically per viewer.
func WithChartThemeResolver(resolver ThemeResolver) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.themeResolver = resolver
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a renderer with a private five minute cache.
func NewChartRenderer(options ...ChartRendererOption) *ChartRenderer {
	r := &ChartRenderer{
		cache: NewChartCache(defaultChartTTL),
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Cache returns the renderer's cache, nil when caching is disabled.
func (r *ChartRenderer) Cache() RenderCache {
	return r.cache
}

// Render returns chart HTML. key scopes the cache entry (normally the widget id).
func (r *ChartRenderer) Render(key string, viewer ViewerContext, spec ChartSpec) (string, error) {
	spec.Type = strings.ToLower(spec.Type)
	if !supportedChartType(spec.Type) {
		return "", fmt.Errorf("dashboard: unsupported chart type %q", spec.Type)
	}
	if len(spec.Series) == 0 {
		return "", fmt.Errorf("dashboard: chart series is required")
	}
	if spec.Theme == "" {
		spec.Theme = r.resolveTheme(viewer)
	}
	if spec.Height == "" {
		spec.Height = defaultChartHeight
	}
	if len(spec.XAxis) == 0 && spec.Type != ChartPie && spec.Type != ChartGauge {
		spec.XAxis = inferredAxisLabels(spec.Series)
	}
	render := func() (string, error) { return r.render(spec) }
	if r.cache == nil || key == "" {
		return render()
	}
	return r.cache.GetOrRender(cacheKey(key, spec), render)
}

func (r *ChartRenderer) render(spec ChartSpec) (string, error) {
	global := r.globalOptions(spec)
	switch spec.Type {
	case ChartBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(global...)
		bar.SetXAxis(spec.XAxis)
		for _, s := range spec.Series {
			data := make([]opts.BarData, len(s.Points))
			for i, p := range s.Points {
				data[i] = opts.BarData{Name: p.Label, Value: p.Value}
			}
			if spec.Stacked {
				bar.AddSeries(s.Name, data, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
			} else {
				bar.AddSeries(s.Name, data)
			}
		}
		return renderChart(bar)
	case ChartLine:
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		line.SetXAxis(spec.XAxis)
		for _, s := range spec.Series {
			data := make([]opts.LineData, len(s.Points))
			for i, p := range s.Points {
				data[i] = opts.LineData{Name: p.Label, Value: p.Value}
			}
			line.AddSeries(s.Name, data)
		}
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderChart(line)
	case ChartPie:
		pie := charts.NewPie()
		pie.SetGlobalOptions(global...)
		for _, s := range spec.Series {
			data := make([]opts.PieData, len(s.Points))
			for i, p := range s.Points {
				name := p.Label
				if name == "" {
					name = fmt.Sprintf("Slice %d", i+1)
				}
				data[i] = opts.PieData{Name: name, Value: p.Value}
			}
			pie.AddSeries(s.Name, data)
		}
		return renderChart(pie)
	default:
		gauge := charts.NewGauge()
		gauge.SetGlobalOptions(global...)
		for _, s := range spec.Series {
			if len(s.Points) == 0 {
				continue
			}
			gauge.AddSeries(s.Name, []opts.GaugeData{{Name: s.Name, Value: s.Points[0].Value}})
		}
		return renderChart(gauge)
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *ChartRenderer) globalOptions(spec ChartSpec) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  spec.Theme,
		Width:  "100%",
		Height: spec.Height,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: spec.Title, Subtitle: spec.Subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(spec.Series) > 1 || spec.Type == ChartPie)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func (r *ChartRenderer) resolveTheme(viewer ViewerContext) string {
	if r.themeResolver != nil {
		if theme := r.themeResolver(viewer); theme != "" {
			return theme
		}
	}
	if r.theme != "" {
		return r.theme
	}
	return types.ThemeWesteros
}

// EChartsProvider renders a chart described entirely by widget configuration.
type EChartsProvider struct {
	chartType string
	renderer  *ChartRenderer
}

// NewEChartsProvider builds a config-driven provider for one chart type.
func NewEChartsProvider(chartType string, renderer *ChartRenderer) *EChartsProvider {
	if renderer == nil {
		renderer = NewChartRenderer()
	}
	return &EChartsProvider{chartType: strings.ToLower(chartType), renderer: renderer}
}

// Fetch converts widget configuration into go-echarts markup.
func (p *EChartsProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	cfg := meta.Instance.Configuration
	spec := ChartSpec{
		Type:     p.chartType,
		Title:    stringValue(cfg["title"], "Chart"),
		Subtitle: stringValue(cfg["subtitle"], ""),
		XAxis:    stringSliceValue(cfg["x_axis"]),
		Series:   parseChartSeries(cfg["series"]),
		Theme:    strings.TrimSpace(stringValue(cfg["theme"], "")),
		Stacked:  boolValue(cfg["stacked"]),
	}
	if meta.Translator != nil {
		key := fmt.Sprintf("dashboard.widget.%s.title", meta.Instance.DefinitionID)
		spec.Title = translateOrFallback(ctx, meta.Translator, key, meta.Viewer.Locale, spec.Title, nil)
		for i := range spec.XAxis {
			spec.XAxis[i] = translateOrFallback(ctx, meta.Translator, spec.XAxis[i], meta.Viewer.Locale, spec.XAxis[i], nil)
		}
	}
	html, err := p.renderer.Render(meta.Instance.ID, meta.Viewer, spec)
	if err != nil {
		return nil, err
	}
	return chartData(spec, html), nil
}

func chartData(spec ChartSpec, html string) WidgetData {
	return WidgetData{
		"chart_html": html,
		"chart_type": spec.Type,
		"title":      spec.Title,
		"subtitle":   spec.Subtitle,
		"theme":      spec.Theme,
	}
}

func parseChartSeries(v any) []ChartSeries {
	var items []map[string]any
	switch val := v.(type) {
	case []map[string]any:
		items = val
	case []any:
		for _, item := range val {
			if m, ok := item.(map[string]any); ok {
				items = append(items, m)
			}
		}
	}
	out := make([]ChartSeries, 0, len(items))
	for _, item := range items {
		series := ChartSeries{
			Name:   stringValue(item["name"], "Series"),
			Points: parseChartPoints(item["data"]),
		}
		if len(series.Points) > 0 {
			out = append(out, series)
		}
	}
	return out
}

func parseChartPoints(v any) []ChartPoint {
	switch value := v.(type) {
	case []float64:
		points := make([]ChartPoint, len(value))
		for i, val := range value {
			points[i] = ChartPoint{Value: val}
		}
		return points
	case []int:
		points := make([]ChartPoint, len(value))
		for i, val := range value {
			points[i] = ChartPoint{Value: float64(val)}
		}
		return points
	case []map[string]any:
		points := make([]ChartPoint, len(value))
		for i, m := range value {
			points[i] = ChartPoint{Label: stringValue(m["name"], ""), Value: float64Value(m["value"])}
		}
		return points
	case []any:
		points := make([]ChartPoint, 0, len(value))
		for _, item := range value {
			if m, ok := item.(map[string]any); ok {
				points = append(points, ChartPoint{
					Label: stringValue(m["name"], ""),
					Value: float64Value(m["value"]),
				})
				continue
			}
			points = append(points, ChartPoint{Value: float64Value(item)})
		}
		return points
	default:
		return nil
	}
}

func inferredAxisLabels(series []ChartSeries) []string {
	var labels []string
	for _, s := range series {
		if len(s.Points) <= len(labels) {
			continue
		}
		labels = make([]string, len(s.Points))
		for i, point := range s.Points {
			labels[i] = point.Label
			if labels[i] == "" {
				labels[i] = fmt.Sprintf("Item %d", i+1)
			}
		}
	}
	return labels
}

func stringSliceValue(v any) []string {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func stringValue(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func float64Value(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return 0
}

func intValue(v any, fallback int) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
	}
	return fallback
}

func boolValue(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true")
	case int:
		return val != 0
	case int64:
		return val != 0
	default:
		return false
	}
}

func init() {
	RegisterWidgetHook(func(reg *Registry) error {
		generic := map[string]string{
			"glance.widget.bar_chart":   ChartBar,
			"glance.widget.line_chart":  ChartLine,
			"glance.widget.pie_chart":   ChartPie,
			"glance.widget.gauge_chart": ChartGauge,
		}
		for code, chartType := range generic {
			if _, ok := reg.Provider(code); ok {
				continue
			}
			if _, ok := reg.Definition(code); !ok {
				continue
			}
			if err := reg.RegisterProvider(code, NewEChartsProvider(chartType, reg.Charts())); err != nil {
				return err
			}
		}
		return nil
	})
}
