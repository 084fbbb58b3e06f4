package dashboard

import (
	"github.com/go-echarts/go-echarts/v2/types"
)

var defaultAreaDefinitions = []WidgetAreaDefinition{
	{Code: AreaOverview, Name: "Overview", Description: "Headline sales metrics", Tab: "overview"},
	{Code: AreaInventory, Name: "Inventory", Description: "Stock health, restock and allocation", Tab: "inventory"},
	{Code: AreaAnalytics, Name: "Analytics", Description: "Customer behaviour and channels", Tab: "analytics"},
	{Code: AreaMarketing, Name: "Marketing", Description: "Advertising campaigns", Tab: "marketing"},
}

var chartThemes = []string{
	types.ThemeWesteros,
	types.ThemeWalden,
	types.ThemeWonderland,
	types.ThemeChalk,
}

var channelNames = []string{"amazon", "walmart", "shopify"}

func objectSchema(props map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

func limitSchema(def, max int) map[string]any {
	return map[string]any{"type": "integer", "minimum": 1, "maximum": max, "default": def}
}

var storeIDSchema = map[string]any{"type": "string", "minLength": 1}

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code:          WidgetKPIOverview,
		Name:          "Sales Overview",
		NameLocalized: map[string]string{"es": "Resumen de ventas"},
		Description:   "Revenue, orders, average order value and profit margin",
		Category:      "overview",
		Schema:        objectSchema(map[string]any{"store_id": storeIDSchema}),
	},
	{
		Code:          WidgetProfitTrend,
		Name:          "Profit Trend",
		NameLocalized: map[string]string{"es": "Tendencia de beneficios"},
		Description:   "Daily revenue per sales channel",
		Category:      "overview",
		Schema: objectSchema(map[string]any{
			"store_id":   storeIDSchema,
			"title":      map[string]any{"type": "string"},
			"days":       map[string]any{"type": "integer", "minimum": 1, "maximum": 365},
			"channels":   map[string]any{"type": "array", "items": map[string]any{"type": "string", "enum": channelNames}, "uniqueItems": true},
			"chart_type": map[string]any{"type": "string", "enum": []string{ChartLine, ChartBar}, "default": ChartLine},
			"stacked":    map[string]any{"type": "boolean", "default": false},
			"theme":      map[string]any{"type": "string", "enum": chartThemes},
		}),
	},
	{
		Code:          WidgetRecentSales,
		Name:          "Recent Sales",
		NameLocalized: map[string]string{"es": "Ventas recientes"},
		Description:   "Latest orders across channels",
		Category:      "overview",
		Schema:        objectSchema(map[string]any{"store_id": storeIDSchema, "limit": limitSchema(5, 50)}),
	},
	{
		Code:          WidgetTopProducts,
		Name:          "Top Products",
		NameLocalized: map[string]string{"es": "Productos principales"},
		Description:   "Best selling products",
		Category:      "overview",
		Schema: objectSchema(map[string]any{
			"store_id": storeIDSchema,
			"limit":    limitSchema(5, 50),
			"sort_by":  map[string]any{"type": "string", "enum": []string{"revenue", "units", "margin"}, "default": "revenue"},
		}),
	},
	{
		Code:          WidgetInventorySummary,
		Name:          "Inventory Health",
		NameLocalized: map[string]string{"es": "Salud del inventario"},
		Description:   "Units on hand versus optimal stock",
		Category:      "inventory",
		Schema:        objectSchema(map[string]any{"store_id": storeIDSchema, "show_gauge": map[string]any{"type": "boolean", "default": false}}),
	},
	{
		Code:          WidgetInventoryTable,
		Name:          "Inventory Details",
		NameLocalized: map[string]string{"es": "Detalle de inventario"},
		Description:   "Filterable, sortable stock table",
		Category:      "inventory",
		Schema: objectSchema(map[string]any{
			"store_id":       storeIDSchema,
			"tab":            map[string]any{"type": "string", "enum": []string{"all", "in-stock", "low-stock", "out-of-stock"}, "default": "all"},
			"sort_key":       map[string]any{"type": "string", "enum": []string{"", "name", "stock", "daysOfSupply", "status"}},
			"sort_direction": map[string]any{"type": "string", "enum": []string{"ascending", "descending"}, "default": "ascending"},
		}),
	},
	{
		Code:          WidgetRestockPriority,
		Name:          "Restock Priority",
		NameLocalized: map[string]string{"es": "Prioridad de reposición"},
		Description:   "Products ranked by restock urgency",
		Category:      "inventory",
		Schema:        objectSchema(map[string]any{"store_id": storeIDSchema, "limit": limitSchema(10, 100)}),
	},
	{
		Code:        WidgetAllocationOptimizer,
		Name:        "Stock Allocation Optimizer",
		Description: "Channel allocation with projected revenue and margin",
		Category:    "inventory",
		Schema: objectSchema(map[string]any{
			"store_id": storeIDSchema,
			"preview": map[string]any{
				"type":     "object",
				"required": []string{"channel", "units"},
				"properties": map[string]any{
					"channel": map[string]any{"type": "string", "enum": channelNames},
					"units":   map[string]any{"type": "integer", "minimum": 0},
				},
				"additionalProperties": false,
			},
		}),
	},
	{
		Code:          WidgetAnomalyDetection,
		Name:          "Anomaly Detection",
		NameLocalized: map[string]string{"es": "Detección de anomalías"},
		Description:   "Unusual stock, price and conversion movements",
		Category:      "inventory",
		Schema: objectSchema(map[string]any{
			"store_id": storeIDSchema,
			"severity": map[string]any{"type": "string", "enum": []string{"critical", "warning", "info"}},
		}),
	},
	{
		Code:        WidgetChannelPerformance,
		Name:        "Channel Performance",
		Description: "Sell-through, conversion and turnover per channel",
		Category:    "analytics",
		Schema:      objectSchema(map[string]any{"store_id": storeIDSchema}),
	},
	{
		Code:        WidgetSyncStatus,
		Name:        "Cross-Channel Sync",
		Description: "Listing synchronization between channels",
		Category:    "inventory",
		Schema:      objectSchema(map[string]any{"store_id": storeIDSchema}),
	},
	{
		Code:          WidgetConversionFunnel,
		Name:          "Conversion Funnel",
		NameLocalized: map[string]string{"es": "Embudo de conversión"},
		Description:   "Drop-off through the purchase funnel",
		Category:      "analytics",
		Schema: objectSchema(map[string]any{
			"store_id": storeIDSchema,
			"goal":     map[string]any{"type": "number", "minimum": 0, "maximum": 100},
		}),
	},
	{
		Code:        WidgetTrafficSources,
		Name:        "Traffic Sources",
		Description: "Visitors per acquisition source",
		Category:    "analytics",
		Schema: objectSchema(map[string]any{
			"store_id": storeIDSchema,
			"title":    map[string]any{"type": "string"},
			"theme":    map[string]any{"type": "string", "enum": chartThemes},
		}),
	},
	{
		Code:          WidgetCohortAnalysis,
		Name:          "Cohort Analysis",
		NameLocalized: map[string]string{"es": "Análisis de cohortes"},
		Description:   "Monthly retention or revenue per acquisition cohort",
		Category:      "analytics",
		Schema: objectSchema(map[string]any{
			"store_id": storeIDSchema,
			"mode":     map[string]any{"type": "string", "enum": []string{"retention", "revenue"}, "default": "retention"},
			"aov":      map[string]any{"type": "number", "exclusiveMinimum": 0},
		}),
	},
	{
		Code:          WidgetCampaignPerformance,
		Name:          "Campaign Performance",
		NameLocalized: map[string]string{"es": "Rendimiento de campañas"},
		Description:   "Ad spend, ACOS and ROAS per campaign",
		Category:      "marketing",
		Schema: objectSchema(map[string]any{
			"store_id": storeIDSchema,
			"status":   map[string]any{"type": "string", "enum": []string{"", "Active", "Paused"}},
			"platform": map[string]any{"type": "string"},
		}),
	},
	{
		Code:        "glance.widget.bar_chart",
		Name:        "Bar Chart",
		Description: "Bar chart from inline series.",
		Category:    "charts",
		Schema:      chartConfigSchema(true),
	},
	{
		Code:        "glance.widget.line_chart",
		Name:        "Line Chart",
		Description: "Line chart from inline series.",
		Category:    "charts",
		Schema:      chartConfigSchema(true),
	},
	{
		Code:        "glance.widget.pie_chart",
		Name:        "Pie Chart",
		Description: "Pie chart from inline series.",
		Category:    "charts",
		Schema:      chartConfigSchema(false),
	},
	{
		Code:        "glance.widget.gauge_chart",
		Name:        "Gauge Chart",
		Description: "Single-value gauge.",
		Category:    "charts",
		Schema:      chartConfigSchema(false),
	},
}

func chartConfigSchema(includeAxis bool) map[string]any {
	point := map[string]any{
		"oneOf": []map[string]any{
			{"type": "number"},
			{
				"type":     "object",
				"required": []string{"value"},
				"properties": map[string]any{
					"name":  map[string]any{"type": "string"},
					"value": map[string]any{"type": "number"},
				},
			},
		},
	}
	props := map[string]any{
		"title":    map[string]any{"type": "string", "default": "Chart"},
		"subtitle": map[string]any{"type": "string"},
		"theme":    map[string]any{"type": "string", "enum": chartThemes},
		"series": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []string{"name", "data"},
				"properties": map[string]any{
					"name": map[string]any{"type": "string"},
					"data": map[string]any{"type": "array", "minItems": 1, "items": point},
				},
			},
		},
	}
	if includeAxis {
		props["x_axis"] = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
		props["stacked"] = map[string]any{"type": "boolean", "default": false}
	}
	return map[string]any{
		"type":       "object",
		"required":   []string{"series"},
		"properties": props,
	}
}

var defaultSeedConfigs = []AddWidgetRequest{
	{DefinitionID: WidgetKPIOverview, AreaCode: AreaOverview},
	{DefinitionID: WidgetProfitTrend, AreaCode: AreaOverview, Configuration: map[string]any{"days": 30}},
	{DefinitionID: WidgetRecentSales, AreaCode: AreaOverview, Configuration: map[string]any{"limit": 5}},
	{DefinitionID: WidgetTopProducts, AreaCode: AreaOverview, Configuration: map[string]any{"limit": 5}},
	{DefinitionID: WidgetInventorySummary, AreaCode: AreaInventory, Configuration: map[string]any{"show_gauge": true}},
	{DefinitionID: WidgetRestockPriority, AreaCode: AreaInventory},
	{DefinitionID: WidgetAllocationOptimizer, AreaCode: AreaInventory},
	{DefinitionID: WidgetAnomalyDetection, AreaCode: AreaInventory},
	{DefinitionID: WidgetSyncStatus, AreaCode: AreaInventory},
	{DefinitionID: WidgetInventoryTable, AreaCode: AreaInventory, Configuration: map[string]any{"tab": "all"}},
	{DefinitionID: WidgetConversionFunnel, AreaCode: AreaAnalytics},
	{DefinitionID: WidgetTrafficSources, AreaCode: AreaAnalytics},
	{DefinitionID: WidgetChannelPerformance, AreaCode: AreaAnalytics},
	{DefinitionID: WidgetCohortAnalysis, AreaCode: AreaAnalytics, Configuration: map[string]any{"mode": "retention"}},
	{DefinitionID: WidgetCampaignPerformance, AreaCode: AreaMarketing},
}

// DefaultAreaDefinitions returns copies of the tab areas.
func DefaultAreaDefinitions() []WidgetAreaDefinition {
	out := make([]WidgetAreaDefinition, len(defaultAreaDefinitions))
	copy(out, defaultAreaDefinitions)
	return out
}

// DefaultWidgetDefinitions returns copies of the built-in card definitions.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	return out
}

// DefaultSeedWidgets returns the starter layout, one entry per card placement.
func DefaultSeedWidgets() []AddWidgetRequest {
	out := make([]AddWidgetRequest, len(defaultSeedConfigs))
	for i, cfg := range defaultSeedConfigs {
		cfg.Configuration = cloneMap(cfg.Configuration)
		out[i] = cfg
	}
	return out
}
