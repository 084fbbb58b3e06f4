package retail

import (
	"strings"
	"time"
)

// SalesPoint is daily revenue per channel.
type SalesPoint struct {
	Date    string  `json:"date" yaml:"date"`
	Amazon  float64 `json:"amazon" yaml:"amazon"`
	Walmart float64 `json:"walmart" yaml:"walmart"`
	Shopify float64 `json:"shopify" yaml:"shopify"`
}

// Value returns the revenue of a single channel.
func (p SalesPoint) Value(channel Channel) float64 {
	switch channel {
	case ChannelAmazon:
		return p.Amazon
	case ChannelWalmart:
		return p.Walmart
	case ChannelShopify:
		return p.Shopify
	}
	return 0
}

// Total sums all channels for the day.
func (p SalesPoint) Total() float64 {
	return p.Amazon + p.Walmart + p.Shopify
}

// ChannelTotals sums revenue per channel across the series.
func ChannelTotals(points []SalesPoint) map[Channel]float64 {
	totals := make(map[Channel]float64, 3)
	for _, channel := range Channels() {
		totals[channel] = 0
	}
	for _, p := range points {
		for _, channel := range Channels() {
			totals[channel] += p.Value(channel)
		}
	}
	return totals
}

// SeriesFor extracts one channel's daily values in order.
func SeriesFor(points []SalesPoint, channel Channel) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value(channel)
	}
	return out
}

// KPI is a headline metric card.
type KPI struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Format string  `json:"format"`
}

// OverviewKPIs derives the overview cards from sales, recent orders and top
// products. Margin is revenue-weighted across top products.
func OverviewKPIs(points []SalesPoint, sales []RecentSale, products []ProductPerformance) []KPI {
	revenue := 0.0
	for _, p := range points {
		revenue += p.Total()
	}
	units := 0
	productRevenue := 0.0
	weightedMargin := 0.0
	for _, product := range products {
		units += product.UnitsSold
		productRevenue += product.Revenue
		weightedMargin += product.Revenue * product.Margin
	}
	orders := float64(units)
	if orders == 0 {
		orders = float64(len(sales))
	}
	aov := 0.0
	if orders > 0 {
		aov = revenue / orders
	}
	margin := 0.0
	if productRevenue > 0 {
		margin = weightedMargin / productRevenue
	}
	return []KPI{
		{Key: "revenue", Label: "Total Revenue", Value: revenue, Format: "currency"},
		{Key: "orders", Label: "Orders", Value: orders, Format: "number"},
		{Key: "aov", Label: "Average Order Value", Value: aov, Format: "currency"},
		{Key: "margin", Label: "Profit Margin", Value: margin, Format: "percent"},
	}
}

const displayDateLayout = "Jan 2, 2006"

// InvalidDate is returned by FormatDisplayDate for unparsable input.
const InvalidDate = "Invalid date"

// Zone-less timestamps are read as UTC.
var displayDateInputs = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// FormatDisplayDate normalizes a date string to midnight UTC and renders it
// as "Jan 2, 2006".
func FormatDisplayDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return InvalidDate
	}
	for _, layout := range displayDateInputs {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format(displayDateLayout)
		}
	}
	return InvalidDate
}
