package retail

import (
	"math"
	"sort"
)

// Priority ranks restock urgency.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

func (p Priority) rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// RestockItem is a product that needs replenishment.
type RestockItem struct {
	ID                   string    `json:"id" yaml:"id"`
	Name                 string    `json:"name" yaml:"name"`
	SKU                  string    `json:"sku" yaml:"sku"`
	Priority             Priority  `json:"priority" yaml:"priority"`
	Channels             []Channel `json:"channels" yaml:"channels"`
	CurrentStock         int       `json:"current_stock" yaml:"current_stock"`
	ReorderPoint         int       `json:"reorder_point" yaml:"reorder_point"`
	SuggestedQuantity    int       `json:"suggested_quantity" yaml:"suggested_quantity"`
	LeadTimeDays         int       `json:"lead_time_days" yaml:"lead_time_days"`
	SalesVelocity        float64   `json:"sales_velocity" yaml:"sales_velocity"`
	PotentialRevenueLoss float64   `json:"potential_revenue_loss" yaml:"potential_revenue_loss"`
	LastRestocked        string    `json:"last_restocked" yaml:"last_restocked"`
}

// DaysUntilStockout estimates days left at the current velocity.
func (r RestockItem) DaysUntilStockout() float64 {
	if r.SalesVelocity <= 0 {
		return math.Inf(1)
	}
	return float64(r.CurrentStock) / r.SalesVelocity
}

// BelowReorderPoint reports whether stock is at or below the reorder point.
func (r RestockItem) BelowReorderPoint() bool {
	return r.CurrentStock <= r.ReorderPoint
}

// StockCoverage is current stock as a percentage of the reorder point.
func (r RestockItem) StockCoverage() float64 {
	return percent(float64(r.CurrentStock), float64(r.ReorderPoint))
}

// SortByPriority returns a copy ordered critical first. Ties keep input order.
func SortByPriority(items []RestockItem) []RestockItem {
	out := append([]RestockItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.rank() < out[j].Priority.rank()
	})
	return out
}

// TotalRevenueAtRisk sums the potential revenue loss across items.
func TotalRevenueAtRisk(items []RestockItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.PotentialRevenueLoss
	}
	return total
}
