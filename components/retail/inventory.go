package retail

import (
	"sort"
	"strings"
)

// StockStatus is the availability label of an inventory row.
type StockStatus string

const (
	StatusInStock    StockStatus = "In Stock"
	StatusLowStock   StockStatus = "Low Stock"
	StatusOutOfStock StockStatus = "Out of Stock"
)

// InventoryItem is a row of the inventory details table.
type InventoryItem struct {
	ID           string      `json:"id" yaml:"id"`
	Name         string      `json:"name" yaml:"name"`
	SKU          string      `json:"sku" yaml:"sku"`
	Stock        int         `json:"stock" yaml:"stock"`
	Optimal      int         `json:"optimal" yaml:"optimal"`
	DaysOfSupply int         `json:"days_of_supply" yaml:"days_of_supply"`
	Status       StockStatus `json:"status" yaml:"status"`
	Location     string      `json:"location" yaml:"location"`
	Category     string      `json:"category" yaml:"category"`
}

// InventoryTab selects a subset of inventory rows.
type InventoryTab string

const (
	TabAll        InventoryTab = "all"
	TabInStock    InventoryTab = "in-stock"
	TabLowStock   InventoryTab = "low-stock"
	TabOutOfStock InventoryTab = "out-of-stock"
)

// FilterInventory returns the rows visible under the given tab. Unknown tabs
// show everything.
func FilterInventory(items []InventoryItem, tab InventoryTab) []InventoryItem {
	var want StockStatus
	switch tab {
	case TabInStock:
		want = StatusInStock
	case TabLowStock:
		want = StatusLowStock
	case TabOutOfStock:
		want = StatusOutOfStock
	default:
		return append([]InventoryItem(nil), items...)
	}
	out := make([]InventoryItem, 0, len(items))
	for _, item := range items {
		if item.Status == want {
			out = append(out, item)
		}
	}
	return out
}

// SortDirection orders table columns.
type SortDirection string

const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

// SortConfig is the active column sort of the inventory table.
type SortConfig struct {
	Key       string        `json:"key"`
	Direction SortDirection `json:"direction"`
}

// ToggleSort returns the next sort state when a column header is requested.
func ToggleSort(current SortConfig, key string) SortConfig {
	if current.Key == key && current.Direction == Ascending {
		return SortConfig{Key: key, Direction: Descending}
	}
	return SortConfig{Key: key, Direction: Ascending}
}

// SortInventory returns a sorted copy. Supported keys are name, stock,
// daysOfSupply and status; an empty or unknown key keeps the input order.
func SortInventory(items []InventoryItem, cfg SortConfig) []InventoryItem {
	out := append([]InventoryItem(nil), items...)
	less := inventoryLess(cfg.Key)
	if less == nil {
		return out
	}
	desc := cfg.Direction == Descending
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func inventoryLess(key string) func(a, b InventoryItem) bool {
	switch strings.TrimSpace(key) {
	case "name":
		return func(a, b InventoryItem) bool { return a.Name < b.Name }
	case "stock":
		return func(a, b InventoryItem) bool { return a.Stock < b.Stock }
	case "daysOfSupply", "days_of_supply":
		return func(a, b InventoryItem) bool { return a.DaysOfSupply < b.DaysOfSupply }
	case "status":
		return func(a, b InventoryItem) bool { return a.Status < b.Status }
	}
	return nil
}

// SupplyLevel buckets days-of-supply into an indicator.
type SupplyLevel string

const (
	SupplyCritical SupplyLevel = "critical"
	SupplyWarning  SupplyLevel = "warning"
	SupplyHealthy  SupplyLevel = "healthy"
)

// SupplyLevelFor classifies days of supply: <= 14 critical, <= 30 warning.
func SupplyLevelFor(days int) SupplyLevel {
	switch {
	case days <= 14:
		return SupplyCritical
	case days <= 30:
		return SupplyWarning
	default:
		return SupplyHealthy
	}
}

// InventorySummary aggregates the inventory table.
type InventorySummary struct {
	SKUs         int     `json:"skus"`
	UnitsOnHand  int     `json:"units_on_hand"`
	OptimalUnits int     `json:"optimal_units"`
	HealthScore  float64 `json:"health_score"`
	LowStock     int     `json:"low_stock"`
	OutOfStock   int     `json:"out_of_stock"`
	Critical     int     `json:"critical_supply"`
}

// SummarizeInventory computes totals and the stock health percentage.
func SummarizeInventory(items []InventoryItem) InventorySummary {
	summary := InventorySummary{SKUs: len(items)}
	for _, item := range items {
		summary.UnitsOnHand += item.Stock
		summary.OptimalUnits += item.Optimal
		switch item.Status {
		case StatusLowStock:
			summary.LowStock++
		case StatusOutOfStock:
			summary.OutOfStock++
		}
		if SupplyLevelFor(item.DaysOfSupply) == SupplyCritical {
			summary.Critical++
		}
	}
	if summary.OptimalUnits > 0 {
		summary.HealthScore = percent(float64(summary.UnitsOnHand), float64(summary.OptimalUnits))
	}
	return summary
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
