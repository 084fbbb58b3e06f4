package retail

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genInventoryItem() gopter.Gen {
	return gopter.CombineGens(
		gen.AlphaString(),
		gen.IntRange(0, 500),
		gen.IntRange(0, 120),
		gen.OneConstOf(StatusInStock, StatusLowStock, StatusOutOfStock),
	).Map(func(values []any) InventoryItem {
		return InventoryItem{
			Name:         values[0].(string),
			Stock:        values[1].(int),
			DaysOfSupply: values[2].(int),
			Status:       values[3].(StockStatus),
		}
	})
}

func TestInventoryProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("sort keeps every row", prop.ForAll(
		func(items []InventoryItem, desc bool) bool {
			dir := Ascending
			if desc {
				dir = Descending
			}
			sorted := SortInventory(items, SortConfig{Key: "stock", Direction: dir})
			if len(sorted) != len(items) {
				return false
			}
			total := 0
			for _, item := range items {
				total += item.Stock
			}
			for _, item := range sorted {
				total -= item.Stock
			}
			return total == 0
		},
		gen.SliceOf(genInventoryItem()),
		gen.Bool(),
	))

	properties.Property("sort by stock is ordered", prop.ForAll(
		func(items []InventoryItem) bool {
			sorted := SortInventory(items, SortConfig{Key: "stock", Direction: Ascending})
			for i := 1; i < len(sorted); i++ {
				if sorted[i-1].Stock > sorted[i].Stock {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genInventoryItem()),
	))

	properties.Property("tabs partition the table", prop.ForAll(
		func(items []InventoryItem) bool {
			in := len(FilterInventory(items, TabInStock))
			low := len(FilterInventory(items, TabLowStock))
			out := len(FilterInventory(items, TabOutOfStock))
			return in+low+out == len(FilterInventory(items, TabAll))
		},
		gen.SliceOf(genInventoryItem()),
	))

	properties.Property("toggle twice returns to ascending", prop.ForAll(
		func(key string) bool {
			first := ToggleSort(SortConfig{}, key)
			second := ToggleSort(first, key)
			third := ToggleSort(second, key)
			return first.Direction == Ascending && second.Direction == Descending && third.Direction == Ascending
		},
		gen.OneConstOf("name", "stock", "daysOfSupply", "status"),
	))

	properties.TestingRun(t)
}

func TestAllocationProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	base := ProductAllocation{
		TotalStock: 1000,
		Allocations: []ChannelAllocation{
			{Channel: ChannelAmazon, Current: 500},
			{Channel: ChannelWalmart, Current: 300},
			{Channel: ChannelShopify, Current: 200},
		},
	}

	properties.Property("reallocation never exceeds total stock", prop.ForAll(
		func(units int) bool {
			next, err := base.Reallocate(ChannelAmazon, units)
			if err != nil {
				return units < 0 || units+500 > base.TotalStock
			}
			return next.Allocated() <= base.TotalStock
		},
		gen.IntRange(-100, 1500),
	))

	properties.TestingRun(t)
}
