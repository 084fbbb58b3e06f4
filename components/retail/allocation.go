package retail

import "fmt"

const (
	projectedRevenueFactor = 1.15
	projectedMarginLift    = 2.5
)

// ChannelAllocation is the share of a product's stock assigned to a channel.
type ChannelAllocation struct {
	Channel       Channel `json:"channel" yaml:"channel"`
	Current       int     `json:"current" yaml:"current"`
	Suggested     int     `json:"suggested" yaml:"suggested"`
	ProfitMargin  float64 `json:"profit_margin" yaml:"profit_margin"`
	SalesVelocity float64 `json:"sales_velocity" yaml:"sales_velocity"`
	StockLevel    int     `json:"stock_level" yaml:"stock_level"`
	Revenue       float64 `json:"revenue" yaml:"revenue"`
}

// ProductAllocation is the allocation plan of a single product.
type ProductAllocation struct {
	ID          string              `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	SKU         string              `json:"sku" yaml:"sku"`
	TotalStock  int                 `json:"total_stock" yaml:"total_stock"`
	Allocations []ChannelAllocation `json:"allocations" yaml:"allocations"`
}

// AllocationMetrics is the revenue/margin pair compared by the optimizer.
type AllocationMetrics struct {
	Revenue float64 `json:"revenue"`
	Margin  float64 `json:"margin"`
}

// CurrentMetrics sums revenue and averages margin across channels.
func (p ProductAllocation) CurrentMetrics() AllocationMetrics {
	if len(p.Allocations) == 0 {
		return AllocationMetrics{}
	}
	var metrics AllocationMetrics
	for _, a := range p.Allocations {
		metrics.Revenue += a.Revenue
		metrics.Margin += a.ProfitMargin
	}
	metrics.Margin /= float64(len(p.Allocations))
	return metrics
}

// ProjectedMetrics applies the optimizer's projection to the current metrics.
func (p ProductAllocation) ProjectedMetrics() AllocationMetrics {
	current := p.CurrentMetrics()
	if len(p.Allocations) == 0 {
		return current
	}
	return AllocationMetrics{
		Revenue: current.Revenue * projectedRevenueFactor,
		Margin:  current.Margin + projectedMarginLift,
	}
}

// RevenueChange is the projected revenue change in percent.
func (p ProductAllocation) RevenueChange() float64 {
	current := p.CurrentMetrics()
	if current.Revenue == 0 {
		return 0
	}
	return (p.ProjectedMetrics().Revenue - current.Revenue) / current.Revenue * 100
}

// Share returns units as a percentage of total stock.
func (p ProductAllocation) Share(units int) float64 {
	return percent(float64(units), float64(p.TotalStock))
}

// Allocated sums the units currently assigned to channels.
func (p ProductAllocation) Allocated() int {
	total := 0
	for _, a := range p.Allocations {
		total += a.Current
	}
	return total
}

// Reallocate returns a copy with the channel's current allocation replaced.
func (p ProductAllocation) Reallocate(channel Channel, units int) (ProductAllocation, error) {
	if units < 0 {
		return p, fmt.Errorf("%w: units must be positive, got %d", ErrInvalidAllocation, units)
	}
	out := p
	out.Allocations = append([]ChannelAllocation(nil), p.Allocations...)
	found := false
	for i := range out.Allocations {
		if out.Allocations[i].Channel == channel {
			out.Allocations[i].Current = units
			found = true
		}
	}
	if !found {
		return p, fmt.Errorf("%w: %s", ErrUnknownChannel, channel)
	}
	if allocated := out.Allocated(); allocated > p.TotalStock {
		return p, fmt.Errorf("%w: %d units allocated exceeds total stock %d", ErrInvalidAllocation, allocated, p.TotalStock)
	}
	return out, nil
}
