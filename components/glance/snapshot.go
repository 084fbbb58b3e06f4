package glance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/retailjet/glance/components/retail"
)

// Snapshot is the live store data replies are rendered against. Groups of
// fields are only meaningful when their Has flag is set.
type Snapshot struct {
	StoreID   string
	StoreName string

	HasInventory    bool
	HealthScore     float64
	LowStock        int
	OutOfStock      int
	CriticalRestock int

	HasCampaigns    bool
	ACOS            float64
	ROAS            float64
	ActiveCampaigns int

	HasSales    bool
	Revenue     float64
	BestChannel string
	TopProduct  string

	HasAnomalies      bool
	CriticalAnomalies int
}

// Params returns the placeholder values available for reply templates.
func (s Snapshot) Params() map[string]string {
	params := map[string]string{}
	if s.StoreName != "" {
		params["store"] = s.StoreName
	}
	if s.HasInventory {
		params["health_score"] = fmt.Sprintf("%.0f", math.Min(s.HealthScore, 100))
		params["low_stock"] = fmt.Sprint(s.LowStock)
		params["out_of_stock"] = fmt.Sprint(s.OutOfStock)
		params["restock_critical"] = fmt.Sprint(s.CriticalRestock)
	}
	if s.HasCampaigns {
		params["acos"] = fmt.Sprintf("%.1f", s.ACOS)
		params["roas"] = fmt.Sprintf("%.2f", s.ROAS)
		params["active_campaigns"] = fmt.Sprint(s.ActiveCampaigns)
	}
	if s.HasSales {
		params["revenue"] = humanize.Comma(int64(math.Round(s.Revenue)))
		if s.BestChannel != "" {
			params["best_channel"] = s.BestChannel
		}
	}
	if s.TopProduct != "" {
		params["top_product"] = s.TopProduct
	}
	if s.HasAnomalies {
		params["critical_anomalies"] = fmt.Sprint(s.CriticalAnomalies)
	}
	return params
}

// Snapshotter loads a Snapshot for a store.
type Snapshotter interface {
	Snapshot(ctx context.Context, storeID string) (Snapshot, error)
}

// RetailSnapshotter derives snapshots from the retail repository. Sections
// the store has no data for are left unset.
type RetailSnapshotter struct {
	Repo retail.Repository
}

// Snapshot implements Snapshotter.
func (r RetailSnapshotter) Snapshot(ctx context.Context, storeID string) (Snapshot, error) {
	snap := Snapshot{StoreID: storeID}
	if r.Repo == nil || storeID == "" {
		return snap, nil
	}
	store, err := r.Repo.Store(ctx, storeID)
	if err != nil {
		return snap, err
	}
	snap.StoreName = store.Name

	var errs error
	if items, err := r.Repo.Inventory(ctx, storeID); err != nil {
		errs = errors.Join(errs, err)
	} else if len(items) > 0 {
		summary := retail.SummarizeInventory(items)
		snap.HasInventory = true
		snap.HealthScore = summary.HealthScore
		snap.LowStock = summary.LowStock
		snap.OutOfStock = summary.OutOfStock
		if restock, err := r.Repo.Restock(ctx, storeID); err == nil {
			for _, item := range restock {
				if item.Priority == retail.PriorityCritical {
					snap.CriticalRestock++
				}
			}
		}
	}
	if campaigns, err := r.Repo.Campaigns(ctx, storeID); err != nil {
		errs = errors.Join(errs, err)
	} else if len(campaigns) > 0 {
		summary := retail.SummarizeCampaigns(campaigns)
		snap.HasCampaigns = true
		snap.ACOS = summary.ACOS
		snap.ROAS = summary.ROAS
		snap.ActiveCampaigns = summary.Active
	}
	if points, err := r.Repo.Sales(ctx, storeID); err != nil {
		errs = errors.Join(errs, err)
	} else if len(points) > 0 {
		snap.HasSales = true
		snap.Revenue, snap.BestChannel = channelLeader(retail.ChannelTotals(points))
	}
	if products, err := r.Repo.TopProducts(ctx, storeID); err == nil && len(products) > 0 {
		best := products[0]
		for _, p := range products[1:] {
			if p.Revenue > best.Revenue {
				best = p
			}
		}
		snap.TopProduct = best.Name
	}
	if anomalies, err := r.Repo.Anomalies(ctx, storeID); err == nil && len(anomalies) > 0 {
		snap.HasAnomalies = true
		snap.CriticalAnomalies = retail.CountBySeverity(anomalies)[retail.SeverityCritical]
	}
	return snap, errs
}

func channelLeader(totals map[retail.Channel]float64) (float64, string) {
	channels := make([]retail.Channel, 0, len(totals))
	sum := 0.0
	for ch, v := range totals {
		channels = append(channels, ch)
		sum += v
	}
	if len(channels) == 0 {
		return 0, ""
	}
	sort.Slice(channels, func(i, j int) bool {
		if totals[channels[i]] == totals[channels[j]] {
			return channels[i] < channels[j]
		}
		return totals[channels[i]] > totals[channels[j]]
	})
	return sum, channels[0].DisplayName()
}
