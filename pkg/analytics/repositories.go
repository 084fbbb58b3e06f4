package analytics

import (
	"context"

	"github.com/retailjet/glance/components/retail"
)

// Repository serves funnel, cohort and anomaly data from an analytics client
// and every other dataset from the base repository.
type Repository struct {
	retail.Repository
	client Client
}

var _ retail.Repository = (*Repository)(nil)

// NewRepository adapts an analytics client into a retail repository.
func NewRepository(base retail.Repository, client Client) *Repository {
	return &Repository{Repository: base, client: client}
}

// Funnel reads remote funnel stages.
func (r *Repository) Funnel(ctx context.Context, storeID string) ([]retail.FunnelStage, error) {
	return r.client.FetchFunnel(ctx, storeID)
}

// Cohorts reads remote cohort grids.
func (r *Repository) Cohorts(ctx context.Context, storeID string) ([]retail.Cohort, error) {
	return r.client.FetchCohorts(ctx, storeID)
}

// Anomalies reads remote anomaly detections.
func (r *Repository) Anomalies(ctx context.Context, storeID string) ([]retail.Anomaly, error) {
	return r.client.FetchAnomalies(ctx, storeID)
}
