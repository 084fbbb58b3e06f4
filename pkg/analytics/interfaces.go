package analytics

import (
	"context"

	"github.com/retailjet/glance/components/retail"
)

// FunnelClient fetches conversion funnel stages from an upstream analytics service.
type FunnelClient interface {
	FetchFunnel(ctx context.Context, storeID string) ([]retail.FunnelStage, error)
}

// CohortClient fetches cohort retention grids from BI systems.
type CohortClient interface {
	FetchCohorts(ctx context.Context, storeID string) ([]retail.Cohort, error)
}

// AnomalyClient fetches detected anomalies from a monitoring provider.
type AnomalyClient interface {
	FetchAnomalies(ctx context.Context, storeID string) ([]retail.Anomaly, error)
}

// Client is a convenience union for services that implement all analytics calls.
type Client interface {
	FunnelClient
	CohortClient
	AnomalyClient
}
