package analytics

import (
	"context"
	"fmt"
	"sync"

	"github.com/retailjet/glance/components/retail"
)

// MockData seeds deterministic analytics responses per store for tests or
// local demos.
type MockData struct {
	Funnel    map[string][]retail.FunnelStage
	Cohorts   map[string][]retail.Cohort
	Anomalies map[string][]retail.Anomaly
}

// MockClient implements Client using in-memory fixtures.
type MockClient struct {
	data MockData
	mu   sync.RWMutex
}

// NewMockClient builds a mock analytics client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// FetchFunnel returns the configured stages for the store.
func (c *MockClient) FetchFunnel(_ context.Context, storeID string) ([]retail.FunnelStage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stages, ok := c.data.Funnel[storeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", retail.ErrStoreNotFound, storeID)
	}
	return append([]retail.FunnelStage(nil), stages...), nil
}

// FetchCohorts returns the configured cohorts for the store.
func (c *MockClient) FetchCohorts(_ context.Context, storeID string) ([]retail.Cohort, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cohorts, ok := c.data.Cohorts[storeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", retail.ErrStoreNotFound, storeID)
	}
	out := make([]retail.Cohort, len(cohorts))
	for i, cohort := range cohorts {
		cohort.Retention = append([]*float64(nil), cohort.Retention...)
		out[i] = cohort
	}
	return out, nil
}

// FetchAnomalies returns the configured anomalies for the store.
func (c *MockClient) FetchAnomalies(_ context.Context, storeID string) ([]retail.Anomaly, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	anomalies, ok := c.data.Anomalies[storeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", retail.ErrStoreNotFound, storeID)
	}
	return append([]retail.Anomaly(nil), anomalies...), nil
}
