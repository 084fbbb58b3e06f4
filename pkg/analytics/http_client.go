package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/retailjet/glance/components/retail"
)

// HTTPConfig configures the HTTP analytics client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient talks to a remote RetailJet analytics API via REST endpoints.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient builds a client capable of hitting live analytics APIs.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("analytics: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// FetchFunnel implements FunnelClient by calling the remote funnel endpoint.
func (c *HTTPClient) FetchFunnel(ctx context.Context, storeID string) ([]retail.FunnelStage, error) {
	var resp funnelResponse
	if err := c.do(ctx, http.MethodPost, "/funnels/query", storeQuery{StoreID: storeID}, &resp); err != nil {
		return nil, err
	}
	return resp.toStages(), nil
}

// FetchCohorts implements CohortClient via the cohorts endpoint.
func (c *HTTPClient) FetchCohorts(ctx context.Context, storeID string) ([]retail.Cohort, error) {
	var resp cohortResponse
	if err := c.do(ctx, http.MethodPost, "/cohorts/query", storeQuery{StoreID: storeID}, &resp); err != nil {
		return nil, err
	}
	return resp.toCohorts(), nil
}

// FetchAnomalies implements AnomalyClient via the anomalies endpoint.
func (c *HTTPClient) FetchAnomalies(ctx context.Context, storeID string) ([]retail.Anomaly, error) {
	var resp anomalyResponse
	if err := c.do(ctx, http.MethodPost, "/anomalies/query", storeQuery{StoreID: storeID}, &resp); err != nil {
		return nil, err
	}
	return resp.toAnomalies()
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("analytics: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("analytics: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("analytics: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", retail.ErrStoreNotFound, path)
	}
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("analytics: remote error %d: %s", resp.StatusCode, buf.String())
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("analytics: decode response: %w", err)
	}
	return nil
}

type storeQuery struct {
	StoreID string `json:"store_id"`
}

type funnelStep struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type funnelResponse struct {
	StoreID string       `json:"store_id"`
	Steps   []funnelStep `json:"steps"`
}

func (r funnelResponse) toStages() []retail.FunnelStage {
	stages := make([]retail.FunnelStage, len(r.Steps))
	for i, step := range r.Steps {
		stages[i] = retail.FunnelStage{Label: step.Label, Value: step.Value}
	}
	return stages
}

type cohortRow struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	Size      int        `json:"size"`
	Retention []*float64 `json:"retention"`
}

type cohortResponse struct {
	StoreID string      `json:"store_id"`
	Rows    []cohortRow `json:"rows"`
}

func (r cohortResponse) toCohorts() []retail.Cohort {
	cohorts := make([]retail.Cohort, len(r.Rows))
	for i, row := range r.Rows {
		cohorts[i] = retail.Cohort{
			ID:           row.ID,
			Label:        row.Label,
			InitialUsers: row.Size,
			Retention:    append([]*float64(nil), row.Retention...),
		}
	}
	return cohorts
}

type anomalyEntry struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	Severity        string  `json:"severity"`
	Channel         string  `json:"channel"`
	Message         string  `json:"message"`
	DetectedAt      string  `json:"detected_at"`
	ProductName     string  `json:"product_name"`
	SKU             string  `json:"sku"`
	Previous        float64 `json:"previous"`
	Current         float64 `json:"current"`
	Unit            string  `json:"unit"`
	SuggestedAction string  `json:"suggested_action"`
}

type anomalyResponse struct {
	StoreID   string         `json:"store_id"`
	Anomalies []anomalyEntry `json:"anomalies"`
}

func (r anomalyResponse) toAnomalies() ([]retail.Anomaly, error) {
	out := make([]retail.Anomaly, len(r.Anomalies))
	for i, entry := range r.Anomalies {
		if _, err := time.Parse(time.RFC3339, entry.DetectedAt); err != nil {
			return nil, fmt.Errorf("analytics: parse anomaly %s detected_at %q: %w", entry.ID, entry.DetectedAt, err)
		}
		out[i] = retail.Anomaly{
			ID:         entry.ID,
			Type:       retail.AnomalyType(entry.Type),
			Severity:   retail.Severity(entry.Severity),
			Channel:    retail.Channel(entry.Channel),
			Message:    entry.Message,
			DetectedAt: entry.DetectedAt,
			Product: retail.AnomalyProduct{
				Name:     entry.ProductName,
				SKU:      entry.SKU,
				Previous: entry.Previous,
				Current:  entry.Current,
				Unit:     entry.Unit,
			},
			SuggestedAction: entry.SuggestedAction,
		}
	}
	return out, nil
}
