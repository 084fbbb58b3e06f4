package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/retailjet/glance/components/retail"
)

func TestHTTPClientFetchFunnel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/funnels/query" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("expected auth header, got %s", got)
		}
		var query storeQuery
		_ = json.NewDecoder(r.Body).Decode(&query)
		if query.StoreID != "retailjet" {
			t.Fatalf("expected store id in body, got %q", query.StoreID)
		}
		resp := funnelResponse{
			StoreID: "retailjet",
			Steps:   []funnelStep{{Label: "Visitors", Value: 1000}, {Label: "Purchases", Value: 40}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL, APIKey: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	stages, err := client.FetchFunnel(context.Background(), "retailjet")
	if err != nil {
		t.Fatalf("fetch funnel: %v", err)
	}
	if len(stages) != 2 || stages[0].Label != "Visitors" {
		t.Fatalf("unexpected stages: %#v", stages)
	}
}

func TestHTTPClientFetchAnomalies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/anomalies/query" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		resp := anomalyResponse{
			StoreID: "retailjet",
			Anomalies: []anomalyEntry{{
				ID: "a1", Type: "price_change", Severity: "critical", Channel: "amazon",
				DetectedAt: "2024-03-01T10:00:00Z", ProductName: "Wireless Earbuds Pro", Previous: 10, Current: 5,
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	anomalies, err := client.FetchAnomalies(context.Background(), "retailjet")
	if err != nil {
		t.Fatalf("fetch anomalies: %v", err)
	}
	if len(anomalies) != 1 || anomalies[0].Severity != retail.SeverityCritical {
		t.Fatalf("unexpected anomalies: %#v", anomalies)
	}
	if got := anomalies[0].ChangePercent(); got != -50 {
		t.Fatalf("expected -50%% change, got %v", got)
	}
}

func TestHTTPClientRejectsBadTimestamps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(anomalyResponse{Anomalies: []anomalyEntry{{ID: "a1", DetectedAt: "yesterday"}}})
	}))
	t.Cleanup(server.Close)

	client, _ := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if _, err := client.FetchAnomalies(context.Background(), "retailjet"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestHTTPClientMapsErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cohorts/query":
			http.Error(w, "no such store", http.StatusNotFound)
		default:
			http.Error(w, "boom", http.StatusBadGateway)
		}
	}))
	t.Cleanup(server.Close)

	client, _ := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if _, err := client.FetchCohorts(context.Background(), "nope"); !errors.Is(err, retail.ErrStoreNotFound) {
		t.Fatalf("expected store not found, got %v", err)
	}
	if _, err := client.FetchFunnel(context.Background(), "retailjet"); err == nil {
		t.Fatalf("expected remote error")
	}
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPClient(HTTPConfig{}); err == nil {
		t.Fatalf("expected error for missing base url")
	}
}
