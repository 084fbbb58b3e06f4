package retail

import "sort"

// AnomalyType classifies a detected anomaly.
type AnomalyType string

const (
	AnomalyStockMovement   AnomalyType = "stock_movement"
	AnomalyPriceChange     AnomalyType = "price_change"
	AnomalyConversionDrop  AnomalyType = "conversion_drop"
	AnomalySellThroughDrop AnomalyType = "sell_through_drop"
)

// Severity ranks anomalies.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	}
	return 3
}

// AnomalyProduct is the metric movement that triggered an anomaly.
type AnomalyProduct struct {
	Name     string  `json:"name" yaml:"name"`
	SKU      string  `json:"sku" yaml:"sku"`
	Previous float64 `json:"previous" yaml:"previous"`
	Current  float64 `json:"current" yaml:"current"`
	Unit     string  `json:"unit" yaml:"unit"`
}

// Anomaly is a single detection event.
type Anomaly struct {
	ID              string         `json:"id" yaml:"id"`
	Type            AnomalyType    `json:"type" yaml:"type"`
	Severity        Severity       `json:"severity" yaml:"severity"`
	Channel         Channel        `json:"channel" yaml:"channel"`
	Message         string         `json:"message" yaml:"message"`
	DetectedAt      string         `json:"detected_at" yaml:"detected_at"`
	Product         AnomalyProduct `json:"product" yaml:"product"`
	SuggestedAction string         `json:"suggested_action" yaml:"suggested_action"`
}

// ChangePercent is the relative movement between previous and current.
func (a Anomaly) ChangePercent() float64 {
	if a.Product.Previous == 0 {
		return 0
	}
	return (a.Product.Current - a.Product.Previous) / a.Product.Previous * 100
}

// SortBySeverity returns a copy with critical anomalies first.
func SortBySeverity(anomalies []Anomaly) []Anomaly {
	out := append([]Anomaly(nil), anomalies...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.rank() < out[j].Severity.rank()
	})
	return out
}

// CountBySeverity tallies anomalies per severity.
func CountBySeverity(anomalies []Anomaly) map[Severity]int {
	counts := make(map[Severity]int, 3)
	for _, a := range anomalies {
		counts[a.Severity]++
	}
	return counts
}
