package retail

import (
	"fmt"
	"math"
)

// CohortMode selects what cohort cells display.
type CohortMode string

const (
	CohortRetention CohortMode = "retention"
	CohortRevenue   CohortMode = "revenue"
)

// Cohort is a monthly acquisition cohort. Retention cells are percentages of
// initial users; nil cells have no data yet.
type Cohort struct {
	ID           string     `json:"id" yaml:"id"`
	Label        string     `json:"label" yaml:"label"`
	InitialUsers int        `json:"initial_users" yaml:"initial_users"`
	Retention    []*float64 `json:"retention" yaml:"retention"`
}

// Band is a heat-map bucket for cohort cells.
type Band string

const (
	BandNone      Band = "none"
	BandExcellent Band = "excellent"
	BandStrong    Band = "strong"
	BandSteady    Band = "steady"
	BandFair      Band = "fair"
	BandWeak      Band = "weak"
	BandPoor      Band = "poor"
)

var (
	retentionThresholds = [5]float64{90, 80, 70, 60, 50}
	revenueThresholds   = [5]float64{120, 100, 80, 60, 40}
	bandOrder           = [6]Band{BandExcellent, BandStrong, BandSteady, BandFair, BandWeak, BandPoor}
)

// ProjectRevenue converts retention percentages into revenue per initial user
// using a fixed average order value. Cells without data stay nil.
func ProjectRevenue(cohorts []Cohort, aov float64) []Cohort {
	out := make([]Cohort, len(cohorts))
	for i, cohort := range cohorts {
		out[i] = cohort
		out[i].Retention = make([]*float64, len(cohort.Retention))
		for j, cell := range cohort.Retention {
			if cell == nil {
				continue
			}
			value := math.Round(*cell/100*aov*100) / 100
			out[i].Retention[j] = &value
		}
	}
	return out
}

// BandFor buckets a cell value for the given mode.
func BandFor(mode CohortMode, value *float64) Band {
	if value == nil {
		return BandNone
	}
	thresholds := retentionThresholds
	if mode == CohortRevenue {
		thresholds = revenueThresholds
	}
	for i, floor := range thresholds {
		if *value >= floor {
			return bandOrder[i]
		}
	}
	return BandPoor
}

// FormatCell renders a cohort cell for display.
func FormatCell(mode CohortMode, value *float64) string {
	if value == nil {
		return "-"
	}
	if mode == CohortRevenue {
		return fmt.Sprintf("$%.2f", *value)
	}
	return fmt.Sprintf("%.1f%%", *value)
}

// MaxPeriods returns the widest retention row, the number of table columns.
func MaxPeriods(cohorts []Cohort) int {
	widest := 0
	for _, cohort := range cohorts {
		if len(cohort.Retention) > widest {
			widest = len(cohort.Retention)
		}
	}
	return widest
}
