package retail

import "strings"

// CampaignStatus reports whether a campaign is serving.
type CampaignStatus string

const (
	CampaignActive CampaignStatus = "Active"
	CampaignPaused CampaignStatus = "Paused"
)

// Campaign is an advertising campaign row.
type Campaign struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Platform    string         `json:"platform" yaml:"platform"`
	Type        string         `json:"type" yaml:"type"`
	DailyBudget float64        `json:"daily_budget" yaml:"daily_budget"`
	Spend       float64        `json:"spend" yaml:"spend"`
	Impressions int            `json:"impressions" yaml:"impressions"`
	Clicks      int            `json:"clicks" yaml:"clicks"`
	Conversions int            `json:"conversions" yaml:"conversions"`
	Revenue     float64        `json:"revenue" yaml:"revenue"`
	Status      CampaignStatus `json:"status" yaml:"status"`
}

// ACOS is advertising cost of sale in percent.
func (c Campaign) ACOS() float64 { return acos(c.Spend, c.Revenue) }

// ROAS is return on ad spend.
func (c Campaign) ROAS() float64 { return roas(c.Spend, c.Revenue) }

// CTR is click-through rate in percent.
func (c Campaign) CTR() float64 {
	return percent(float64(c.Clicks), float64(c.Impressions))
}

// ConversionRate is conversions per click in percent.
func (c Campaign) ConversionRate() float64 {
	return percent(float64(c.Conversions), float64(c.Clicks))
}

func acos(spend, revenue float64) float64 {
	if revenue == 0 {
		return 0
	}
	return spend / revenue * 100
}

func roas(spend, revenue float64) float64 {
	if spend == 0 {
		return 0
	}
	return revenue / spend
}

// CampaignSummary aggregates a campaign table.
type CampaignSummary struct {
	Campaigns   int     `json:"campaigns"`
	Active      int     `json:"active"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`
	Conversions int     `json:"conversions"`
	ACOS        float64 `json:"acos"`
	ROAS        float64 `json:"roas"`
}

// SummarizeCampaigns totals campaigns. ACOS and ROAS are computed from the
// totals, not averaged per campaign.
func SummarizeCampaigns(campaigns []Campaign) CampaignSummary {
	summary := CampaignSummary{Campaigns: len(campaigns)}
	for _, c := range campaigns {
		if c.Status == CampaignActive {
			summary.Active++
		}
		summary.Spend += c.Spend
		summary.Revenue += c.Revenue
		summary.Impressions += c.Impressions
		summary.Clicks += c.Clicks
		summary.Conversions += c.Conversions
	}
	summary.ACOS = acos(summary.Spend, summary.Revenue)
	summary.ROAS = roas(summary.Spend, summary.Revenue)
	return summary
}

// FilterCampaigns keeps campaigns matching status and platform. Empty filters
// match everything; comparison ignores case.
func FilterCampaigns(campaigns []Campaign, status, platform string) []Campaign {
	out := make([]Campaign, 0, len(campaigns))
	for _, c := range campaigns {
		if status != "" && !strings.EqualFold(string(c.Status), status) {
			continue
		}
		if platform != "" && !strings.EqualFold(c.Platform, platform) {
			continue
		}
		out = append(out, c)
	}
	return out
}
