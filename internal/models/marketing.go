package models

import "time"

type Channel string

const (
	ChannelFacebook Channel = "Facebook"
	ChannelGoogle   Channel = "Google"
	ChannelTikTok   Channel = "TikTok"
)

// Channels lists the known marketing channels in load order.
var Channels = []Channel{ChannelFacebook, ChannelGoogle, ChannelTikTok}

func (c Channel) Valid() bool {
	for _, known := range Channels {
		if c == known {
			return true
		}
	}
	return false
}

// MarketingRecord is one row of a channel export: one campaign on one day.
type MarketingRecord struct {
	Date              time.Time `json:"date"`
	Channel           Channel   `json:"channel"`
	Tactic            string    `json:"tactic"`
	State             string    `json:"state"`
	Campaign          string    `json:"campaign"`
	Impressions       float64   `json:"impression"`
	Clicks            float64   `json:"clicks"`
	Spend             float64   `json:"spend"`
	AttributedRevenue float64   `json:"attributed_revenue"`
}

// BusinessRecord holds the business totals for one calendar day.
type BusinessRecord struct {
	Date         time.Time `json:"date"`
	Orders       float64   `json:"orders"`
	NewOrders    float64   `json:"new_orders"`
	NewCustomers float64   `json:"new_customers"`
	TotalRevenue float64   `json:"total_revenue"`
	GrossProfit  float64   `json:"gross_profit"`
	COGS         float64   `json:"cogs"`
}

// EnrichedRecord is a marketing row joined to the business totals of its
// date, with the derived ratio metrics attached. Business fields are zero
// when no business row exists for the date (Matched is false).
type EnrichedRecord struct {
	MarketingRecord
	Business BusinessRecord `json:"business"`
	Matched  bool           `json:"matched"`

	CTR  float64 `json:"ctr"`
	CPC  float64 `json:"cpc"`
	CPA  float64 `json:"cpa"`
	ROAS float64 `json:"roas"`
}
