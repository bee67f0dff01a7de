package models

import "time"

type FilterOptions struct {
	Channels  []Channel `json:"channels"`
	Tactics   []string  `json:"tactics"`
	States    []string  `json:"states"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type KPISummary struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalSpend   float64 `json:"total_spend"`
	OverallROAS  float64 `json:"overall_roas"`
	TotalOrders  float64 `json:"total_orders"`
	Rows         int     `json:"rows"`
}

type DailyTrend struct {
	Date         time.Time `json:"date"`
	Spend        float64   `json:"spend"`
	Revenue      float64   `json:"revenue"`
	Impressions  float64   `json:"impressions"`
	Clicks       float64   `json:"clicks"`
	AvgROAS      float64   `json:"avg_roas"`
	AvgCTR       float64   `json:"avg_ctr"`
	NewOrders    float64   `json:"new_orders"`
	NewCustomers float64   `json:"new_customers"`
}

type ChannelPerformance struct {
	Channel Channel `json:"channel"`
	Spend   float64 `json:"spend"`
	AvgROAS float64 `json:"avg_roas"`
}

type StateRevenue struct {
	State   string  `json:"state"`
	Revenue float64 `json:"revenue"`
}

type CampaignPerformance struct {
	Channel  Channel `json:"channel"`
	Campaign string  `json:"campaign"`
	Spend    float64 `json:"spend"`
	Revenue  float64 `json:"revenue"`
	AvgROAS  float64 `json:"avg_roas"`
}

type TacticPerformance struct {
	Tactic  string  `json:"tactic"`
	Spend   float64 `json:"spend"`
	Revenue float64 `json:"revenue"`
	AvgROAS float64 `json:"avg_roas"`
}
