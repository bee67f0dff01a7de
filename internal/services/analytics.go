package services

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"marketing-dashboard/internal/models"
	"marketing-dashboard/internal/pipeline"
)

const defaultTopCampaigns = 10

// TableSource produces the prepared table. *pipeline.Memo satisfies it.
type TableSource interface {
	Get(ctx context.Context) (*pipeline.Table, error)
	Invalidate()
}

// Analytics answers filtered aggregate queries over the prepared table.
// The table is never mutated; a reload swaps in a new one.
type Analytics struct {
	mu     sync.RWMutex
	table  *pipeline.Table
	source TableSource
	logger *slog.Logger
}

func NewAnalytics(source TableSource, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		table:  &pipeline.Table{},
		source: source,
		logger: logger,
	}
}

// SetData replaces the table with already-enriched records.
func (a *Analytics) SetData(records []models.EnrichedRecord) {
	a.swap(&pipeline.Table{Records: records, BuiltAt: time.Now().UTC()})
}

// Load fetches the table from the source. Unchanged inputs are served from
// the source's memo. On failure the current table is kept.
func (a *Analytics) Load(ctx context.Context) error {
	if a.source == nil {
		return nil
	}
	table, err := a.source.Get(ctx)
	if err != nil {
		return err
	}
	a.swap(table)
	return nil
}

// Reload drops the memoized table and loads again.
func (a *Analytics) Reload(ctx context.Context) error {
	if a.source != nil {
		a.source.Invalidate()
	}
	return a.Load(ctx)
}

func (a *Analytics) swap(table *pipeline.Table) {
	a.mu.Lock()
	a.table = table
	a.mu.Unlock()
	a.logger.Info("analytics table ready", "records", len(table.Records), "fingerprint", table.Fingerprint)
}

func (a *Analytics) records() []models.EnrichedRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.table.Records
}

// view returns the rows matching f as a new slice.
func (a *Analytics) view(f Filter) []models.EnrichedRecord {
	m := f.matcher()
	var out []models.EnrichedRecord
	for _, r := range a.records() {
		if m.match(&r) {
			out = append(out, r)
		}
	}
	return out
}

func (a *Analytics) Options() models.FilterOptions {
	records := a.records()
	opts := models.FilterOptions{
		Channels: []models.Channel{},
		Tactics:  []string{},
		States:   []string{},
	}
	channels := map[models.Channel]bool{}
	tactics := map[string]bool{}
	states := map[string]bool{}

	for i, r := range records {
		if i == 0 || r.Date.Before(opts.StartDate) {
			opts.StartDate = r.Date
		}
		if i == 0 || r.Date.After(opts.EndDate) {
			opts.EndDate = r.Date
		}
		channels[r.Channel] = true
		tactics[r.Tactic] = true
		states[r.State] = true
	}

	for _, c := range models.Channels {
		if channels[c] {
			opts.Channels = append(opts.Channels, c)
		}
	}
	for t := range tactics {
		opts.Tactics = append(opts.Tactics, t)
	}
	for s := range states {
		opts.States = append(opts.States, s)
	}
	slices.Sort(opts.Tactics)
	slices.Sort(opts.States)
	return opts
}

func (a *Analytics) KPIs(f Filter) models.KPISummary {
	rows := a.view(f)
	revenue, spend, orders := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range rows {
		revenue = revenue.Add(decimal.NewFromFloat(r.AttributedRevenue))
		spend = spend.Add(decimal.NewFromFloat(r.Spend))
		orders = orders.Add(decimal.NewFromFloat(r.Business.NewOrders))
	}

	kpi := models.KPISummary{
		TotalRevenue: revenue.Round(2).InexactFloat64(),
		TotalSpend:   spend.Round(2).InexactFloat64(),
		TotalOrders:  orders.InexactFloat64(),
		Rows:         len(rows),
	}
	if spend.IsPositive() {
		kpi.OverallROAS = revenue.DivRound(spend, 4).InexactFloat64()
	}
	return kpi
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

// DailyTrends returns one point per date, ascending.
func (a *Analytics) DailyTrends(f Filter) []models.DailyTrend {
	type acc struct {
		models.DailyTrend
		roas, ctr mean
	}
	groups := map[time.Time]*acc{}
	for _, r := range a.view(f) {
		g := groups[r.Date]
		if g == nil {
			g = &acc{DailyTrend: models.DailyTrend{Date: r.Date}}
			groups[r.Date] = g
		}
		g.Spend += r.Spend
		g.Revenue += r.AttributedRevenue
		g.Impressions += r.Impressions
		g.Clicks += r.Clicks
		g.NewOrders += r.Business.NewOrders
		g.NewCustomers += r.Business.NewCustomers
		g.roas.add(r.ROAS)
		g.ctr.add(r.CTR)
	}

	out := make([]models.DailyTrend, 0, len(groups))
	for _, g := range groups {
		g.AvgROAS = g.roas.value()
		g.AvgCTR = g.ctr.value()
		out = append(out, g.DailyTrend)
	}
	slices.SortFunc(out, func(x, y models.DailyTrend) int {
		return x.Date.Compare(y.Date)
	})
	return out
}

// ChannelPerformance returns spend and mean ROAS per channel in channel
// order, omitting channels with no rows.
func (a *Analytics) ChannelPerformance(f Filter) []models.ChannelPerformance {
	spend := map[models.Channel]float64{}
	roas := map[models.Channel]*mean{}
	for _, r := range a.view(f) {
		spend[r.Channel] += r.Spend
		if roas[r.Channel] == nil {
			roas[r.Channel] = &mean{}
		}
		roas[r.Channel].add(r.ROAS)
	}

	out := []models.ChannelPerformance{}
	for _, c := range models.Channels {
		if m, ok := roas[c]; ok {
			out = append(out, models.ChannelPerformance{Channel: c, Spend: spend[c], AvgROAS: m.value()})
		}
	}
	return out
}

// StateRevenue returns attributed revenue per state, highest first.
func (a *Analytics) StateRevenue(f Filter) []models.StateRevenue {
	groups := map[string]float64{}
	for _, r := range a.view(f) {
		groups[r.State] += r.AttributedRevenue
	}

	out := make([]models.StateRevenue, 0, len(groups))
	for state, revenue := range groups {
		out = append(out, models.StateRevenue{State: state, Revenue: revenue})
	}
	slices.SortFunc(out, func(x, y models.StateRevenue) int {
		return cmp.Or(cmp.Compare(y.Revenue, x.Revenue), cmp.Compare(x.State, y.State))
	})
	return out
}

// TopCampaigns ranks (channel, campaign) groups with positive spend by mean
// ROAS. A limit of 0 or less uses the default of 10.
func (a *Analytics) TopCampaigns(f Filter, limit int) []models.CampaignPerformance {
	if limit <= 0 {
		limit = defaultTopCampaigns
	}
	type key struct {
		channel  models.Channel
		campaign string
	}
	type acc struct {
		models.CampaignPerformance
		roas mean
	}
	groups := map[key]*acc{}
	for _, r := range a.view(f) {
		k := key{r.Channel, r.Campaign}
		g := groups[k]
		if g == nil {
			g = &acc{CampaignPerformance: models.CampaignPerformance{Channel: r.Channel, Campaign: r.Campaign}}
			groups[k] = g
		}
		g.Spend += r.Spend
		g.Revenue += r.AttributedRevenue
		g.roas.add(r.ROAS)
	}

	out := []models.CampaignPerformance{}
	for _, g := range groups {
		if g.Spend <= 0 {
			continue
		}
		g.AvgROAS = g.roas.value()
		out = append(out, g.CampaignPerformance)
	}
	slices.SortFunc(out, func(x, y models.CampaignPerformance) int {
		return cmp.Or(
			cmp.Compare(y.AvgROAS, x.AvgROAS),
			cmp.Compare(x.Channel, y.Channel),
			cmp.Compare(x.Campaign, y.Campaign),
		)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TacticPerformance returns spend, revenue and mean ROAS per tactic, by
// tactic name.
func (a *Analytics) TacticPerformance(f Filter) []models.TacticPerformance {
	type acc struct {
		models.TacticPerformance
		roas mean
	}
	groups := map[string]*acc{}
	for _, r := range a.view(f) {
		g := groups[r.Tactic]
		if g == nil {
			g = &acc{TacticPerformance: models.TacticPerformance{Tactic: r.Tactic}}
			groups[r.Tactic] = g
		}
		g.Spend += r.Spend
		g.Revenue += r.AttributedRevenue
		g.roas.add(r.ROAS)
	}

	out := make([]models.TacticPerformance, 0, len(groups))
	for _, g := range groups {
		g.AvgROAS = g.roas.value()
		out = append(out, g.TacticPerformance)
	}
	slices.SortFunc(out, func(x, y models.TacticPerformance) int {
		return cmp.Compare(x.Tactic, y.Tactic)
	})
	return out
}

// Rows returns the filtered detail rows, newest date first. Rows of the
// same date keep table order. A limit of 0 or less returns all rows.
func (a *Analytics) Rows(f Filter, limit int) []models.EnrichedRecord {
	rows := a.view(f)
	slices.SortStableFunc(rows, func(x, y models.EnrichedRecord) int {
		return y.Date.Compare(x.Date)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	if rows == nil {
		rows = []models.EnrichedRecord{}
	}
	return rows
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	table := a.table
	a.mu.RUnlock()

	opts := a.Options()
	return map[string]any{
		"record_count": len(table.Records),
		"built_at":     table.BuiltAt,
		"fingerprint":  table.Fingerprint,
		"by_channel":   table.CountByChannel(),
		"tactics":      len(opts.Tactics),
		"states":       len(opts.States),
	}
}
