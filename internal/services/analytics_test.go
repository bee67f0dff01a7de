package services

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketing-dashboard/internal/errors"
	"marketing-dashboard/internal/models"
	"marketing-dashboard/internal/pipeline"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func record(d int, ch models.Channel, tactic, state, campaign string, spend, revenue, roas, ctr, newOrders float64) models.EnrichedRecord {
	return models.EnrichedRecord{
		MarketingRecord: models.MarketingRecord{
			Date: day(d), Channel: ch, Tactic: tactic, State: state, Campaign: campaign,
			Impressions: 1000, Clicks: 10, Spend: spend, AttributedRevenue: revenue,
		},
		Business: models.BusinessRecord{Date: day(d), NewOrders: newOrders, NewCustomers: newOrders / 2},
		Matched:  true,
		ROAS:     roas,
		CTR:      ctr,
	}
}

func testRecords() []models.EnrichedRecord {
	return []models.EnrichedRecord{
		record(1, models.ChannelFacebook, "ASC", "CA", "Spring", 100, 400, 4, 1, 10),
		record(2, models.ChannelFacebook, "ASC", "NY", "Spring", 50, 50, 1, 2, 20),
		record(1, models.ChannelGoogle, "Search", "CA", "Brand", 200, 1200, 6, 3, 10),
		record(3, models.ChannelGoogle, "Display", "TX", "Generic", 0, 0, 0, 0, 0),
		record(2, models.ChannelTikTok, "Spark", "WA", "Launch", 40.1, 120.2, 3, 4, 20),
	}
}

func newTestAnalytics() *Analytics {
	a := NewAnalytics(nil, nil)
	a.SetData(testRecords())
	return a
}

func TestAnalytics_EmptyTable(t *testing.T) {
	a := NewAnalytics(nil, nil)

	assert.Empty(t, a.DailyTrends(Filter{}))
	assert.Empty(t, a.ChannelPerformance(Filter{}))
	assert.Empty(t, a.StateRevenue(Filter{}))
	assert.Empty(t, a.TopCampaigns(Filter{}, 10))
	assert.Empty(t, a.TacticPerformance(Filter{}))
	assert.NotNil(t, a.Rows(Filter{}, 0))
	assert.Equal(t, models.KPISummary{}, a.KPIs(Filter{}))

	opts := a.Options()
	assert.Empty(t, opts.Channels)
	assert.True(t, opts.StartDate.IsZero())
}

func TestAnalytics_Options(t *testing.T) {
	opts := newTestAnalytics().Options()

	assert.Equal(t, []models.Channel{models.ChannelFacebook, models.ChannelGoogle, models.ChannelTikTok}, opts.Channels)
	assert.Equal(t, []string{"ASC", "Display", "Search", "Spark"}, opts.Tactics)
	assert.Equal(t, []string{"CA", "NY", "TX", "WA"}, opts.States)
	assert.Equal(t, day(1), opts.StartDate)
	assert.Equal(t, day(3), opts.EndDate)
}

func TestAnalytics_KPIs(t *testing.T) {
	a := newTestAnalytics()

	kpi := a.KPIs(Filter{})
	assert.Equal(t, 1770.2, kpi.TotalRevenue)
	assert.Equal(t, 390.1, kpi.TotalSpend)
	assert.Equal(t, 60.0, kpi.TotalOrders)
	assert.Equal(t, 5, kpi.Rows)
	assert.InDelta(t, 1770.2/390.1, kpi.OverallROAS, 1e-4)

	none := a.KPIs(Filter{States: []string{"TX"}})
	assert.Zero(t, none.OverallROAS, "no spend means no ROAS")
	assert.Equal(t, 1, none.Rows)
}

func TestAnalytics_FilterIsInclusiveAndSetBased(t *testing.T) {
	a := newTestAnalytics()

	rows := a.Rows(Filter{Start: day(1), End: day(2)}, 0)
	assert.Len(t, rows, 4)

	rows = a.Rows(Filter{Start: day(2), End: day(2), Channels: []models.Channel{models.ChannelFacebook, models.ChannelTikTok}}, 0)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, day(2), r.Date)
	}

	rows = a.Rows(Filter{Tactics: []string{"ASC"}, States: []string{"NY"}}, 0)
	require.Len(t, rows, 1)
	assert.Equal(t, "Spring", rows[0].Campaign)
}

func TestAnalytics_FilterDoesNotMutateTable(t *testing.T) {
	a := newTestAnalytics()
	before := a.Rows(Filter{}, 0)

	rows := a.Rows(Filter{Channels: []models.Channel{models.ChannelGoogle}}, 0)
	rows[0].Spend = -1

	assert.Equal(t, before, a.Rows(Filter{}, 0))
}

func TestAnalytics_DailyTrends(t *testing.T) {
	trends := newTestAnalytics().DailyTrends(Filter{})
	require.Len(t, trends, 3)

	assert.Equal(t, day(1), trends[0].Date)
	assert.Equal(t, 300.0, trends[0].Spend)
	assert.Equal(t, 1600.0, trends[0].Revenue)
	assert.Equal(t, 2000.0, trends[0].Impressions)
	assert.Equal(t, 5.0, trends[0].AvgROAS)
	assert.Equal(t, 2.0, trends[0].AvgCTR)
	assert.Equal(t, 20.0, trends[0].NewOrders)
	assert.Equal(t, 10.0, trends[0].NewCustomers)

	assert.Equal(t, day(3), trends[2].Date)
}

func TestAnalytics_ChannelPerformance(t *testing.T) {
	perf := newTestAnalytics().ChannelPerformance(Filter{})
	require.Len(t, perf, 3)

	assert.Equal(t, models.ChannelFacebook, perf[0].Channel)
	assert.Equal(t, 150.0, perf[0].Spend)
	assert.Equal(t, 2.5, perf[0].AvgROAS)
	assert.Equal(t, models.ChannelGoogle, perf[1].Channel)
	assert.Equal(t, 3.0, perf[1].AvgROAS)
}

func TestAnalytics_StateRevenue(t *testing.T) {
	states := newTestAnalytics().StateRevenue(Filter{})
	require.Len(t, states, 4)

	assert.Equal(t, "CA", states[0].State)
	assert.Equal(t, 1600.0, states[0].Revenue)
	for i := 1; i < len(states); i++ {
		assert.GreaterOrEqual(t, states[i-1].Revenue, states[i].Revenue)
	}
}

func TestAnalytics_TopCampaigns(t *testing.T) {
	a := newTestAnalytics()

	top := a.TopCampaigns(Filter{}, 0)
	require.Len(t, top, 3, "campaign without spend is excluded")
	assert.Equal(t, "Brand", top[0].Campaign)
	assert.Equal(t, "Launch", top[1].Campaign)
	assert.Equal(t, "Spring", top[2].Campaign)
	assert.Equal(t, 150.0, top[2].Spend)
	assert.Equal(t, 2.5, top[2].AvgROAS)

	assert.Len(t, a.TopCampaigns(Filter{}, 1), 1)
}

func TestAnalytics_TopCampaignsDefaultLimit(t *testing.T) {
	var records []models.EnrichedRecord
	for i := range 15 {
		records = append(records, record(1, models.ChannelGoogle, "Search", "CA", fmt.Sprintf("C%02d", i), 10, float64(i), float64(i), 0, 0))
	}
	a := NewAnalytics(nil, nil)
	a.SetData(records)

	top := a.TopCampaigns(Filter{}, 0)
	require.Len(t, top, 10)
	assert.Equal(t, "C14", top[0].Campaign)
}

func TestAnalytics_TacticPerformance(t *testing.T) {
	tactics := newTestAnalytics().TacticPerformance(Filter{Channels: []models.Channel{models.ChannelFacebook, models.ChannelGoogle}})
	require.Len(t, tactics, 3)

	assert.Equal(t, "ASC", tactics[0].Tactic)
	assert.Equal(t, 150.0, tactics[0].Spend)
	assert.Equal(t, 450.0, tactics[0].Revenue)
	assert.Equal(t, 2.5, tactics[0].AvgROAS)
	assert.Equal(t, "Display", tactics[1].Tactic)
	assert.Equal(t, "Search", tactics[2].Tactic)
}

func TestAnalytics_RowsSortedByDateDesc(t *testing.T) {
	rows := newTestAnalytics().Rows(Filter{}, 3)
	require.Len(t, rows, 3)

	assert.Equal(t, day(3), rows[0].Date)
	assert.Equal(t, day(2), rows[1].Date)
	assert.Equal(t, models.ChannelFacebook, rows[1].Channel, "ties keep table order")
	assert.Equal(t, models.ChannelTikTok, rows[2].Channel)
}

type fakeSource struct {
	table       *pipeline.Table
	err         error
	gets        int
	invalidated int
}

func (f *fakeSource) Get(context.Context) (*pipeline.Table, error) {
	f.gets++
	return f.table, f.err
}

func (f *fakeSource) Invalidate() { f.invalidated++ }

func TestAnalytics_LoadAndReload(t *testing.T) {
	src := &fakeSource{table: &pipeline.Table{Records: testRecords(), Fingerprint: "abc"}}
	a := NewAnalytics(src, nil)

	require.NoError(t, a.Load(context.Background()))
	assert.Len(t, a.Rows(Filter{}, 0), 5)

	require.NoError(t, a.Reload(context.Background()))
	assert.Equal(t, 1, src.invalidated)
	assert.Equal(t, 2, src.gets)
	assert.Equal(t, "abc", a.Stats()["fingerprint"])
}

func TestAnalytics_FailedLoadKeepsTable(t *testing.T) {
	src := &fakeSource{table: &pipeline.Table{Records: testRecords()}}
	a := NewAnalytics(src, nil)
	require.NoError(t, a.Load(context.Background()))

	src.table, src.err = nil, errors.New(errors.CodeSchema, "missing columns")
	err := a.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeSchema, errors.CodeOf(err))
	assert.Len(t, a.Rows(Filter{}, 0), 5)
}

func TestAnalytics_ConcurrentAccess(t *testing.T) {
	a := newTestAnalytics()

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- true }()
			_ = a.KPIs(Filter{})
			_ = a.DailyTrends(Filter{})
			_ = a.TopCampaigns(Filter{}, 10)
			a.SetData(testRecords())
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestParseFilter(t *testing.T) {
	q := url.Values{
		"start":   {"2024-01-02"},
		"end":     {"2024-01-05"},
		"channel": {"Google,TikTok"},
		"tactic":  {"Search", " Display "},
		"state":   {"CA,,NY"},
	}

	f, err := ParseFilter(q)
	require.NoError(t, err)
	assert.Equal(t, day(2), f.Start)
	assert.Equal(t, day(5), f.End)
	assert.Equal(t, []models.Channel{models.ChannelGoogle, models.ChannelTikTok}, f.Channels)
	assert.Equal(t, []string{"Search", "Display"}, f.Tactics)
	assert.Equal(t, []string{"CA", "NY"}, f.States)
}

func TestParseFilter_Invalid(t *testing.T) {
	tests := []struct {
		name string
		q    url.Values
	}{
		{"unknown channel", url.Values{"channel": {"Myspace"}}},
		{"end before start", url.Values{"start": {"2024-02-01"}, "end": {"2024-01-01"}}},
		{"bad date", url.Values{"start": {"tomorrow"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFilter(tt.q)
			require.Error(t, err)
			assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
		})
	}
}

func BenchmarkAnalytics_DailyTrends(b *testing.B) {
	records := make([]models.EnrichedRecord, 0, 3000)
	for i := 0; i < 3000; i++ {
		records = append(records, record(1+i%28, models.Channels[i%3], "Search", "CA", fmt.Sprintf("C%d", i%40), float64(i), float64(2*i), 2, 1, 5))
	}
	a := NewAnalytics(nil, nil)
	a.SetData(records)

	b.ResetTimer()
	for b.Loop() {
		_ = a.DailyTrends(Filter{})
	}
}
