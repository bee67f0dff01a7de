package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"marketing-dashboard/internal/errors"
	"marketing-dashboard/internal/models"
	"marketing-dashboard/internal/services"
)

const (
	maxTableRows = 50
	maxCampaigns = 10

	// signalsParam carries Datastar signals on GET requests.
	signalsParam = "datastar"
)

var kpiTemplate = template.Must(template.New("kpis").Parse(`
<div id="kpi-content" class="kpi-grid">
<div class="kpi-card"><span class="kpi-label">Total Revenue</span><strong>${{printf "%.2f" .TotalRevenue}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Total Spend</span><strong>${{printf "%.2f" .TotalSpend}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Overall ROAS</span><strong>{{printf "%.2f" .OverallROAS}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Total Orders</span><strong>{{printf "%.0f" .TotalOrders}}</strong></div>
</div>`))

var rowsTemplate = template.Must(template.New("rows").Parse(`
<div id="rows-content">
<table class="modern-table">
<thead><tr><th>Date</th><th>Channel</th><th>Tactic</th><th>State</th><th>Campaign</th><th>Spend</th><th>Revenue</th><th>CTR</th><th>CPC</th><th>ROAS</th></tr></thead>
<tbody>
{{range $i, $r := .Data}}{{if lt $i $.MaxRows}}<tr>
<td>{{$r.Date.Format "2006-01-02"}}</td>
<td><span class="channel-badge">{{$r.Channel}}</span></td>
<td>{{$r.Tactic}}</td>
<td>{{$r.State}}</td>
<td>{{$r.Campaign}}</td>
<td>${{printf "%.2f" $r.Spend}}</td>
<td><strong>${{printf "%.2f" $r.AttributedRevenue}}</strong></td>
<td>{{printf "%.4f" $r.CTR}}</td>
<td>{{printf "%.2f" $r.CPC}}</td>
<td>{{printf "%.2f" $r.ROAS}}</td>
</tr>{{end}}{{end}}
</tbody>
</table>
</div>`))

var selectTemplate = template.Must(template.New("select").Parse(
	`<select id="{{.ID}}" multiple data-bind="{{.Signal}}">{{range .Values}}<option value="{{.}}">{{.}}</option>{{end}}</select>`))

var filterErrorTemplate = template.Must(template.New("filterError").Parse(
	`<div id="filter-error" class="filter-error">{{.}}</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

type templateData struct {
	Data    any
	MaxRows int
}

// filterSignals mirrors the "filters" signal bound to the dashboard controls.
type filterSignals struct {
	Filters struct {
		Start    string   `json:"start"`
		End      string   `json:"end"`
		Channels []string `json:"channels"`
		Tactics  []string `json:"tactics"`
		States   []string `json:"states"`
	} `json:"filters"`
}

func (s filterSignals) values() url.Values {
	q := url.Values{}
	if s.Filters.Start != "" {
		q.Set("start", s.Filters.Start)
	}
	if s.Filters.End != "" {
		q.Set("end", s.Filters.End)
	}
	q["channel"] = s.Filters.Channels
	q["tactic"] = s.Filters.Tactics
	q["state"] = s.Filters.States
	return q
}

// readFilter takes the filter from Datastar signals when the request carries
// them and from plain query parameters otherwise.
func readFilter(r *http.Request) (services.Filter, error) {
	if r.Method == http.MethodGet && !r.URL.Query().Has(signalsParam) {
		return services.ParseFilter(r.URL.Query())
	}

	var signals filterSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		return services.Filter{}, errors.ValidationWrap(err, "invalid signals")
	}
	return services.ParseFilter(signals.values())
}

// filterOrReport returns false after sending the filter error to the page.
func (h *SSEHandlers) filterOrReport(sse *datastar.ServerSentEventGenerator, r *http.Request) (services.Filter, bool) {
	f, err := readFilter(r)
	if err == nil {
		sse.PatchElements(`<div id="filter-error" class="filter-error"></div>`)
		return f, true
	}

	h.logger.Warn("invalid dashboard filter", "error", err, "path", r.URL.Path)
	var buf strings.Builder
	if err := filterErrorTemplate.Execute(&buf, err.Error()); err != nil {
		h.logger.Error("render filter error", "error", err)
		return services.Filter{}, false
	}
	sse.PatchElements(buf.String())
	return services.Filter{}, false
}

type selectData struct {
	ID     string
	Signal string
	Values []string
}

// renderOptions renders the channel, tactic and state selects filled with
// the values present in the table.
func (h *SSEHandlers) renderOptions(opts models.FilterOptions) ([]string, error) {
	channels := make([]string, len(opts.Channels))
	for i, c := range opts.Channels {
		channels[i] = string(c)
	}

	var out []string
	for _, sel := range []selectData{
		{ID: "channel-select", Signal: "filters.channels", Values: channels},
		{ID: "tactic-select", Signal: "filters.tactics", Values: opts.Tactics},
		{ID: "state-select", Signal: "filters.states", Values: opts.States},
	} {
		var buf strings.Builder
		if err := selectTemplate.Execute(&buf, sel); err != nil {
			return nil, err
		}
		out = append(out, buf.String())
	}
	return out, nil
}

func (h *SSEHandlers) renderKPIs(kpi models.KPISummary) (string, error) {
	var buf strings.Builder
	err := kpiTemplate.Execute(&buf, kpi)
	return buf.String(), err
}

func (h *SSEHandlers) renderRows(rows []models.EnrichedRecord) (string, error) {
	var buf strings.Builder

	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
	}

	tmplData := templateData{Data: rows, MaxRows: maxTableRows}
	err := rowsTemplate.Execute(&buf, tmplData)
	return buf.String(), err
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) bool {
	jsonData, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return false
	}
	sse.PatchSignals(jsonData)
	return true
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleOptions fills the filter controls and defaults the date range to the
// span of the data.
func (h *SSEHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	defer flush(w)

	opts := h.analytics.Options()
	selects, err := h.renderOptions(opts)
	if err != nil {
		h.logger.Error("render filter options", "error", err)
		return
	}
	for _, html := range selects {
		sse.PatchElements(html)
	}

	dates := map[string]string{"start": "", "end": ""}
	if !opts.StartDate.IsZero() {
		dates["start"] = opts.StartDate.Format(time.DateOnly)
		dates["end"] = opts.EndDate.Format(time.DateOnly)
	}
	h.patchSignals(sse, map[string]any{"filters": dates})
}

func (h *SSEHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	defer flush(w)

	f, ok := h.filterOrReport(sse, r)
	if !ok {
		return
	}

	html, err := h.renderKPIs(h.analytics.KPIs(f))
	if err != nil {
		h.logger.Error("render kpis", "error", err)
		return
	}
	sse.PatchElements(html)
}

func (h *SSEHandlers) HandleDailyTrends(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	defer flush(w)

	f, ok := h.filterOrReport(sse, r)
	if !ok {
		return
	}

	if h.patchSignals(sse, map[string]any{"dailyData": h.analytics.DailyTrends(f)}) {
		sse.PatchElements(`<div id="daily-content">✅ Daily trend data loaded</div>`)
	}
}

func (h *SSEHandlers) HandleChannels(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	defer flush(w)

	f, ok := h.filterOrReport(sse, r)
	if !ok {
		return
	}

	if h.patchSignals(sse, map[string]any{"channelData": h.analytics.ChannelPerformance(f)}) {
		sse.PatchElements(`<div id="channels-content">✅ Channel data loaded</div>`)
	}
}

func (h *SSEHandlers) HandleStates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	defer flush(w)

	f, ok := h.filterOrReport(sse, r)
	if !ok {
		return
	}

	if h.patchSignals(sse, map[string]any{"stateData": h.analytics.StateRevenue(f)}) {
		sse.PatchElements(`<div id="states-content">✅ State revenue data loaded</div>`)
	}
}

func (h *SSEHandlers) HandleCampaigns(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	defer flush(w)

	f, ok := h.filterOrReport(sse, r)
	if !ok {
		return
	}

	if h.patchSignals(sse, map[string]any{"campaignData": h.analytics.TopCampaigns(f, maxCampaigns)}) {
		sse.PatchElements(`<div id="campaigns-content">✅ Campaign data loaded</div>`)
	}
}

func (h *SSEHandlers) HandleTactics(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	defer flush(w)

	f, ok := h.filterOrReport(sse, r)
	if !ok {
		return
	}

	if h.patchSignals(sse, map[string]any{"tacticData": h.analytics.TacticPerformance(f)}) {
		sse.PatchElements(`<div id="tactics-content">✅ Tactic data loaded</div>`)
	}
}

func (h *SSEHandlers) HandleRows(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	defer flush(w)

	f, ok := h.filterOrReport(sse, r)
	if !ok {
		return
	}

	html, err := h.renderRows(h.analytics.Rows(f, maxTableRows))
	if err != nil {
		h.logger.Error("render rows table", "error", err)
		return
	}
	sse.PatchElements(html)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	defer flush(w)

	f, ok := h.filterOrReport(sse, r)
	if !ok {
		return
	}

	kpiHTML, err := h.renderKPIs(h.analytics.KPIs(f))
	if err != nil {
		h.logger.Error("render kpis", "error", err)
		return
	}
	sse.PatchElements(kpiHTML)

	rowsHTML, err := h.renderRows(h.analytics.Rows(f, maxTableRows))
	if err != nil {
		h.logger.Error("render rows table", "error", err)
		return
	}
	sse.PatchElements(rowsHTML)

	// Send all chart signals in one call
	h.patchSignals(sse, map[string]any{
		"dailyData":    h.analytics.DailyTrends(f),
		"channelData":  h.analytics.ChannelPerformance(f),
		"stateData":    h.analytics.StateRevenue(f),
		"campaignData": h.analytics.TopCampaigns(f, maxCampaigns),
		"tacticData":   h.analytics.TacticPerformance(f),
	})
}
