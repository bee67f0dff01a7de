package handlers

import (
	"cmp"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"marketing-dashboard/internal/errors"
	"marketing-dashboard/internal/observability"
	"marketing-dashboard/internal/services"
)

const maxAPIRows = 1000

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// filter parses the request filter, writing a 400 on failure.
func (h *APIHandlers) filter(w http.ResponseWriter, r *http.Request) (services.Filter, bool) {
	f, err := services.ParseFilter(r.URL.Query())
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return services.Filter{}, false
	}
	return f, true
}

func (h *APIHandlers) limit(w http.ResponseWriter, r *http.Request, def, max int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		err := errors.Validation("limit must be a number between 1 and " + strconv.Itoa(max))
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return 0, false
	}
	return n, true
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Options(), cacheHeaders)
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, h.analytics.KPIs(f), cacheHeaders)
}

func (h *APIHandlers) HandleDailyTrends(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, h.analytics.DailyTrends(f), cacheHeaders)
}

func (h *APIHandlers) HandleChannels(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, h.analytics.ChannelPerformance(f), cacheHeaders)
}

func (h *APIHandlers) HandleStates(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, h.analytics.StateRevenue(f), cacheHeaders)
}

func (h *APIHandlers) HandleCampaigns(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	n, ok := h.limit(w, r, maxCampaigns, 100)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, h.analytics.TopCampaigns(f, n), cacheHeaders)
}

func (h *APIHandlers) HandleTactics(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, h.analytics.TacticPerformance(f), cacheHeaders)
}

func (h *APIHandlers) HandleRows(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	n, ok := h.limit(w, r, maxTableRows, maxAPIRows)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, h.analytics.Rows(f, n), cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}

// HandleReload picks up changed source files. Unchanged inputs are served
// from the memo unless ?force=1 is given. The previous table keeps serving
// if the rebuild fails.
func (h *APIHandlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	start := time.Now()

	force, err := strconv.ParseBool(cmp.Or(r.URL.Query().Get("force"), "false"))
	if err != nil {
		errors.WriteError(w, h.logger, errors.Validation("force must be a boolean"), requestID)
		return
	}

	load := h.analytics.Load
	if force {
		load = h.analytics.Reload
	}
	if err := load(r.Context()); err != nil {
		h.logger.Error("reload failed", "error", err, "request_id", requestID)
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	h.logger.Info("reload complete", "forced", force, "duration", time.Since(start), "request_id", requestID)
	errors.WriteSuccessWithHeaders(w, h.analytics.Stats(), map[string]string{"Cache-Control": "no-store"})
}
