package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketing-dashboard/internal/handlers"
	"marketing-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

// NewServer wires the routes. A nil gatherer leaves /metrics unregistered.
func NewServer(analytics *services.Analytics, logger *slog.Logger, templateHandlers *TemplateHandlers, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(templateHandlers, gatherer)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers, gatherer prometheus.Gatherer) {
	// Dashboard and admin routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.HandleFunc("POST /admin/reload", s.apiHandlers.HandleReload)
	if gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// REST API endpoints
	s.mux.HandleFunc("GET /api/options", s.apiHandlers.HandleOptions)
	s.mux.HandleFunc("GET /api/kpis", s.apiHandlers.HandleKPIs)
	s.mux.HandleFunc("GET /api/daily", s.apiHandlers.HandleDailyTrends)
	s.mux.HandleFunc("GET /api/channels", s.apiHandlers.HandleChannels)
	s.mux.HandleFunc("GET /api/states", s.apiHandlers.HandleStates)
	s.mux.HandleFunc("GET /api/campaigns", s.apiHandlers.HandleCampaigns)
	s.mux.HandleFunc("GET /api/tactics", s.apiHandlers.HandleTactics)
	s.mux.HandleFunc("GET /api/rows", s.apiHandlers.HandleRows)

	s.mux.HandleFunc("GET /sse/options", s.sseHandlers.HandleOptions)

	// Datastar SSE endpoints. Filter changes post signals, initial loads use GET.
	for path, h := range map[string]http.HandlerFunc{
		"/sse/kpis":        s.sseHandlers.HandleKPIs,
		"/sse/daily":       s.sseHandlers.HandleDailyTrends,
		"/sse/channels":    s.sseHandlers.HandleChannels,
		"/sse/states":      s.sseHandlers.HandleStates,
		"/sse/campaigns":   s.sseHandlers.HandleCampaigns,
		"/sse/tactics":     s.sseHandlers.HandleTactics,
		"/sse/rows":        s.sseHandlers.HandleRows,
		"/sse/refresh-all": s.sseHandlers.HandleRefreshAll,
	} {
		s.mux.HandleFunc("GET "+path, h)
		s.mux.HandleFunc("POST "+path, h)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
