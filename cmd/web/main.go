package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"marketing-dashboard/internal/config"
	"marketing-dashboard/internal/metrics"
	"marketing-dashboard/internal/middleware"
	"marketing-dashboard/internal/models"
	"marketing-dashboard/internal/observability"
	"marketing-dashboard/internal/pipeline"
	"marketing-dashboard/internal/server"
	"marketing-dashboard/internal/services"
	"marketing-dashboard/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	cacheMaxAge   = "public, max-age=300"
)

// handleDashboard renders the dashboard page. Data arrives afterwards over SSE.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// sourcesFromConfig resolves the four configured files against the data
// directory.
func sourcesFromConfig(cfg config.DataConfig) pipeline.Sources {
	return pipeline.Sources{
		Marketing: []pipeline.MarketingSource{
			{Channel: models.ChannelFacebook, Path: cfg.Path(cfg.FacebookCSV)},
			{Channel: models.ChannelGoogle, Path: cfg.Path(cfg.GoogleCSV)},
			{Channel: models.ChannelTikTok, Path: cfg.Path(cfg.TikTokCSV)},
		},
		Business: cfg.Path(cfg.BusinessCSV),
	}
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func main() {
	// A missing .env file is fine; the environment and defaults still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	reg := newRegistry()
	pipelineMetrics := metrics.NewPipelineMetrics(reg)

	cacheDir := ""
	if cfg.Data.DiskCache {
		cacheDir = cfg.Data.CacheDir
	}
	p := pipeline.New(sourcesFromConfig(cfg.Data), logger, pipelineMetrics)
	memo := pipeline.NewMemo(p, cacheDir, logger, pipelineMetrics)

	analytics := services.NewAnalytics(memo, logger)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Data.LoadTimeout)
	defer cancel()

	start := time.Now()
	if err := analytics.Load(ctx); err != nil {
		logger.Error("failed to prepare marketing data", "error", err)
		os.Exit(1)
	}
	logger.Info("marketing data prepared", "duration", time.Since(start))

	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(analytics, logger, templateHandlers, reg)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		middleware.Metrics(metrics.NewHTTPMetrics(reg)),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analytics service", "stats", analytics.Stats())
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
