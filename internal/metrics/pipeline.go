package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records data preparation runs and memo lookups. A nil
// *PipelineMetrics is valid and records nothing.
type PipelineMetrics struct {
	duration  prometheus.Histogram
	runs      *prometheus.CounterVec
	rows      *prometheus.GaugeVec
	memoCalls *prometheus.CounterVec
}

// NewPipelineMetrics registers the pipeline metrics on reg. A nil
// registerer yields a no-op recorder.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return nil
	}
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pipeline_run_duration_seconds",
		Help:    "Duration of full data preparation runs in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_runs_total",
		Help: "Data preparation runs by outcome and error code.",
	}, []string{"outcome", "code"})
	rows := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pipeline_rows",
		Help: "Rows in the current prepared table by channel.",
	}, []string{"channel"})
	memoCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_memo_lookups_total",
		Help: "Prepared table lookups by result (hit, disk, miss).",
	}, []string{"result"})
	reg.MustRegister(duration, runs, rows, memoCalls)
	return &PipelineMetrics{
		duration:  duration,
		runs:      runs,
		rows:      rows,
		memoCalls: memoCalls,
	}
}

func (m *PipelineMetrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}

func (m *PipelineMetrics) IncSuccess() {
	if m == nil {
		return
	}
	m.runs.WithLabelValues("success", "").Inc()
}

func (m *PipelineMetrics) IncFailure(code string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues("failure", normalizeLabel(code)).Inc()
}

// SetRows replaces the per-channel row gauges.
func (m *PipelineMetrics) SetRows(byChannel map[string]int) {
	if m == nil {
		return
	}
	m.rows.Reset()
	for channel, n := range byChannel {
		m.rows.WithLabelValues(normalizeLabel(channel)).Set(float64(n))
	}
}

func (m *PipelineMetrics) IncMemo(result string) {
	if m == nil {
		return
	}
	m.memoCalls.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
