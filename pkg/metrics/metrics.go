package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the Prometheus collectors for pipeline runs.
type Recorder struct {
	registry      *prometheus.Registry
	handler       http.Handler
	stageDuration *prometheus.HistogramVec
	stageTotal    *prometheus.CounterVec
	sessions      *prometheus.GaugeVec
	activeDays    prometheus.Gauge
}

func New() *Recorder {
	registry := prometheus.NewRegistry()

	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_stage_duration_seconds",
		Help:    "Duration of pipeline stages in seconds",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 240, 600},
	}, []string{"stage"})

	stageTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_stage_runs_total",
		Help: "Pipeline stage runs by result status",
	}, []string{"stage", "status"})

	sessions := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scheduler_sessions",
		Help: "Sessions placed by the last run",
	}, []string{"phase"})

	activeDays := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scheduler_overflow_active_days",
		Help: "Overflow days used by the last run",
	})

	registry.MustRegister(stageDuration, stageTotal, sessions, activeDays)

	return &Recorder{
		registry:      registry,
		handler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		stageDuration: stageDuration,
		stageTotal:    stageTotal,
		sessions:      sessions,
		activeDays:    activeDays,
	}
}

// ObserveStage records one stage run. A nil recorder is a no-op.
func (r *Recorder) ObserveStage(stage, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	r.stageTotal.WithLabelValues(stage, status).Inc()
}

func (r *Recorder) SetSessions(phase string, n int) {
	if r == nil {
		return
	}
	r.sessions.WithLabelValues(phase).Set(float64(n))
}

func (r *Recorder) SetActiveDays(n int) {
	if r == nil {
		return
	}
	r.activeDays.Set(float64(n))
}

func (r *Recorder) Handler() http.Handler {
	return r.handler
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
