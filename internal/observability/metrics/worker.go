package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

// WorkerMetrics describes queue-driven pipeline runs. Stage level detail lives in PipelineMetrics,
// which registers on the same registry.
type WorkerMetrics struct {
	service  string
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
	queueLag prometheus.Histogram
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	constLabels := prometheus.Labels{"service": service}
	m := &WorkerMetrics{
		service:  service,
		registry: newRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "pipeline_runs_total",
			Help:        "Pipeline runs by outcome and requested processing level.",
			ConstLabels: constLabels,
		}, []string{"status", "level"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "pipeline_run_duration_seconds",
			Help:        "Wall time of one pipeline run by outcome.",
			Buckets:     []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
			ConstLabels: constLabels,
		}, []string{"status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "pipeline_runs_in_flight",
			Help:        "Documents currently being processed.",
			ConstLabels: constLabels,
		}),
		queueLag: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "queue_lag_seconds",
			Help:        "Delay between upload and the start of processing.",
			Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
			ConstLabels: constLabels,
		}),
	}
	m.registry.MustRegister(m.runs, m.duration, m.inFlight, m.queueLag)
	return m
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) Registerer() prometheus.Registerer {
	return m.registry
}

func (m *WorkerMetrics) StartRun() {
	m.inFlight.Inc()
}

// FinishRun records a run; status is "success", "partial" (stopped below the requested level) or "error".
func (m *WorkerMetrics) FinishRun(status string, level domain.ProcessingLevel, duration time.Duration) {
	m.inFlight.Dec()
	m.runs.WithLabelValues(status, strconv.Itoa(int(level))).Inc()
	m.duration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(lag time.Duration) {
	if lag >= 0 {
		m.queueLag.Observe(lag.Seconds())
	}
}
