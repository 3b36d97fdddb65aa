package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics instruments the API router. Every series carries a constant service label.
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inFlight prometheus.Gauge
	rejected *prometheus.CounterVec
	uploads  prometheus.Histogram
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	constLabels := prometheus.Labels{"service": service}
	m := &HTTPServerMetrics{
		registry: newRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "HTTP requests by method, route and status code.",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request latency by method and route.",
			Buckets:     []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 60},
			ConstLabels: constLabels,
		}, []string{"method", "path"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Requests currently being served.",
			ConstLabels: constLabels,
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "rejected_total",
			Help:        "Requests turned away by rate limiting or backpressure.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		uploads: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "upload_bytes",
			Help:        "Size of accepted document uploads.",
			Buckets:     prometheus.ExponentialBuckets(16<<10, 4, 8),
			ConstLabels: constLabels,
		}),
	}
	m.registry.MustRegister(m.requests, m.latency, m.inFlight, m.rejected, m.uploads)
	return m
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registerer lets pipeline metrics share the /metrics endpoint.
func (m *HTTPServerMetrics) Registerer() prometheus.Registerer {
	return m.registry
}

func (m *HTTPServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := routeLabel(r.URL.Path)
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *HTTPServerMetrics) RecordUpload(sizeBytes int64) {
	if sizeBytes > 0 {
		m.uploads.Observe(float64(sizeBytes))
	}
}

// routeLabel collapses document ids and type names so label cardinality stays bounded.
func routeLabel(path string) string {
	if rest, ok := strings.CutPrefix(path, "/v1/documents/"); ok {
		if _, tail, found := strings.Cut(rest, "/"); found {
			return "/v1/documents/{document_id}/" + tail
		}
		return "/v1/documents/{document_id}"
	}
	if strings.HasPrefix(path, "/v1/validate/") {
		return "/v1/validate/{type}"
	}
	return path
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
