package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

// PipelineMetrics records per-stage outcomes of the ingestion pipeline.
type PipelineMetrics struct {
	service string

	stageTotal      *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	extractionTotal *prometheus.CounterVec
	extractionConf  prometheus.Histogram
	classifyTotal   *prometheus.CounterVec
	validationScore *prometheus.HistogramVec
	aiTokensTotal   *prometheus.CounterVec
	aiCostTotal     prometheus.Counter
}

func NewPipelineMetrics(service string, reg prometheus.Registerer) *PipelineMetrics {
	constLabels := prometheus.Labels{"service": service}
	m := &PipelineMetrics{
		service: service,
		stageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_total",
			Help:      "Pipeline stage outcomes by stage and status.",
		}, []string{"service", "stage", "status"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"service", "stage"}),
		extractionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "results_total",
			Help:      "Extraction results by method and winning strategy.",
		}, []string{"service", "method", "strategy"}),
		extractionConf: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "extraction",
			Name:        "confidence",
			Help:        "Confidence of successful extractions.",
			Buckets:     prometheus.LinearBuckets(0.1, 0.1, 10),
			ConstLabels: constLabels,
		}),
		classifyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classification",
			Name:      "results_total",
			Help:      "Classification results by method and document type.",
		}, []string{"service", "method", "type"}),
		validationScore: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "score",
			Help:      "Compatibility score of extracted metadata by document type.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}, []string{"service", "type"}),
		aiTokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "tokens_total",
			Help:      "Model tokens by direction.",
		}, []string{"service", "direction"}),
		aiCostTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "ai",
			Name:        "estimated_cost_total",
			Help:        "Estimated model cost in configured currency units.",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(
		m.stageTotal,
		m.stageDuration,
		m.extractionTotal,
		m.extractionConf,
		m.classifyTotal,
		m.validationScore,
		m.aiTokensTotal,
		m.aiCostTotal,
	)
	return m
}

func (m *PipelineMetrics) ObserveStage(stage domain.Stage, status domain.StageStatus, duration time.Duration) {
	m.stageTotal.WithLabelValues(m.service, string(stage), string(status)).Inc()
	m.stageDuration.WithLabelValues(m.service, string(stage)).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObserveExtraction(result domain.ExtractionResult) {
	strategy := result.Strategy
	if strategy == "" {
		strategy = "none"
	}
	m.extractionTotal.WithLabelValues(m.service, string(result.Method), strategy).Inc()
	if result.OK() {
		m.extractionConf.Observe(result.Confidence)
	}
}

func (m *PipelineMetrics) ObserveClassification(result domain.ClassificationResult) {
	m.classifyTotal.WithLabelValues(m.service, string(result.Method), string(result.Type)).Inc()
}

func (m *PipelineMetrics) ObserveValidation(result domain.ValidationResult) {
	m.validationScore.WithLabelValues(m.service, string(result.DocumentType)).Observe(result.Score)
}

func (m *PipelineMetrics) ObserveAIUsage(usage domain.AIUsage) {
	if usage.PromptTokens > 0 {
		m.aiTokensTotal.WithLabelValues(m.service, "in").Add(float64(usage.PromptTokens))
	}
	if usage.OutputTokens > 0 {
		m.aiTokensTotal.WithLabelValues(m.service, "out").Add(float64(usage.OutputTokens))
	}
	if usage.EstimatedCost > 0 {
		m.aiCostTotal.Add(usage.EstimatedCost)
	}
}
