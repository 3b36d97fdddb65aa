package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/fincadocs/internal/core/extraction"
)

// extractionStatsCollector reads the extraction service's running counters at scrape time.
type extractionStatsCollector struct {
	stats func() extraction.Stats

	attempts *prometheus.Desc
	failed   *prometheus.Desc
	byMethod *prometheus.Desc
	meanConf *prometheus.Desc
}

// RegisterExtractionStats exposes stats on reg. The counters live in process and reset on restart.
func RegisterExtractionStats(reg prometheus.Registerer, service string, stats func() extraction.Stats) error {
	constLabels := prometheus.Labels{"service": service}
	return reg.Register(&extractionStatsCollector{
		stats: stats,
		attempts: prometheus.NewDesc(prometheus.BuildFQName(namespace, "extraction", "stats_attempts"),
			"Extractions attempted since start.", nil, constLabels),
		failed: prometheus.NewDesc(prometheus.BuildFQName(namespace, "extraction", "stats_failed"),
			"Extractions that produced no usable text since start.", nil, constLabels),
		byMethod: prometheus.NewDesc(prometheus.BuildFQName(namespace, "extraction", "stats_by_method"),
			"Extractions since start by resulting method.", []string{"method"}, constLabels),
		meanConf: prometheus.NewDesc(prometheus.BuildFQName(namespace, "extraction", "stats_mean_confidence"),
			"Mean confidence of successful extractions since start.", nil, constLabels),
	})
}

func (c *extractionStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.attempts
	ch <- c.failed
	ch <- c.byMethod
	ch <- c.meanConf
}

func (c *extractionStatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(c.attempts, prometheus.GaugeValue, float64(s.Total))
	ch <- prometheus.MustNewConstMetric(c.failed, prometheus.GaugeValue, float64(s.Failed))
	for method, n := range s.ByMethod {
		ch <- prometheus.MustNewConstMetric(c.byMethod, prometheus.GaugeValue, float64(n), string(method))
	}
	ch <- prometheus.MustNewConstMetric(c.meanConf, prometheus.GaugeValue, s.MeanConfidence)
}
