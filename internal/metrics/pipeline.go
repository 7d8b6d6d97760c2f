// Package metrics exposes Prometheus instrumentation for the extraction
// pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PipelineMetrics struct {
	registry *prometheus.Registry

	extractTotal    *prometheus.CounterVec
	extractDuration *prometheus.HistogramVec
	extractInFlight prometheus.Gauge
	queueDepth      prometheus.Gauge
	batchesTotal    prometheus.Counter
	duplicatesTotal prometheus.Counter
}

func NewPipelineMetrics() *PipelineMetrics {
	registry := prometheus.NewRegistry()

	extractTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "textify",
			Subsystem: "pipeline",
			Name:      "extract_total",
			Help:      "Extractions by engine method and final status.",
		},
		[]string{"method", "status"},
	)
	extractDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "textify",
			Subsystem: "pipeline",
			Name:      "extract_duration_seconds",
			Help:      "Per-file extraction duration in seconds by method.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 15, 30, 60, 120},
		},
		[]string{"method"},
	)
	extractInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "textify",
			Subsystem: "pipeline",
			Name:      "extract_in_flight",
			Help:      "Number of in-flight extractions.",
		},
	)
	queueDepth := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "textify",
			Subsystem: "pipeline",
			Name:      "queue_depth",
			Help:      "Files waiting in the processing queue.",
		},
	)
	batchesTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "textify",
			Subsystem: "pipeline",
			Name:      "batches_total",
			Help:      "Batches dispatched by the scheduler.",
		},
	)
	duplicatesTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "textify",
			Subsystem: "pipeline",
			Name:      "duplicates_total",
			Help:      "Files rejected by the ingestion gate as duplicates.",
		},
	)

	registry.MustRegister(extractTotal, extractDuration, extractInFlight, queueDepth, batchesTotal, duplicatesTotal)

	return &PipelineMetrics{
		registry:        registry,
		extractTotal:    extractTotal,
		extractDuration: extractDuration,
		extractInFlight: extractInFlight,
		queueDepth:      queueDepth,
		batchesTotal:    batchesTotal,
		duplicatesTotal: duplicatesTotal,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartExtraction() {
	if m == nil {
		return
	}
	m.extractInFlight.Inc()
}

func (m *PipelineMetrics) FinishExtraction(method, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.extractInFlight.Dec()
	m.extractTotal.WithLabelValues(method, status).Inc()
	m.extractDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (m *PipelineMetrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

func (m *PipelineMetrics) BatchDispatched() {
	if m == nil {
		return
	}
	m.batchesTotal.Inc()
}

func (m *PipelineMetrics) DuplicateRejected() {
	if m == nil {
		return
	}
	m.duplicatesTotal.Inc()
}
