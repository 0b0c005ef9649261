package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "forecast_verify"

// Metrics holds the Prometheus counters, histograms, and gauges for the verification service.
type Metrics struct {
	RequestsConsumed   prometheus.Counter
	ReportsProduced    prometheus.Counter
	VerificationErrors *prometheus.CounterVec // labels: reason={decode,unknown_product,configuration,invalid}
	PipelineRunning    prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Verification outcome metrics.
	Verifications *prometheus.CounterVec // labels: product
	VerifiedItems *prometheus.CounterVec // labels: product, outcome={pass,fail,skipped}
	Accuracy      *prometheus.GaugeVec   // labels: product, station
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RequestsConsumed,
		m.ReportsProduced,
		m.VerificationErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.Verifications,
		m.VerifiedItems,
		m.Accuracy,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics that are not attached to any
// registry. One-shot tools such as verifybatch use it when nothing scrapes them.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewUnregisteredMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_consumed_total",
			Help:      "Total verification requests read from the source topic.",
		}),
		ReportsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_produced_total",
			Help:      "Total verification reports written to the sink topic.",
		}),
		VerificationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_errors_total",
			Help:      "Requests that could not be verified, by reason.",
		}, []string{"reason"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of requests per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete extract-verify-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Completed verifications by product.",
		}, []string{"product"}),
		VerifiedItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verified_items_total",
			Help:      "Verified warnings, rows and levels by product and outcome.",
		}, []string{"product", "outcome"}),
		Accuracy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "verification_accuracy_percent",
			Help:      "Headline accuracy of the latest report per product and station.",
		}, []string{"product", "station"}),
	}
}
