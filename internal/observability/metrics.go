package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storm_track"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Dataset refresh metrics.
	DatasetRefreshes       *prometheus.CounterVec // labels: outcome={success,unchanged,error}
	DatasetRefreshDuration prometheus.Histogram
	DatasetRecords         prometheus.Gauge
	DatasetLoaded          prometheus.Gauge

	// Request metrics.
	SeasonRequests     *prometheus.CounterVec // labels: outcome={ok,no_data,invalid,unavailable}
	PredictionRequests *prometheus.CounterVec // labels: outcome={success,invalid,failure}
	StaleDiscarded     prometheus.Counter

	// Predictor client metrics.
	PredictorCache       *prometheus.CounterVec // labels: result={hit,miss}
	PredictorAPIDuration prometheus.Histogram

	PublishErrors prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.DatasetRefreshes,
		m.DatasetRefreshDuration,
		m.DatasetRecords,
		m.DatasetLoaded,
		m.SeasonRequests,
		m.PredictionRequests,
		m.StaleDiscarded,
		m.PredictorCache,
		m.PredictorAPIDuration,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_refreshes_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		DatasetRefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_refresh_duration_seconds",
			Help:      "Duration of a dataset fetch and parse.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Observations held by the current dataset snapshot.",
		}),
		DatasetLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_loaded",
			Help:      "1 once a dataset snapshot is available, 0 before.",
		}),
		SeasonRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "season_requests_total",
			Help:      "Season table requests by outcome.",
		}, []string{"outcome"}),
		PredictionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_requests_total",
			Help:      "Prediction requests by outcome.",
		}, []string{"outcome"}),
		StaleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_stale_discarded_total",
			Help:      "Prediction responses discarded because a newer request had already rendered.",
		}),
		PredictorCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictor_cache_total",
			Help:      "Predictor cache lookups by result.",
		}, []string{"result"}),
		PredictorAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "predictor_api_duration_seconds",
			Help:      "Prediction model request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_publish_errors_total",
			Help:      "Prediction views that failed to publish to Kafka.",
		}),
	}
}
