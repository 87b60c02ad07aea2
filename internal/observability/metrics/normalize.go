package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NormalizeMetrics counts normalization runs and history storage failures
type NormalizeMetrics struct {
	collectorSet

	normalizationsTotal   *prometheus.CounterVec
	normalizationDuration *prometheus.HistogramVec
	inputSizeHist         *prometheus.HistogramVec
	storageFailuresTotal  *prometheus.CounterVec
}

// NewNormalizeMetrics creates and registers normalization metrics
func NewNormalizeMetrics(registry *prometheus.Registry) (*NormalizeMetrics, error) {
	m := &NormalizeMetrics{
		// status: success, invalid_method, invalid_input
		normalizationsTotal: counterVec("datanorm_normalizations_total",
			"Total number of normalization requests by method and outcome", "method", "status"),
		normalizationDuration: histogramVec("datanorm_normalization_duration_seconds",
			"Time taken to parse and normalize input",
			prometheus.ExponentialBuckets(BucketStart100us/10, BucketFactor2, BucketCount20),
			"method"),
		inputSizeHist: histogramVec("datanorm_input_values",
			"Number of values in successfully parsed inputs",
			prometheus.ExponentialBuckets(BucketStart1, BucketFactor2, BucketCount15),
			"method"),
		// operation: save, recent, get, delete, stats
		storageFailuresTotal: counterVec("datanorm_storage_failures_total",
			"Total number of history storage failures absorbed by the recorder", "operation"),
	}
	m.collectorSet = collectorSet{
		m.normalizationsTotal, m.normalizationDuration, m.inputSizeHist, m.storageFailuresTotal,
	}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordNormalization records the outcome of one normalization request.
// inputSize is only observed for successful runs.
func (m *NormalizeMetrics) RecordNormalization(method, status string, inputSize int, duration float64) {
	m.normalizationsTotal.WithLabelValues(method, status).Inc()
	m.normalizationDuration.WithLabelValues(method).Observe(duration)
	if status == StatusSuccess {
		m.inputSizeHist.WithLabelValues(method).Observe(float64(inputSize))
	}
}

// RecordStorageFailure counts a failed recorder operation
func (m *NormalizeMetrics) RecordStorageFailure(operation string) {
	m.storageFailuresTotal.WithLabelValues(operation).Inc()
}

// RecordOperation implements the Recorder interface; operation is the method name.
func (m *NormalizeMetrics) RecordOperation(operation, status string) {
	m.normalizationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration implements the Recorder interface.
func (m *NormalizeMetrics) RecordDuration(operation string, seconds float64) {
	m.normalizationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements the Recorder interface. Errors are storage failures
// keyed by recorder operation; errorType is not kept as a label.
func (m *NormalizeMetrics) RecordError(operation, _ string) {
	m.storageFailuresTotal.WithLabelValues(operation).Inc()
}
