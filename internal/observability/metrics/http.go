package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// HTTPMetrics covers request handling and page template rendering.
// Paths are echo route patterns, never raw URLs.
type HTTPMetrics struct {
	collectorSet

	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	requestErrs  *prometheus.CounterVec
	responseSize *prometheus.HistogramVec
	inFlight     prometheus.Gauge

	renderTime *prometheus.HistogramVec
	renderErrs *prometheus.CounterVec
}

func NewHTTPMetrics(registry *prometheus.Registry) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requests: counterVec("http_requests_total",
			"Served requests by route and status", "method", "path", "status_code"),
		latency: histogramVec("http_request_duration_seconds",
			"Request latency", prometheus.DefBuckets, "method", "path"),
		requestErrs: counterVec("http_request_errors_total",
			"Requests that ended with a handler error", "method", "path", "error_type"),
		responseSize: histogramVec("http_response_size_bytes",
			"Response body size",
			prometheus.ExponentialBuckets(64, BucketFactor2, BucketCount15),
			"method", "path"),
		inFlight: gauge("http_requests_in_flight", "Requests being served"),
		renderTime: histogramVec("http_template_render_duration_seconds",
			"Template execution time",
			prometheus.ExponentialBuckets(BucketStart100us, BucketFactor2, BucketCount12),
			"template"),
		renderErrs: counterVec("http_template_render_errors_total",
			"Template failures by stage", "template", "error_type"),
	}
	m.collectorSet = collectorSet{
		m.requests, m.latency, m.requestErrs, m.responseSize, m.inFlight,
		m.renderTime, m.renderErrs,
	}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *HTTPMetrics) RecordHTTPRequest(method, path string, statusCode int, duration float64) {
	m.requests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.latency.WithLabelValues(method, path).Observe(duration)
}

func (m *HTTPMetrics) RecordHTTPRequestError(method, path, errorType string) {
	m.requestErrs.WithLabelValues(method, path, errorType).Inc()
}

func (m *HTTPMetrics) RecordHTTPResponseSize(method, path string, sizeBytes int64) {
	m.responseSize.WithLabelValues(method, path).Observe(float64(sizeBytes))
}

func (m *HTTPMetrics) RequestStarted()  { m.inFlight.Inc() }
func (m *HTTPMetrics) RequestFinished() { m.inFlight.Dec() }

// InFlightRequests reads the in-flight gauge
func (m *HTTPMetrics) InFlightRequests() float64 {
	var out dto.Metric
	if err := m.inFlight.Write(&out); err != nil {
		return 0
	}
	return out.GetGauge().GetValue()
}

func (m *HTTPMetrics) RecordTemplateRender(template string, duration float64) {
	m.renderTime.WithLabelValues(template).Observe(duration)
}

// RecordTemplateRenderError counts a failure; stage is "execute" or "write"
func (m *HTTPMetrics) RecordTemplateRenderError(template, stage string) {
	m.renderErrs.WithLabelValues(template, stage).Inc()
}
