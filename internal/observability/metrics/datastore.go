package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics tracks data_norm queries and the connection pool.
// Operations are labelled "operation:table"; a bare db operation is assumed
// to hit data_norm.
type DatastoreMetrics struct {
	collectorSet

	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
	errs     *prometheus.CounterVec

	poolActive prometheus.Gauge
	poolIdle   prometheus.Gauge
	poolMax    prometheus.Gauge
}

// NewDatastoreMetrics creates the datastore metrics and registers them with registry
func NewDatastoreMetrics(registry *prometheus.Registry) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{
		ops: counterVec("datastore_db_operations_total",
			"Database operations by outcome", "operation", "table", "status"),
		duration: histogramVec("datastore_db_operation_duration_seconds",
			"Database operation latency",
			prometheus.ExponentialBuckets(BucketStart100us, BucketFactor2, BucketCount15),
			"operation", "table"),
		errs: counterVec("datastore_db_operation_errors_total",
			"Failed database operations by error type", "operation", "table", "error_type"),
		poolActive: gauge("datastore_db_connections_active", "Connections in use"),
		poolIdle:   gauge("datastore_db_connections_idle", "Idle connections"),
		poolMax:    gauge("datastore_db_connections_max", "Connection pool limit"),
	}
	m.collectorSet = collectorSet{m.ops, m.duration, m.errs, m.poolActive, m.poolIdle, m.poolMax}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateConnectionMetrics sets the pool gauges from sql.DBStats values
func (m *DatastoreMetrics) UpdateConnectionMetrics(active, idle, maxConn int) {
	m.poolActive.Set(float64(active))
	m.poolIdle.Set(float64(idle))
	m.poolMax.Set(float64(maxConn))
}

func parseTableFromOperation(operation string) (op, table string) {
	if before, after, ok := strings.Cut(operation, ":"); ok {
		return before, after
	}
	switch operation {
	case OpDbQuery, OpDbInsert, OpDbDelete, OpDbMigrate, OpDbCopy, OpAnalytics:
		return operation, LabelRecords
	}
	return operation, LabelUnknown
}

func (m *DatastoreMetrics) RecordOperation(operation, status string) {
	op, table := parseTableFromOperation(operation)
	m.ops.WithLabelValues(op, table, status).Inc()
}

func (m *DatastoreMetrics) RecordDuration(operation string, seconds float64) {
	op, table := parseTableFromOperation(operation)
	m.duration.WithLabelValues(op, table).Observe(seconds)
}

// RecordError counts the error and also an operation with error status
func (m *DatastoreMetrics) RecordError(operation, errorType string) {
	op, table := parseTableFromOperation(operation)
	m.errs.WithLabelValues(op, table, errorType).Inc()
	m.ops.WithLabelValues(op, table, StatusError).Inc()
}
