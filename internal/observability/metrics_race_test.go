package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/datanorm/internal/observability/metrics"
)

// NewMetrics must be callable concurrently since each call owns its registry
func TestNewMetricsConcurrency(t *testing.T) {
	const numGoroutines = 20

	var wg sync.WaitGroup
	for range numGoroutines {
		wg.Go(func() {
			m, err := NewMetrics()
			if !assert.NoError(t, err) {
				return
			}
			assert.NotNil(t, m.Registry())
			assert.NotNil(t, m.Datastore)
			assert.NotNil(t, m.HTTP)
			assert.NotNil(t, m.Normalize)
		})
	}
	wg.Wait()
}

func TestMetricsHandlerExposesCollectors(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.Normalize.RecordNormalization("zscore", metrics.StatusSuccess, 3, 0.001)
	m.Datastore.RecordOperation(metrics.OpDbInsert, metrics.StatusSuccess)

	mux := http.NewServeMux()
	m.RegisterHandlers(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `datanorm_normalizations_total{method="zscore",status="success"} 1`)
	assert.Contains(t, text, `datastore_db_operations_total{operation="db_insert",status="success",table="data_norm"} 1`)
	assert.Contains(t, text, "go_goroutines")
}

func TestMetricsGatherFamilies(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.Normalize.RecordStorageFailure(metrics.OpSave)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != "datanorm_storage_failures_total" {
			continue
		}
		found = true
		require.Len(t, mf.GetMetric(), 1)
		assert.InDelta(t, 1, mf.GetMetric()[0].GetCounter().GetValue(), 0)
	}
	assert.True(t, found)
}
