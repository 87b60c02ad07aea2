package datastore

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/datanorm/internal/conf"
	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/observability/metrics"
)

// createDatabase initializes a temporary database for testing purposes.
// It ensures the database connection is opened and handles potential errors.
func createDatabase(t *testing.T, settings *conf.Settings, recorder metrics.Recorder) Interface {
	t.Helper()
	tempDir := t.TempDir()
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(tempDir, "test.db")

	dataStore := New(settings, nil, recorder)
	require.NotNil(t, dataStore)

	// Attempt to open a database connection.
	require.NoError(t, dataStore.Open(), "Failed to open database")

	// Ensure the database is closed after the test completes.
	t.Cleanup(func() {
		assert.NoError(t, dataStore.Close(), "Failed to close datastore")
	})

	return dataStore
}

func newRecord(method string, original, normalized []float64) *Record {
	return &Record{OriginalData: original, NormalizedData: normalized, Method: method}
}

func strconvID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestNewSelectsBackend(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	assert.Nil(t, New(settings, nil, nil), "no backend enabled")

	settings.Output.MySQL.Enabled = true
	assert.IsType(t, &MySQLStore{}, New(settings, nil, nil))

	settings.Output.SQLite.Enabled = true
	assert.IsType(t, &SQLiteStore{}, New(settings, nil, nil))
}

func TestSaveAndGetRecentRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := createDatabase(t, &conf.Settings{}, nil)

	rec := newRecord("minmax", []float64{10, 20, 30, 40, 50}, []float64{0, 0.25, 0.5, 0.75, 1})
	require.NoError(t, ds.Save(ctx, rec))
	assert.NotZero(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	recent, err := ds.GetRecent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, rec.ID, recent[0].ID)
	assert.Equal(t, rec.OriginalData, recent[0].OriginalData)
	assert.Equal(t, rec.NormalizedData, recent[0].NormalizedData)
	assert.Equal(t, "minmax", recent[0].Method)
}

func TestGetRecentOrderingAndLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := createDatabase(t, &conf.Settings{}, nil)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	older := newRecord("zscore", []float64{1, 2}, []float64{-1, 1})
	older.CreatedAt = base.Add(-time.Hour)
	require.NoError(t, ds.Save(ctx, older))

	// same timestamp: the higher id comes first
	tieA := newRecord("minmax", []float64{1}, []float64{0})
	tieA.CreatedAt = base
	require.NoError(t, ds.Save(ctx, tieA))
	tieB := newRecord("minmax", []float64{2}, []float64{0})
	tieB.CreatedAt = base
	require.NoError(t, ds.Save(ctx, tieB))

	recent, err := ds.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []uint{tieB.ID, tieA.ID, older.ID}, []uint{recent[0].ID, recent[1].ID, recent[2].ID})

	limited, err := ds.GetRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = ds.GetRecent(ctx, 0)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestSaveValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := createDatabase(t, &conf.Settings{}, nil)

	tests := []struct {
		name   string
		record *Record
	}{
		{"nil record", nil},
		{"empty data", newRecord("minmax", nil, nil)},
		{"length mismatch", newRecord("minmax", []float64{1, 2}, []float64{0})},
		{"unknown method", newRecord("log", []float64{1}, []float64{0})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ds.Save(ctx, tt.record)
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
		})
	}
}

func TestGetAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := createDatabase(t, &conf.Settings{}, nil)

	rec := newRecord("zscore", []float64{1, 2, 3}, []float64{-1.2247, 0, 1.2247})
	require.NoError(t, ds.Save(ctx, rec))
	id := strconvID(rec.ID)

	got, err := ds.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rec.NormalizedData, got.NormalizedData)

	require.NoError(t, ds.Delete(ctx, id))

	_, err = ds.Get(ctx, id)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	require.ErrorIs(t, err, ErrRecordNotFound)

	err = ds.Delete(ctx, id)
	assert.True(t, errors.IsNotFound(err), "deleting twice reports not found")

	for _, bad := range []string{"", "abc", "-1", "0"} {
		_, err := ds.Get(ctx, bad)
		assert.True(t, errors.IsCategory(err, errors.CategoryValidation), bad)
	}
}

func TestGetStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := createDatabase(t, &conf.Settings{}, nil)

	stats, err := ds.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)

	first := newRecord("minmax", []float64{1, 2}, []float64{0, 1})
	first.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	last := newRecord("zscore", []float64{1, 2}, []float64{-1, 1})
	last.CreatedAt = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	middle := newRecord("minmax", []float64{3, 4}, []float64{0, 1})
	middle.CreatedAt = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range []*Record{first, last, middle} {
		require.NoError(t, ds.Save(ctx, r))
	}

	stats, err = ds.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalRecords)
	assert.Equal(t, int64(2), stats.MinMaxCount)
	assert.Equal(t, int64(1), stats.ZScoreCount)
	require.NotNil(t, stats.FirstRecord)
	require.NotNil(t, stats.LastRecord)
	assert.True(t, stats.FirstRecord.Equal(first.CreatedAt))
	assert.True(t, stats.LastRecord.Equal(last.CreatedAt))
}

func TestOperationsRecordMetrics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	recorder := metrics.NewTestRecorder()
	ds := createDatabase(t, &conf.Settings{}, recorder)

	require.NoError(t, ds.Save(ctx, newRecord("minmax", []float64{1}, []float64{0})))
	_, err := ds.Get(ctx, "999")
	require.Error(t, err)

	assert.Equal(t, 1, recorder.GetOperationCount(metrics.OpDbInsert, metrics.StatusSuccess))
	assert.Equal(t, 1, recorder.GetErrorCount(metrics.OpDbQuery, "not_found"))
	assert.NotEmpty(t, recorder.GetDurations(metrics.OpDbMigrate))
}

func TestOperationsBeforeOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "never.db")
	ds := New(settings, nil, nil)

	require.ErrorIs(t, ds.Save(ctx, newRecord("minmax", []float64{1}, []float64{0})), ErrNotOpen)
	_, err := ds.GetRecent(ctx, 5)
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = ds.GetStats(ctx)
	require.ErrorIs(t, err, ErrNotOpen)
	require.ErrorIs(t, ds.Close(), ErrNotOpen)
}

func TestSQLiteOpenCreatesDirectory(t *testing.T) {
	t.Parallel()
	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "nested", "dir", "data.db")

	ds := New(settings, nil, nil)
	require.NoError(t, ds.Open())
	require.NoError(t, ds.Close())
	assert.FileExists(t, settings.Output.SQLite.Path)

	settings.Output.SQLite.Path = ""
	assert.Error(t, New(settings, nil, nil).Open())
}

func TestOriginalPreview(t *testing.T) {
	t.Parallel()

	tests := []struct {
		values []float64
		want   string
	}{
		{[]float64{1, 2}, "1, 2"},
		{[]float64{1, 2.5, 3}, "1, 2.5, 3"},
		{[]float64{10, 20, 30, 40, 50}, "10, 20, 30..."},
		{nil, ""},
	}
	for _, tt := range tests {
		r := Record{OriginalData: tt.values}
		assert.Equal(t, tt.want, r.OriginalPreview())
		assert.Equal(t, len(tt.values), r.PointCount())
	}
}

func TestMySQLConfig(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.Output.MySQL.Username = "root"
	settings.Output.MySQL.Password = "s3cret"
	settings.Output.MySQL.Host = "db.local"
	settings.Output.MySQL.Database = "simple_norm"

	dsn := mysqlConfig(settings, "simple_norm").FormatDSN()
	assert.Contains(t, dsn, "root:s3cret@tcp(db.local:3306)/simple_norm")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	serverDSN := mysqlConfig(settings, "").FormatDSN()
	assert.Contains(t, serverDSN, "@tcp(db.local:3306)/")
	assert.NotContains(t, serverDSN, "simple_norm")

	assert.Equal(t, "`simple_norm`", quoteIdentifier("simple_norm"))
	assert.Equal(t, "`a``b`", quoteIdentifier("a`b"))

	settings.Output.MySQL.Host = ""
	assert.Error(t, validateMySQLConfig(settings))
}
