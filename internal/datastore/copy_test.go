package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/datanorm/internal/conf"
	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/observability/metrics"
)

func seedRecords(t *testing.T, ds Interface, n int) []*Record {
	t.Helper()
	recs := make([]*Record, 0, n)
	for i := range n {
		method := "minmax"
		if i%3 == 0 {
			method = "zscore"
		}
		v := float64(i)
		rec := newRecord(method, []float64{v, v + 1}, []float64{0, 1})
		require.NoError(t, ds.Save(context.Background(), rec))
		recs = append(recs, rec)
	}
	return recs
}

func TestCopyKeepsIDsAndValues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	source := createDatabase(t, &conf.Settings{}, nil)
	recorder := metrics.NewTestRecorder()
	target := createDatabase(t, &conf.Settings{}, recorder)

	recs := seedRecords(t, source, 7)

	var progress []int64
	stats, err := Copy(ctx, source, target, CopyOptions{
		BatchSize: 3,
		Progress:  func(done, _ int64) { progress = append(progress, done) },
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(7), stats.Source)
	assert.Equal(t, int64(7), stats.Copied)
	assert.Zero(t, stats.Skipped)
	assert.Zero(t, stats.Failed)
	assert.Equal(t, []int64{3, 6, 7}, progress)

	for _, rec := range recs {
		got, err := target.Get(ctx, strconvID(rec.ID))
		require.NoError(t, err)
		assert.Equal(t, rec.OriginalData, got.OriginalData)
		assert.Equal(t, rec.Method, got.Method)
		assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
	}

	require.NoError(t, VerifyCopy(ctx, source, target, 5))
	assert.Equal(t, 1, recorder.GetOperationCount(metrics.OpDbCopy, metrics.StatusSuccess))
}

func TestCopyIsRerunnable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	source := createDatabase(t, &conf.Settings{}, nil)
	target := createDatabase(t, &conf.Settings{}, nil)
	seedRecords(t, source, 4)

	_, err := Copy(ctx, source, target, CopyOptions{}, nil)
	require.NoError(t, err)

	stats, err := Copy(ctx, source, target, CopyOptions{}, nil)
	require.NoError(t, err)
	assert.Zero(t, stats.Copied)
	assert.Equal(t, int64(4), stats.Skipped)

	stats, err = Copy(ctx, source, target, CopyOptions{Clean: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Copied)
}

func TestCopyEmptySource(t *testing.T) {
	t.Parallel()
	source := createDatabase(t, &conf.Settings{}, nil)
	target := createDatabase(t, &conf.Settings{}, nil)

	stats, err := Copy(context.Background(), source, target, CopyOptions{}, nil)
	require.NoError(t, err)
	assert.Zero(t, stats.Source)
	require.NoError(t, VerifyCopy(context.Background(), source, target, 3))
}

func TestCopyRequiresOpenStores(t *testing.T) {
	t.Parallel()
	source := createDatabase(t, &conf.Settings{}, nil)

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = t.TempDir() + "/closed.db"
	closed := New(settings, nil, nil)

	_, err := Copy(context.Background(), source, closed, CopyOptions{}, nil)
	require.ErrorIs(t, err, ErrNotOpen)
}

func TestVerifyCopyDetectsMismatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	source := createDatabase(t, &conf.Settings{}, nil)
	target := createDatabase(t, &conf.Settings{}, nil)
	seedRecords(t, source, 2)

	err := VerifyCopy(ctx, source, target, 0)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}
