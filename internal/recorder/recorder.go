// Package recorder stores normalization results and reads history back.
//
// Storage problems never reach the caller as errors: failures are logged,
// counted and reported as false, nil or an empty slice so the web page can
// still show the computed result.
package recorder

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/datanorm/internal/conf"
	"github.com/tphakala/datanorm/internal/datastore"
	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/logger"
	"github.com/tphakala/datanorm/internal/normalize"
	"github.com/tphakala/datanorm/internal/observability/metrics"
)

// ErrStoreUnavailable is recorded when no datastore is connected
var ErrStoreUnavailable = errors.NewStd("datastore unavailable")

// DefaultStatsTTL is how long aggregate statistics are served from memory
const DefaultStatsTTL = 30 * time.Second

const statsKey = "stats"

// Recorder wraps a datastore with soft-failure semantics
type Recorder struct {
	store        datastore.Interface
	log          logger.Logger
	metrics      metrics.Recorder
	defaultLimit int

	// stats are cached until the TTL expires or a record is saved or deleted
	statsCache *cache.Cache
}

// Option configures a Recorder
type Option func(*Recorder)

// WithLogger sets the logger; the recorder logs under the "recorder" module.
func WithLogger(l logger.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMetrics sets the recorder used to count storage failures
func WithMetrics(m metrics.Recorder) Option {
	return func(r *Recorder) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithHistoryLimit sets the limit used when Recent is called with limit <= 0
func WithHistoryLimit(limit int) Option {
	return func(r *Recorder) {
		if limit > 0 {
			r.defaultLimit = min(limit, conf.MaxHistoryLimit)
		}
	}
}

// WithStatsTTL sets how long Stats results are cached. Zero or less disables caching.
func WithStatsTTL(ttl time.Duration) Option {
	return func(r *Recorder) {
		if ttl <= 0 {
			r.statsCache = nil
			return
		}
		// no janitor: a single key is overwritten or dropped on write
		r.statsCache = cache.New(ttl, 0)
	}
}

// New creates a Recorder. store may be nil when the database could not be
// opened; every operation then fails softly.
func New(store datastore.Interface, opts ...Option) *Recorder {
	r := &Recorder{
		store:        store,
		log:          logger.NewSlogLogger(nil, logger.LogLevelInfo, nil),
		metrics:      metrics.NewNoOpRecorder(),
		defaultLimit: conf.DefaultHistoryLimit,
		statsCache:   cache.New(DefaultStatsTTL, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Available reports whether a datastore is connected
func (r *Recorder) Available() bool {
	return r.store != nil
}

// HistoryLimit is the number of records Recent returns by default
func (r *Recorder) HistoryLimit() int {
	return r.defaultLimit
}

// fail logs and counts a storage failure. Errors that are not already
// enhanced are wrapped as database errors, which reports them to telemetry.
func (r *Recorder) fail(ctx context.Context, operation string, err error) {
	var ee *errors.EnhancedError
	if !errors.As(err, &ee) {
		err = errors.New(err).
			Component("recorder").
			Category(errors.CategoryDatabase).
			Priority(errors.PriorityMedium).
			Context("operation", operation).
			Build()
	}

	r.metrics.RecordError(operation, errorLabel(err))
	r.log.WithContext(ctx).Error("storage operation failed",
		logger.String("operation", operation),
		logger.Error(err))
}

// errorLabel is the error type label for metrics
func errorLabel(err error) string {
	switch {
	case errors.Is(err, ErrStoreUnavailable):
		return "unavailable"
	case errors.IsCategory(err, errors.CategoryValidation):
		return "validation"
	default:
		return "database"
	}
}

// Save stores one normalization. It reports whether the record was saved.
func (r *Recorder) Save(ctx context.Context, original, normalized []float64, method normalize.Method) bool {
	if r.store == nil {
		r.fail(ctx, metrics.OpSave, ErrStoreUnavailable)
		return false
	}

	record := &datastore.Record{
		OriginalData:   original,
		NormalizedData: normalized,
		Method:         method.String(),
	}
	if err := r.store.Save(ctx, record); err != nil {
		r.fail(ctx, metrics.OpSave, err)
		return false
	}

	r.invalidateStats()
	r.log.WithContext(ctx).Info("normalization saved",
		logger.Uint("id", record.ID),
		logger.String("method", record.Method),
		logger.Int("points", len(original)))
	return true
}

// Recent returns up to limit records, newest first. limit <= 0 uses the
// configured history limit. Failures return an empty slice.
func (r *Recorder) Recent(ctx context.Context, limit int) []datastore.Record {
	if limit <= 0 {
		limit = r.defaultLimit
	}
	limit = min(limit, conf.MaxHistoryLimit)

	if r.store == nil {
		r.fail(ctx, metrics.OpRecent, ErrStoreUnavailable)
		return []datastore.Record{}
	}

	records, err := r.store.GetRecent(ctx, limit)
	if err != nil {
		r.fail(ctx, metrics.OpRecent, err)
		return []datastore.Record{}
	}
	return records
}

// Get returns the record with the given id, or nil when it is missing or
// cannot be read.
func (r *Recorder) Get(ctx context.Context, id string) *datastore.Record {
	if r.store == nil {
		r.fail(ctx, metrics.OpGet, ErrStoreUnavailable)
		return nil
	}

	record, err := r.store.Get(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			r.log.WithContext(ctx).Debug("record not found", logger.String("id", id))
			return nil
		}
		r.fail(ctx, metrics.OpGet, err)
		return nil
	}
	return &record
}

// Delete removes the record with the given id and reports success.
func (r *Recorder) Delete(ctx context.Context, id string) bool {
	if r.store == nil {
		r.fail(ctx, metrics.OpDelete, ErrStoreUnavailable)
		return false
	}

	if err := r.store.Delete(ctx, id); err != nil {
		if errors.IsNotFound(err) {
			r.log.WithContext(ctx).Debug("record not found", logger.String("id", id))
			return false
		}
		r.fail(ctx, metrics.OpDelete, err)
		return false
	}

	r.invalidateStats()
	r.log.WithContext(ctx).Info("record deleted", logger.String("id", id))
	return true
}

// Stats returns aggregate statistics, or nil on failure.
func (r *Recorder) Stats(ctx context.Context) *datastore.Stats {
	if r.store == nil {
		r.fail(ctx, metrics.OpStats, ErrStoreUnavailable)
		return nil
	}

	if r.statsCache != nil {
		if cached, ok := r.statsCache.Get(statsKey); ok {
			stats := cached.(datastore.Stats)
			return &stats
		}
	}

	stats, err := r.store.GetStats(ctx)
	if err != nil {
		r.fail(ctx, metrics.OpStats, err)
		return nil
	}
	if r.statsCache != nil {
		r.statsCache.SetDefault(statsKey, stats)
	}
	return &stats
}

func (r *Recorder) invalidateStats() {
	if r.statsCache != nil {
		r.statsCache.Delete(statsKey)
	}
}
