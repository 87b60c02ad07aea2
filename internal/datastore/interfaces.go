// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"context"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/datanorm/internal/conf"
	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/logger"
	"github.com/tphakala/datanorm/internal/normalize"
	"github.com/tphakala/datanorm/internal/observability/metrics"
)

// DefaultSlowQueryThreshold is the duration after which GORM logs a query as slow
const DefaultSlowQueryThreshold = 500 * time.Millisecond

// Interface abstracts the underlying database implementation.
type Interface interface {
	Open() error
	Close() error
	Save(ctx context.Context, record *Record) error
	GetRecent(ctx context.Context, limit int) ([]Record, error)
	Get(ctx context.Context, id string) (Record, error)
	Delete(ctx context.Context, id string) error
	GetStats(ctx context.Context) (Stats, error)
}

// DataStore implements the shared queries on top of a GORM database.
type DataStore struct {
	DB      *gorm.DB         // GORM database instance
	Logger  logger.Logger    // datastore module logger
	Metrics metrics.Recorder // operation counters and durations
}

// poolMetrics is implemented by metrics.DatastoreMetrics
type poolMetrics interface {
	UpdateConnectionMetrics(active, idle, maxConn int)
}

// New creates a store for the backend enabled in settings, or nil when no
// backend is enabled. The store is not opened.
func New(settings *conf.Settings, log logger.Logger, recorder metrics.Recorder) Interface {
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	if recorder == nil {
		recorder = metrics.NewNoOpRecorder()
	}
	base := DataStore{Logger: log, Metrics: recorder}

	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{DataStore: base, Settings: settings}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{DataStore: base, Settings: settings}
	default:
		return nil
	}
}

// gormLogger routes SQL logging through the datastore logger
func (ds *DataStore) gormLogger() *logger.GormLoggerAdapter {
	return logger.NewGormLoggerAdapter(ds.Logger.Module("sql"), DefaultSlowQueryThreshold)
}

// observe records duration and outcome of one operation
func (ds *DataStore) observe(operation string, start time.Time, err error) {
	ds.Metrics.RecordDuration(operation, time.Since(start).Seconds())
	if err != nil {
		ds.Metrics.RecordError(operation, errorType(err))
		return
	}
	ds.Metrics.RecordOperation(operation, metrics.StatusSuccess)
}

// updatePoolMetrics publishes sql.DB pool stats when the recorder supports it
func (ds *DataStore) updatePoolMetrics() {
	pm, ok := ds.Metrics.(poolMetrics)
	if !ok || ds.DB == nil {
		return
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return
	}
	stats := sqlDB.Stats()
	pm.UpdateConnectionMetrics(stats.InUse, stats.Idle, stats.MaxOpenConnections)
}

// closeDB closes the underlying sql.DB
func (ds *DataStore) closeDB(dbType string) error {
	if ds.DB == nil {
		return notOpenError("close")
	}

	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "close", errors.PriorityMedium, "db_type", dbType)
	}

	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close", errors.PriorityMedium, "db_type", dbType)
	}

	ds.DB = nil
	ds.Logger.Debug("database connection closed", logger.String("db_type", dbType))
	return nil
}

// validateRecord checks a record before insert
func validateRecord(record *Record) error {
	switch {
	case record == nil:
		return validationError("record is nil", "record", nil)
	case len(record.OriginalData) == 0:
		return validationError("record has no data", "original_data", 0)
	case len(record.NormalizedData) != len(record.OriginalData):
		return validationError("normalized data length differs from original", "normalized_data",
			len(record.NormalizedData))
	case !normalize.Method(record.Method).Valid():
		return validationError("unknown normalization method", "method", record.Method)
	}
	return nil
}

// parseID converts a string id to a primary key
func parseID(id string) (uint64, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, validationError("invalid record id", "id", id)
	}
	return n, nil
}

// Save inserts a new record. ID and CreatedAt are filled in on success.
func (ds *DataStore) Save(ctx context.Context, record *Record) (err error) {
	start := time.Now()
	defer func() { ds.observe(metrics.OpDbInsert, start, err) }()

	if ds.DB == nil {
		return notOpenError("save")
	}
	if err := validateRecord(record); err != nil {
		return err
	}

	if err := ds.DB.WithContext(ctx).Create(record).Error; err != nil {
		return dbError(err, "save", errors.PriorityMedium,
			"method", record.Method,
			"points", len(record.OriginalData))
	}

	ds.Logger.Debug("record saved",
		logger.Uint("id", record.ID),
		logger.String("method", record.Method),
		logger.Int("points", len(record.OriginalData)))
	return nil
}

// GetRecent returns up to limit records, newest first. Records created in the
// same instant are ordered by id, highest first.
func (ds *DataStore) GetRecent(ctx context.Context, limit int) (records []Record, err error) {
	start := time.Now()
	defer func() { ds.observe(metrics.OpDbQuery, start, err) }()

	if ds.DB == nil {
		return nil, notOpenError("get_recent")
	}
	if limit <= 0 {
		return nil, validationError("limit must be positive", "limit", limit)
	}

	records = make([]Record, 0, limit)
	if err := ds.DB.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, dbError(err, "get_recent", errors.PriorityMedium, "limit", limit)
	}

	return records, nil
}

// Get retrieves a record by its id.
func (ds *DataStore) Get(ctx context.Context, id string) (record Record, err error) {
	start := time.Now()
	defer func() { ds.observe(metrics.OpDbQuery, start, err) }()

	if ds.DB == nil {
		return Record{}, notOpenError("get")
	}
	recordID, err := parseID(id)
	if err != nil {
		return Record{}, err
	}

	if err := ds.DB.WithContext(ctx).First(&record, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Record{}, notFoundError("get", id)
		}
		return Record{}, dbError(err, "get", errors.PriorityMedium, "record_id", id)
	}
	return record, nil
}

// Delete removes a record by its id. A missing id is a not-found error.
func (ds *DataStore) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { ds.observe(metrics.OpDbDelete, start, err) }()

	if ds.DB == nil {
		return notOpenError("delete")
	}
	recordID, err := parseID(id)
	if err != nil {
		return err
	}

	result := ds.DB.WithContext(ctx).Delete(&Record{}, recordID)
	if result.Error != nil {
		return dbError(result.Error, "delete", errors.PriorityMedium, "record_id", id)
	}
	if result.RowsAffected == 0 {
		return notFoundError("delete", id)
	}

	ds.Logger.Debug("record deleted", logger.String("id", id))
	return nil
}

// methodCount is one row of the per-method count query
type methodCount struct {
	Method string
	Count  int64
}

// GetStats returns total and per-method counts plus the first and last
// record timestamps. Timestamps are nil when the table is empty.
func (ds *DataStore) GetStats(ctx context.Context) (stats Stats, err error) {
	start := time.Now()
	defer func() { ds.observe(metrics.OpAnalytics, start, err) }()

	if ds.DB == nil {
		return Stats{}, notOpenError("get_stats")
	}
	db := ds.DB.WithContext(ctx)

	var counts []methodCount
	if err := db.Model(&Record{}).
		Select("method, COUNT(*) AS count").
		Group("method").
		Scan(&counts).Error; err != nil {
		return Stats{}, dbError(err, "get_stats", errors.PriorityMedium, "query", "method_counts")
	}

	for _, c := range counts {
		stats.TotalRecords += c.Count
		switch normalize.Method(c.Method) {
		case normalize.MethodMinMax:
			stats.MinMaxCount = c.Count
		case normalize.MethodZScore:
			stats.ZScoreCount = c.Count
		}
	}

	if stats.TotalRecords > 0 {
		var first, last []Record
		if err := db.Order("created_at ASC").Order("id ASC").Limit(1).Find(&first).Error; err != nil {
			return Stats{}, dbError(err, "get_stats", errors.PriorityMedium, "query", "first_record")
		}
		if err := db.Order("created_at DESC").Order("id DESC").Limit(1).Find(&last).Error; err != nil {
			return Stats{}, dbError(err, "get_stats", errors.PriorityMedium, "query", "last_record")
		}
		if len(first) == 1 {
			stats.FirstRecord = &first[0].CreatedAt
		}
		if len(last) == 1 {
			stats.LastRecord = &last[0].CreatedAt
		}
	}

	ds.updatePoolMetrics()
	return stats, nil
}
