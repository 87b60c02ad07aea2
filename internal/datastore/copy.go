package datastore

import (
	"context"
	"slices"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/logger"
	"github.com/tphakala/datanorm/internal/observability/metrics"
)

// DefaultCopyBatchSize is the number of records read and inserted per batch
const DefaultCopyBatchSize = 1000

// CopyStats summarizes one Copy run
type CopyStats struct {
	Source   int64         // records in the source table
	Copied   int64         // records inserted into the target
	Skipped  int64         // records whose id already existed in the target
	Failed   int64         // records in batches that could not be inserted
	Duration time.Duration // wall time of the copy
}

// CopyOptions tunes Copy
type CopyOptions struct {
	BatchSize int
	// Clean deletes all target records before copying
	Clean bool
	// Progress, when set, is called after each batch
	Progress func(done, total int64)
}

// gormBacked is implemented by stores built on DataStore
type gormBacked interface {
	gormDB() *gorm.DB
	observe(operation string, start time.Time, err error)
}

func (ds *DataStore) gormDB() *gorm.DB { return ds.DB }

func openDB(s Interface, role string) (gormBacked, *gorm.DB, error) {
	g, ok := s.(gormBacked)
	if !ok {
		return nil, nil, validationError("store does not support copying", "store", role)
	}
	db := g.gormDB()
	if db == nil {
		return nil, nil, notOpenError("copy_" + role)
	}
	return g, db, nil
}

// Copy copies every record from source to target in id order, keeping ids
// and timestamps. Records whose id already exists in the target are skipped,
// so an interrupted copy can be rerun. A batch that fails to insert is
// counted in Failed and the copy continues with the next batch. Both stores
// must be open.
func Copy(ctx context.Context, source, target Interface, opts CopyOptions, log logger.Logger) (stats CopyStats, err error) {
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultCopyBatchSize
	}
	start := time.Now()
	defer func() { stats.Duration = time.Since(start) }()

	_, srcDB, err := openDB(source, "source")
	if err != nil {
		return stats, err
	}
	dst, dstDB, err := openDB(target, "target")
	if err != nil {
		return stats, err
	}
	srcDB = srcDB.WithContext(ctx)
	dstDB = dstDB.WithContext(ctx)

	if opts.Clean {
		if err := dstDB.Where("1 = 1").Delete(&Record{}).Error; err != nil {
			return stats, dbError(err, "copy_clean", errors.PriorityHigh)
		}
		log.Info("target records deleted before copy")
	}

	if err := srcDB.Model(&Record{}).Count(&stats.Source).Error; err != nil {
		return stats, dbError(err, "copy_count", errors.PriorityMedium)
	}
	if stats.Source == 0 {
		log.Info("no records to copy")
		return stats, nil
	}

	var done int64
	batchNum := 0
	var batch []Record
	err = srcDB.FindInBatches(&batch, opts.BatchSize, func(_ *gorm.DB, _ int) error {
		batchNum++
		n := int64(len(batch))

		result := dstDB.Clauses(clause.OnConflict{DoNothing: true}).Create(&batch)
		if result.Error != nil {
			stats.Failed += n
			log.Warn("copy batch failed",
				logger.Int("batch", batchNum),
				logger.Int("records", len(batch)),
				logger.Error(result.Error))
		} else {
			stats.Copied += result.RowsAffected
			stats.Skipped += n - result.RowsAffected
		}

		done += n
		if opts.Progress != nil {
			opts.Progress(done, stats.Source)
		}
		return nil
	}).Error
	if err != nil {
		return stats, dbError(err, "copy", errors.PriorityMedium, "batch", batchNum)
	}

	var copyErr error
	if stats.Failed > 0 {
		copyErr = errors.Newf("%d records failed to copy", stats.Failed).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	dst.observe(metrics.OpDbCopy, start, copyErr)

	log.Info("copy completed",
		logger.Int64("source", stats.Source),
		logger.Int64("copied", stats.Copied),
		logger.Int64("skipped", stats.Skipped),
		logger.Int64("failed", stats.Failed),
		logger.Duration("duration", time.Since(start)))
	return stats, nil
}

// VerifyCopy compares per-method record counts between source and target and
// checks that every sampled source record exists in the target with the same
// values. It returns a validation error describing the first mismatch.
func VerifyCopy(ctx context.Context, source, target Interface, samples int) error {
	srcStats, err := source.GetStats(ctx)
	if err != nil {
		return err
	}
	dstStats, err := target.GetStats(ctx)
	if err != nil {
		return err
	}
	if srcStats.MinMaxCount != dstStats.MinMaxCount || srcStats.ZScoreCount != dstStats.ZScoreCount {
		return validationError("record counts differ", "counts",
			[2]int64{srcStats.TotalRecords, dstStats.TotalRecords})
	}

	if samples <= 0 {
		return nil
	}
	recent, err := source.GetRecent(ctx, samples)
	if err != nil {
		return err
	}
	for i := range recent {
		src := &recent[i]
		id := strconv.FormatUint(uint64(src.ID), 10)
		dst, err := target.Get(ctx, id)
		if err != nil {
			return err
		}
		if !slices.Equal(src.OriginalData, dst.OriginalData) ||
			!slices.Equal(src.NormalizedData, dst.NormalizedData) ||
			src.Method != dst.Method {
			return validationError("record differs after copy", "id", id)
		}
	}
	return nil
}
