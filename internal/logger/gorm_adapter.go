package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLoggerAdapter sends GORM output to a Logger. Statements are logged at
// TRACE; failed statements and those slower than the threshold at WARN.
type GormLoggerAdapter struct {
	log  Logger
	slow time.Duration
}

var _ gormlogger.Interface = (*GormLoggerAdapter)(nil)

// NewGormLoggerAdapter returns an adapter for log. slow <= 0 disables slow
// query warnings.
func NewGormLoggerAdapter(log Logger, slow time.Duration) *GormLoggerAdapter {
	if log == nil {
		log = NewSlogLogger(nil, LogLevelInfo, nil)
	}
	return &GormLoggerAdapter{log: log, slow: slow}
}

// LogMode is ignored; module levels decide what is written
func (a *GormLoggerAdapter) LogMode(gormlogger.LogLevel) gormlogger.Interface { return a }

func (a *GormLoggerAdapter) Info(ctx context.Context, format string, args ...any) {
	a.log.WithContext(ctx).Debug(fmt.Sprintf(format, args...))
}

func (a *GormLoggerAdapter) Warn(ctx context.Context, format string, args ...any) {
	a.log.WithContext(ctx).Warn(fmt.Sprintf(format, args...))
}

func (a *GormLoggerAdapter) Error(ctx context.Context, format string, args ...any) {
	a.log.WithContext(ctx).Error(fmt.Sprintf(format, args...))
}

// Trace is called by GORM after every statement. A missing row is a normal
// result, not an error.
func (a *GormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	stmt, rows := fc()
	fields := []Field{
		String("sql", stmt),
		Int64("rows_affected", rows),
		Int64("duration_ms", elapsed.Milliseconds()),
	}
	log := a.log.WithContext(ctx)

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("query error", append(fields, Error(err))...)
		return
	}
	if a.slow > 0 && elapsed > a.slow {
		log.Warn("slow query", append(fields, Duration("threshold", a.slow))...)
		return
	}
	log.Trace("sql query", fields...)
}
