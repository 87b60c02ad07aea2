// Package logger provides module-scoped structured logging built on log/slog.
//
// Components receive a Logger through their constructors and derive a module
// scope from it:
//
//	central, err := logger.NewCentralLogger(&settings.Main.Log)
//	if err != nil {
//	    return err
//	}
//	defer central.Close()
//
//	storeLog := central.Module("datastore")
//	storeLog.Info("record saved", logger.Int("points", 5))
//
// Console output is human-readable text, file output is JSON. Tests use
// NewSlogLogger with a buffer or io.Discard.
package logger

import (
	"context"
	"time"
	"unique"
)

// LogLevel represents log severity levels
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Field is one key/value pair of a log line. Keys are interned.
type Field struct {
	Key   string
	Value any
}

func internKey(key string) string {
	return unique.Make(key).Value()
}

var errorKey = internKey("error")

// Logger is passed to components through their constructors
type Logger interface {
	Module(name string) Logger

	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	With(fields ...Field) Logger
	WithContext(ctx context.Context) Logger

	Log(level LogLevel, msg string, fields ...Field)
	Flush() error
}

func String(key, value string) Field { return Field{Key: internKey(key), Value: value} }

func Int(key string, value int) Field { return Field{Key: internKey(key), Value: value} }

func Int64(key string, value int64) Field { return Field{Key: internKey(key), Value: value} }

// Uint is for record ids
func Uint(key string, value uint) Field { return Field{Key: internKey(key), Value: uint64(value)} }

// Float64 values are rounded to 3 decimals when written
func Float64(key string, value float64) Field { return Field{Key: internKey(key), Value: value} }

func Bool(key string, value bool) Field { return Field{Key: internKey(key), Value: value} }

// Error returns the "error" field holding err's message, or nil for a nil err
func Error(err error) Field {
	if err == nil {
		return Field{Key: errorKey}
	}
	return Field{Key: errorKey, Value: err.Error()}
}

// Duration is written as a string rounded to milliseconds, e.g. "1.5s"
func Duration(key string, value time.Duration) Field {
	return Field{Key: internKey(key), Value: value}
}

func Time(key string, value time.Time) Field { return Field{Key: internKey(key), Value: value} }

func Any(key string, value any) Field { return Field{Key: internKey(key), Value: value} }
