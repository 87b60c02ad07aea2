package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	// zoneinfo for hosts without /usr/share/zoneinfo
	_ "time/tzdata"

	"github.com/tphakala/datanorm/internal/errors"
)

// CentralLogger owns the log outputs and hands out module loggers. Console
// output is text on stdout; file output is JSON.
type CentralLogger struct {
	defaultLevel slog.Level
	moduleLevels map[string]slog.Level
	handler      slog.Handler

	mu   sync.Mutex
	sink *fileSink
}

// NewCentralLogger builds the outputs described by cfg. Missing console and
// file sections get defaults. With both outputs disabled it logs text to
// stdout at the default level.
func NewCentralLogger(cfg *LoggingConfig) (*CentralLogger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("logging config cannot be nil")
	}
	applyConfigDefaults(cfg)

	tz, err := loadTimezone(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	cl := &CentralLogger{
		defaultLevel: parseLogLevel(cfg.DefaultLevel),
		moduleLevels: make(map[string]slog.Level, len(cfg.ModuleLevels)),
	}
	for module, level := range cfg.ModuleLevels {
		cl.moduleLevels[module] = parseLogLevel(level)
	}

	var outputs fanoutHandler
	if cfg.Console.Enabled {
		outputs = append(outputs, newTextHandler(os.Stdout, parseLogLevel(cfg.Console.Level)))
	}
	if cfg.FileOutput.Enabled {
		sink, err := openLogFile(cfg.FileOutput.Path)
		if err != nil {
			return nil, err
		}
		cl.sink = sink
		outputs = append(outputs, newJSONHandler(sink, parseLogLevel(cfg.FileOutput.Level), tz))
	}

	switch len(outputs) {
	case 0:
		cl.handler = newTextHandler(os.Stdout, cl.defaultLevel)
	case 1:
		cl.handler = outputs[0]
	default:
		cl.handler = outputs
	}
	return cl, nil
}

func openLogFile(path string) (*fileSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create log directory %s: %w", dir, err)
		}
	}
	return openFileSink(path, sinkFlushInterval)
}

func loadTimezone(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	tz, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", name, err)
	}
	return tz, nil
}

// Module returns the logger for a module. Its level is the most specific
// entry in module_levels ("datastore.sql", then "datastore") or the default.
func (cl *CentralLogger) Module(name string) Logger {
	if cl == nil {
		return nil
	}
	return &moduleLogger{
		module: name,
		logger: slog.New(cl.handler),
		level:  cl.levelFor(name),
	}
}

func (cl *CentralLogger) levelFor(module string) slog.Level {
	for name := module; name != ""; {
		if level, ok := cl.moduleLevels[name]; ok {
			return level
		}
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			break
		}
		name = name[:i]
	}
	return cl.defaultLevel
}

// Flush pushes buffered file output to the OS
func (cl *CentralLogger) Flush() error {
	if cl == nil {
		return nil
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.sink == nil {
		return nil
	}
	return cl.sink.Flush()
}

// Close flushes and closes the log file. It is safe to call twice.
func (cl *CentralLogger) Close() error {
	if cl == nil {
		return nil
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.sink == nil {
		return nil
	}

	path := cl.sink.Path()
	err := cl.sink.Close()
	cl.sink = nil
	if err != nil {
		return errors.New(err).
			Component("logger").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return nil
}

// NewSlogLogger returns a Logger writing JSON lines to w. A nil writer
// discards output and a nil timezone means UTC.
func NewSlogLogger(w io.Writer, level LogLevel, tz *time.Location) Logger {
	if w == nil {
		w = io.Discard
	}
	if tz == nil {
		tz = time.UTC
	}
	lvl := parseSlogLevel(level)
	return &moduleLogger{logger: slog.New(newJSONHandler(w, lvl, tz)), level: lvl}
}

func parseLogLevel(level string) slog.Level {
	return parseSlogLevel(LogLevel(strings.ToLower(strings.TrimSpace(level))))
}

func parseSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelTrace:
		return traceLevelValue
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
