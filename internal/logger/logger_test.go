package logger

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// decodeLines parses JSON log lines from buf
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line: %s", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestSlogLoggerLevels(t *testing.T) {
	testCases := []struct {
		name          string
		configLevel   LogLevel
		logFunc       func(l Logger, msg string)
		shouldContain bool
	}{
		{"debug at debug", LogLevelDebug, func(l Logger, msg string) { l.Debug(msg) }, true},
		{"debug at info", LogLevelInfo, func(l Logger, msg string) { l.Debug(msg) }, false},
		{"trace at debug", LogLevelDebug, func(l Logger, msg string) { l.Trace(msg) }, false},
		{"trace at trace", LogLevelTrace, func(l Logger, msg string) { l.Trace(msg) }, true},
		{"warn at info", LogLevelInfo, func(l Logger, msg string) { l.Warn(msg) }, true},
		{"warn at error", LogLevelError, func(l Logger, msg string) { l.Warn(msg) }, false},
		{"error at error", LogLevelError, func(l Logger, msg string) { l.Error(msg) }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log := NewSlogLogger(buf, tc.configLevel, time.UTC)

			msg := "message for " + tc.name
			tc.logFunc(log, msg)

			if tc.shouldContain {
				assert.Contains(t, buf.String(), msg)
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestTraceLevelName(t *testing.T) {
	buf := &bytes.Buffer{}
	NewSlogLogger(buf, LogLevelTrace, time.UTC).Trace("sql query")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "TRACE", entries[0]["level"])
}

func TestModuleAndFields(t *testing.T) {
	buf := &bytes.Buffer{}
	root := NewSlogLogger(buf, LogLevelDebug, time.UTC)

	log := root.Module("datastore").Module("sqlite").With(String("path", "/tmp/x.db"))
	log.Info("record saved",
		Int("points", 5),
		Uint("id", 42),
		Float64("ratio", 0.123456),
		Bool("ok", true),
		Duration("elapsed", 1500*time.Millisecond),
		Error(assert.AnError))

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	e := entries[0]

	assert.Equal(t, "datastore.sqlite", e["module"])
	assert.Equal(t, "/tmp/x.db", e["path"])
	assert.InDelta(t, 5, e["points"], 0)
	assert.InDelta(t, 42, e["id"], 0)
	assert.InDelta(t, 0.123, e["ratio"], 1e-9)
	assert.Equal(t, true, e["ok"])
	assert.Equal(t, "1.5s", e["elapsed"])
	assert.Equal(t, assert.AnError.Error(), e["error"])
}

func TestWithDoesNotMutateParent(t *testing.T) {
	buf := &bytes.Buffer{}
	parent := NewSlogLogger(buf, LogLevelInfo, time.UTC).Module("recorder")
	_ = parent.With(String("child", "yes"))

	parent.Info("from parent")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], "child")
}

func TestWithContextAddsTraceID(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewSlogLogger(buf, LogLevelInfo, time.UTC)

	ctx := WithTraceID(context.Background(), "req-123")
	log.WithContext(ctx).Info("handled")
	log.WithContext(context.Background()).Info("no trace")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "req-123", entries[0]["trace_id"])
	assert.NotContains(t, entries[1], "trace_id")
	assert.Equal(t, "req-123", TraceIDFromContext(ctx))
}

func TestCentralLoggerModuleLevels(t *testing.T) {
	cfg := &LoggingConfig{
		DefaultLevel: "info",
		Console:      &ConsoleOutput{Enabled: false},
		FileOutput: &FileOutput{
			Enabled: true,
			Path:    filepath.Join(t.TempDir(), "logs", "datanorm.log"),
			Level:   "trace",
		},
		ModuleLevels: map[string]string{"datastore": "debug"},
	}

	cl, err := NewCentralLogger(cfg)
	require.NoError(t, err)

	cl.Module("datastore").Module("sqlite").Debug("inherits parent level")
	cl.Module("recorder").Debug("filtered by default level")
	cl.Module("recorder").Info("passes default level")

	require.NoError(t, cl.Close())
	require.NoError(t, cl.Close(), "Close must be idempotent")

	data, err := os.ReadFile(cfg.FileOutput.Path)
	require.NoError(t, err)

	entries := decodeLines(t, bytes.NewBuffer(data))
	require.Len(t, entries, 2)
	assert.Equal(t, "inherits parent level", entries[0]["msg"])
	assert.Equal(t, "passes default level", entries[1]["msg"])
}

func TestCentralLoggerRejectsBadTimezone(t *testing.T) {
	_, err := NewCentralLogger(&LoggingConfig{Timezone: "Not/AZone"})
	require.Error(t, err)

	_, err = NewCentralLogger(nil)
	require.Error(t, err)
}

func TestApplyConfigDefaults(t *testing.T) {
	cfg := &LoggingConfig{}
	applyConfigDefaults(cfg)

	assert.Equal(t, DefaultLogLevel, cfg.DefaultLevel)
	require.NotNil(t, cfg.Console)
	assert.True(t, cfg.Console.Enabled)
	require.NotNil(t, cfg.FileOutput)
	assert.False(t, cfg.FileOutput.Enabled)
	assert.Equal(t, DefaultLogPath, cfg.FileOutput.Path)
}

func TestGormLoggerAdapterTrace(t *testing.T) {
	buf := &bytes.Buffer{}
	adapter := NewGormLoggerAdapter(NewSlogLogger(buf, LogLevelTrace, time.UTC), 50*time.Millisecond)

	sqlFn := func() (string, int64) { return "SELECT * FROM data_norm", 3 }

	adapter.Trace(context.Background(), time.Now(), sqlFn, nil)
	adapter.Trace(context.Background(), time.Now(), sqlFn, gorm.ErrRecordNotFound)
	adapter.Trace(context.Background(), time.Now(), sqlFn, assert.AnError)
	adapter.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 4)
	assert.Equal(t, "sql query", entries[0]["msg"])
	assert.Equal(t, "TRACE", entries[0]["level"])
	assert.Equal(t, "sql query", entries[1]["msg"], "record not found is not an error")
	assert.Equal(t, "query error", entries[2]["msg"])
	assert.Equal(t, "slow query", entries[3]["msg"])
	assert.Equal(t, "WARN", entries[3]["level"])
}

func TestRedactSensitiveData(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain", "record saved", "record saved"},
		{"mysql dsn", "root:hunter2@tcp(localhost:3306)/simple_norm", "root:[REDACTED]@tcp(localhost:3306)/simple_norm"},
		{"password pair", "password=SuperSecret123", "password=[REDACTED]"},
		{"sentry dsn", "https://0123456789abcdef0123@o1.ingest.sentry.io/1", "https://[REDACTED]@o1.ingest.sentry.io/1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RedactSensitiveData(tc.input))
		})
	}
}

func TestRedactedField(t *testing.T) {
	assert.Equal(t, "[REDACTED]", Redacted("mysql_password", "secret").Value)
	assert.Equal(t, "localhost", Redacted("host", "localhost").Value)
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	sink, err := openFileSink(path, 0)
	require.NoError(t, err)

	_, err = sink.Write([]byte("line one\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data, "buffered until flush")

	require.NoError(t, sink.Flush())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line one\n", string(data))

	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())
	_, err = sink.Write([]byte("late"))
	require.ErrorIs(t, err, errSinkClosed)
	assert.Equal(t, path, sink.Path())
}

func TestFileSinkBackgroundFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	sink, err := openFileSink(path, 10*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, sink.Close()) })

	_, err = sink.Write([]byte("tick\n"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && string(data) == "tick\n"
	}, time.Second, 10*time.Millisecond)
}

func TestFanoutHandler(t *testing.T) {
	debugBuf, warnBuf := &bytes.Buffer{}, &bytes.Buffer{}
	h := fanoutHandler{
		newJSONHandler(debugBuf, slog.LevelDebug, time.UTC),
		newJSONHandler(warnBuf, slog.LevelWarn, time.UTC),
	}
	log := slog.New(h).With("module", "test")

	log.Debug("debug only")
	log.Warn("both")

	assert.Len(t, decodeLines(t, debugBuf), 2)
	warnEntries := decodeLines(t, warnBuf)
	require.Len(t, warnEntries, 1)
	assert.Equal(t, "test", warnEntries[0]["module"])
	assert.False(t, h.Enabled(context.Background(), slog.Level(-8)))
}
