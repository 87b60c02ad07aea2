package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/datanorm/internal/app"
	"github.com/tphakala/datanorm/internal/buildinfo"
	"github.com/tphakala/datanorm/internal/conf"
	"github.com/tphakala/datanorm/internal/logger"
)

// Settings returns quiet settings backed by a SQLite file under t.TempDir()
func Settings(t *testing.T) *conf.Settings {
	t.Helper()

	settings := &conf.Settings{}
	settings.Main.Name = "datanorm-test"
	settings.Main.Log = logger.LoggingConfig{
		DefaultLevel: "error",
		Console:      &logger.ConsoleOutput{Enabled: false, Level: "error"},
		FileOutput:   &logger.FileOutput{Enabled: false},
	}
	settings.WebServer.Port = "0"
	settings.History.Limit = conf.DefaultHistoryLimit
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "datanorm.db")
	return settings
}

// SetupApp returns an application context set up with settings. The context
// is closed when the test ends.
func SetupApp(t *testing.T, settings *conf.Settings) *app.Context {
	t.Helper()

	appCtx := app.New(buildinfo.NewContext("test", ""))
	require.NoError(t, appCtx.SetupWithSettings(settings, false))
	t.Cleanup(func() { assert.NoError(t, appCtx.Close()) })
	return appCtx
}
