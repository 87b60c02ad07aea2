package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/datanorm/internal/app"
	"github.com/tphakala/datanorm/internal/buildinfo"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := RootCommand(app.New(buildinfo.NewContext("1.0.0", "")))

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "normalize", "history", "stats", "delete", "migrate", "config", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionSkipsSetup(t *testing.T) {
	appCtx := app.New(buildinfo.NewContext("1.2.3", "2026-01-01"))
	root := RootCommand(appCtx)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--config", "/nonexistent/config.yaml"})
	require.NoError(t, root.ExecuteContext(t.Context()))

	assert.Contains(t, out.String(), "datanorm 1.2.3")
	assert.Nil(t, appCtx.Settings, "settings are not loaded for version")
}

func TestNormalizeThroughRoot(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	appCtx := app.New(buildinfo.NewContext("test", ""))
	t.Cleanup(func() { _ = appCtx.Close() })
	root := RootCommand(appCtx)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"normalize", "-m", "minmax", "0 5 10"})
	require.NoError(t, root.ExecuteContext(t.Context()))

	assert.Contains(t, out.String(), "Min-Max")
	assert.FileExists(t, filepath.Join(home, ".config", "datanorm", "config.yaml"))
	require.NotNil(t, appCtx.Settings)
}
