package normalize

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/datanorm/internal/app"
	"github.com/tphakala/datanorm/internal/normalize"
	"github.com/tphakala/datanorm/internal/testutil"
)

func execute(t *testing.T, cmd *cobra.Command, args []string, stdin string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.ExecuteContext(t.Context())
	return out.String(), errOut.String(), err
}

func newApp(t *testing.T) *app.Context {
	t.Helper()
	return testutil.SetupApp(t, testutil.Settings(t))
}

func TestNormalizeTableOutput(t *testing.T) {
	out, _, err := execute(t, Command(newApp(t)), []string{"--method", "minmax", "10 20 30"}, "")
	require.NoError(t, err)

	assert.Contains(t, out, "Min-Max normalization (scales to 0-1)")
	assert.Contains(t, out, "Data points: 3")
	assert.Contains(t, out, "INDEX")
	assert.Regexp(t, `2\s+20\s+0\.5`, out)
	assert.Regexp(t, `3\s+30\s+1`, out)
}

func TestNormalizeReadsStdinAsJSON(t *testing.T) {
	out, _, err := execute(t, Command(newApp(t)), []string{"-m", "zscore", "-o", "json"}, "1, 2, 3\n")
	require.NoError(t, err)

	var got struct {
		Method     string    `json:"method"`
		Original   []float64 `json:"original"`
		Normalized []float64 `json:"normalized"`
		Saved      bool      `json:"saved"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "zscore", got.Method)
	assert.Equal(t, []float64{1, 2, 3}, got.Original)
	assert.Equal(t, []float64{-1.2247, 0, 1.2247}, got.Normalized)
	assert.False(t, got.Saved)
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		stdin  string
		target error
	}{
		{"invalid method", []string{"-m", "log", "1 2"}, "", normalize.ErrInvalidMethod},
		{"missing method", []string{"1 2"}, "", normalize.ErrInvalidMethod},
		{"empty stdin", []string{"-m", "minmax"}, "   ", normalize.ErrEmptyInput},
		{"no numbers", []string{"-m", "minmax", "a b c"}, "", normalize.ErrNoNumbers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, Command(newApp(t)), tt.args, tt.stdin)
			require.ErrorIs(t, err, tt.target)
		})
	}
}

func TestNormalizeRejectsUnknownFormat(t *testing.T) {
	_, _, err := execute(t, Command(newApp(t)), []string{"-m", "minmax", "-o", "xml", "1 2"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestNormalizeSave(t *testing.T) {
	appCtx := newApp(t)

	out, errOut, err := execute(t, Command(appCtx), []string{"-m", "minmax", "--save", "-o", "json", "5 10"}, "")
	require.NoError(t, err)
	assert.Empty(t, errOut)
	assert.Contains(t, out, `"saved": true`)

	recs := appCtx.Recorder.Recent(t.Context(), 0)
	require.Len(t, recs, 1)
	assert.Equal(t, "minmax", recs[0].Method)
	assert.Equal(t, []float64{5, 10}, recs[0].OriginalData)
	assert.Equal(t, []float64{0, 1}, recs[0].NormalizedData)
}

func TestNormalizeSaveWithoutDatabase(t *testing.T) {
	settings := testutil.Settings(t)
	settings.Output.SQLite.Enabled = false
	appCtx := testutil.SetupApp(t, settings)

	out, errOut, err := execute(t, Command(appCtx), []string{"-m", "minmax", "--save", "1 2"}, "")
	require.NoError(t, err, "a failed save does not fail the command")
	assert.Contains(t, errOut, "couldn't save to database")
	assert.Contains(t, out, "Min-Max")
}
