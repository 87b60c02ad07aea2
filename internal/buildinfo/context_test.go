package buildinfo

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  *Context
		want string
	}{
		{"nil context", nil, UnknownValue},
		{"empty version", NewContext("", "2024-01-01"), UnknownValue},
		{"release", NewContext("1.0.0", "2024-01-01"), "1.0.0"},
		{"pre-release", NewContext("1.0.0-beta.1", ""), "1.0.0-beta.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ctx.Version())
		})
	}
}

func TestContextBuildDate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, UnknownValue, (*Context)(nil).BuildDate())
	assert.Equal(t, UnknownValue, NewContext("1.0.0", "").BuildDate())
	assert.Equal(t, "2024-01-01T12:00:00Z", NewContext("1.0.0", "2024-01-01T12:00:00Z").BuildDate())
}

func TestContextString(t *testing.T) {
	t.Parallel()

	s := NewContext("1.2.3", "2024-06-01").String()
	assert.Contains(t, s, "datanorm 1.2.3")
	assert.Contains(t, s, "built 2024-06-01")
	assert.Contains(t, s, runtime.GOOS)
}
