//go:build linux

package debugger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStatus(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "status")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestTracerAttached(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"not traced", "Name:\tcuke\nTracerPid:\t0\n", false},
		{"traced", "Name:\tcuke\nTracerPid:\t4242\n", true},
		{"missing field", "Name:\tcuke\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tracerAttached(writeStatus(t, tt.body)))
		})
	}
	assert.False(t, tracerAttached(filepath.Join(t.TempDir(), "absent")))
}
