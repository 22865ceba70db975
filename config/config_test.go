package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHasNoBreakpointOrWatchpoint(t *testing.T) {
	m := Default()
	assert.Nil(t, m.Breakpoint)
	assert.Nil(t, m.Watchpoint)
	assert.False(t, m.TraceOnStart)
	assert.EqualValues(t, 0x0200, m.LoadAddress)
}

func TestLoadWithEmptyPathReturnsDefaults(t *testing.T) {
	m, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), m)
}

func TestLoadOverlaysFileOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "simcpu.toml")
	contents := "load_address = 4096\ntrace_on_start = true\nbreakpoint = 4112\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.EqualValues(t, 4096, m.LoadAddress)
	assert.True(t, m.TraceOnStart)
	require.NotNil(t, m.Breakpoint)
	assert.EqualValues(t, 4112, *m.Breakpoint)
	// Untouched by the file, still the default.
	assert.EqualValues(t, 1_000_000, m.FrequencyHz)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
