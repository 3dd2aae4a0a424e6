package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, warnings, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, DefaultConfig().TickRateHz, cfg.TickRateHz)
}

func TestLoadClampsOutOfRangeOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tick_rate_hz: 9999\npreview_debounce_ms: -5\n"), 0o644))

	cfg, warnings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 240, cfg.TickRateHz)
	assert.Equal(t, 0, cfg.PreviewDebounceMs)
	assert.Len(t, warnings, 2)
}

func TestLoadInRangeOptionsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tick_rate_hz: 120\npreview_debounce_ms: 50\n"), 0o644))

	cfg, warnings, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 120, cfg.TickRateHz)
	assert.Equal(t, 50, cfg.PreviewDebounceMs)
}

func TestLoadRejectsBadInputSeparator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input_separator: \"ab\"\n"), 0o644))

	_, _, err := Load(path)
	require.Error(t, err)
	var structErr *StructuralError
	assert.ErrorAs(t, err, &structErr)
}

func TestLoadRejectsUnknownBindAction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("binds:\n  ctrl+x: frobnicate\n"), 0o644))

	_, _, err := Load(path)
	require.Error(t, err)
}

func TestPercentageClampsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout:\n  preview_ratio: 1.5\n"), 0o644))

	cfg, warnings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Percentage(1.0), cfg.Layout.PreviewRatio)
	assert.Len(t, warnings, 1)
}

func TestResolveBindsOverridesDefault(t *testing.T) {
	resolved, err := ResolveBinds(map[string]string{"ctrl+y": "execute:less {}"})
	require.NoError(t, err)
	action, ok := resolved["ctrl+y"]
	require.True(t, ok)
	require.NotNil(t, action.Interrupt)
	assert.Equal(t, "less {}", action.Interrupt.Template)
}
