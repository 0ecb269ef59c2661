package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 640, cfg.WindowWidth)
	assert.Equal(t, 480, cfg.WindowHeight)
	assert.Equal(t, "ravioli_atlas.bmp", cfg.AtlasImage)
	assert.Equal(t, int64(0), cfg.Seed)
	assert.True(t, cfg.EnableMusic)
	assert.False(t, cfg.Debug)
}

func TestLoadConfigEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesSubset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window_width: 800\nseed: 42\nenable_music: false\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.WindowWidth)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.False(t, cfg.EnableMusic)
	// Untouched fields keep their defaults.
	assert.Equal(t, 480, cfg.WindowHeight)
	assert.Equal(t, "the_entertainer.ogg", cfg.Music)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window_width: [nope"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigRejectsNonPositiveWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window_width: 0\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}
