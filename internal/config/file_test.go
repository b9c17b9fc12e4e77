package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file is empty config", func(t *testing.T) {
		cfg, err := LoadFile(filepath.Join(dir, "absent.toml"))
		require.NoError(t, err)
		assert.Nil(t, cfg.Challenge.Start)
	})

	t.Run("reads challenge defaults", func(t *testing.T) {
		path := filepath.Join(dir, "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[challenge]\nstart = \"2026-04-06\"\nlength = 365\n"), 0o644))

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		require.NotNil(t, cfg.Challenge.Start)
		assert.Equal(t, "2026-04-06", *cfg.Challenge.Start)
		assert.Equal(t, 365, *cfg.Challenge.Length)
		assert.Nil(t, cfg.Challenge.Base)
	})

	t.Run("rejects malformed toml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.toml")
		require.NoError(t, os.WriteFile(path, []byte("[challenge\n"), 0o644))

		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := LoadFile("")
		assert.Error(t, err)
	})
}

func TestDefaultFilePath_UsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "penny", "config.toml"), DefaultFilePath())
}
