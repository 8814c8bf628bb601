package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Setenv("DEALES_API_URL", "")
	home := t.TempDir()

	cfg, err := Load(home)
	require.NoError(t, err)
	assert.Equal(t, defaultAPIURL, cfg.API.URL)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "file", cfg.Session.Storage)
	assert.Equal(t, filepath.Join(home, "drafts"), cfg.DraftDir())
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	home := t.TempDir()
	yml := `
api:
  url: https://deales.example/api
client:
  timeout: 3s
session:
  storage: redis
  redis_url: redis://localhost:6379/0
`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(yml), 0o600))

	t.Setenv("DEALES_API_URL", "")
	cfg, err := Load(home)
	require.NoError(t, err)
	assert.Equal(t, "https://deales.example/api", cfg.API.URL)
	assert.Equal(t, 3*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "redis", cfg.Session.Storage)

	t.Setenv("DEALES_API_URL", "http://override/api")
	cfg, err = Load(home)
	require.NoError(t, err)
	assert.Equal(t, "http://override/api", cfg.API.URL)
}

func TestLoadErrors(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		home := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("api: ["), 0o600))
		_, err := Load(home)
		assert.ErrorContains(t, err, "parse config")
	})

	t.Run("redis without url", func(t *testing.T) {
		home := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("session:\n  storage: redis\n"), 0o600))
		_, err := Load(home)
		assert.ErrorContains(t, err, "redis_url")
	})
}

func TestDefaultHome(t *testing.T) {
	t.Setenv("DEALES_HOME", "/tmp/deales-test-home")
	home, err := DefaultHome()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/deales-test-home", home)
}
