package model_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tracks/internal/model"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	def := model.DefaultAppConfig()
	assert.Equal(t, def.Database.Path, cfg.Database.Path)
	assert.Equal(t, []string{"database"}, cfg.Auth.Schemes)
	assert.Equal(t, 5, cfg.Pagination.PerPage)
	assert.Equal(t, "database", cfg.PreferredAuth())
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := model.DefaultAppConfig()
	cfg.Database.Path = "/tmp/tracks.db"
	cfg.Auth.Schemes = []string{"database", "open_id"}
	cfg.Auth.Preferred = "open_id"
	cfg.Pagination.PerPage = 20
	cfg.Log.Level = "debug"
	require.NoError(t, model.SaveConfig(path, cfg))

	loaded, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.True(t, loaded.AuthSchemeEnabled("open_id"))
	assert.False(t, loaded.AuthSchemeEnabled("cas"))
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pagination:\n  per_page: 7\n"), 0o644))

	t.Setenv("TRACKS_DATABASE_PATH", ":memory:")

	cfg, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, 7, cfg.Pagination.PerPage)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [unclosed"), 0o644))

	_, err := model.LoadConfig(path)
	assert.Error(t, err)
}
